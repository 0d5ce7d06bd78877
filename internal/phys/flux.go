package phys

import "math"

// DefaultFluxSamples is the grid resolution (steps per side) used by the flux
// integrator when the caller does not configure one. 20 keeps roughly 314 of
// the 400 candidate points after the circular mask and evaluates comfortably
// inside an animation frame.
const DefaultFluxSamples = 20

// Coil describes the pickup coil: centre and radius in metres, winding count,
// tilt of the coil normal in radians, and winding resistance in ohms.
type Coil struct {
	Center     Vec2    `json:"center"`
	Radius     float64 `json:"radius"`
	Turns      int     `json:"turns"`
	Tilt       float64 `json:"tilt"`
	Resistance float64 `json:"resistance"`
}

// Normal returns the coil's unit normal for tilt angle θ, (sinθ, cosθ).
func (c Coil) Normal() Vec2 {
	sin, cos := math.Sincos(c.Tilt)
	return Vec2{X: sin, Y: cos}
}

// AverageField estimates the representative field across the coil disk: it
// samples the same grid the flux integrator uses and returns the unweighted
// mean of the dipole field over every point inside the coil radius. This is
// the cheap display quantity; it is not weighted by the coil normal and must
// not be used in place of LinkedFlux.
func AverageField(c Coil, magnet Magnet, samples int) Vec2 {
	var sum Vec2
	kept := 0
	forEachCoilPoint(c, samples, func(world Vec2, _ float64) {
		sum = sum.Add(DipoleField(world, magnet.Position, magnet.Moment))
		kept++
	})
	//1.- A degenerate grid (zero radius, zero samples) keeps no points.
	if kept == 0 {
		return Vec2{}
	}
	return sum.Scale(1 / float64(kept))
}

// LinkedFlux numerically integrates the dipole field over the coil disk and
// returns the total linked flux in Weber, including the turn-count factor:
// Φ = N · Σ (B·n̂) dA over a Cartesian grid masked to the coil circle. The
// discretisation error shrinks as samples grows; the grid-and-mask method is
// fixed so results stay comparable across runs.
func LinkedFlux(c Coil, magnet Magnet, samples int) float64 {
	normal := c.Normal()
	total := 0.0
	forEachCoilPoint(c, samples, func(world Vec2, dA float64) {
		b := DipoleField(world, magnet.Position, magnet.Moment)
		total += b.Dot(normal) * dA
	})
	return total * float64(c.Turns)
}

// forEachCoilPoint walks the uniform Cartesian integration grid spanning the
// coil's bounding square, drops points outside the coil radius, rotates the
// survivors into world space by the tilt angle, and invokes fn with the world
// position and the per-cell area element.
func forEachCoilPoint(c Coil, samples int, fn func(world Vec2, dA float64)) {
	if samples <= 0 {
		samples = DefaultFluxSamples
	}
	if c.Radius <= 0 {
		return
	}
	step := 2 * c.Radius / float64(samples)
	dA := step * step
	r2 := c.Radius * c.Radius
	for i := 0; i < samples; i++ {
		//1.- Cells anchor at the lower-left corner of the bounding square.
		lx := -c.Radius + float64(i)*step
		for j := 0; j < samples; j++ {
			ly := -c.Radius + float64(j)*step
			//2.- Circular mask over the square grid keeps ≈ π/4 of the points.
			if lx*lx+ly*ly > r2 {
				continue
			}
			//3.- Rotate the local sample into world space about the coil centre.
			world := c.Center.Add(Vec2{X: lx, Y: ly}.Rotate(c.Tilt))
			fn(world, dA)
		}
	}
}
