// Package phys implements the electromagnetic field model and the numerical
// flux integrator: a point magnetic dipole evaluated anywhere in the plane,
// an ideal/finite solenoid evaluated on-axis, and the grid-sampled surface
// integral that links dipole flux through a tilted circular coil.
package phys

import "math"

// Mu0 is the vacuum permeability in H/m.
const Mu0 = 4 * math.Pi * 1e-7

// dipoleK is the far-field dipole prefactor μ0/(4π).
const dipoleK = Mu0 / (4 * math.Pi)

// MinSourceDistance is the radius below which the dipole field is treated as
// undefined and reported as zero. The singularity at the source is a modelling
// boundary, not an error condition.
const MinSourceDistance = 1e-6

// Magnet describes a point dipole source: position and velocity in metres and
// metres per second, and a scalar moment in A·m² oriented along the x axis.
type Magnet struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Moment   float64 `json:"moment"`
}

// DipoleField returns the magnetic field vector at probe produced by a point
// dipole of the given moment located at source, using the standard far-field
// formula. Probing within MinSourceDistance of the source yields a zero vector.
func DipoleField(probe, source Vec2, moment float64) Vec2 {
	//1.- Work in source-relative coordinates and guard the singularity.
	r := probe.Sub(source)
	rMag := r.Norm()
	if rMag < MinSourceDistance {
		return Vec2{}
	}
	//2.- Decompose the offset into the polar factors the formula needs.
	r3 := rMag * rMag * rMag
	cos := r.X / rMag
	sin := r.Y / rMag
	//3.- Evaluate the far-field components for an x-aligned moment.
	return Vec2{
		X: dipoleK * moment * (3*cos*cos - 1) / r3,
		Y: dipoleK * moment * (3 * cos * sin) / r3,
	}
}
