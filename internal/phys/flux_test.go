package phys

import (
	"math"
	"testing"
)

func TestLinkedFluxZeroRadius(t *testing.T) {
	coil := Coil{Radius: 0, Turns: 10}
	magnet := Magnet{Position: Vec2{X: -1}, Moment: 1}
	if got := LinkedFlux(coil, magnet, 20); got != 0 {
		t.Fatalf("zero-radius coil should link zero flux, got %.3e", got)
	}
}

func TestAverageFieldZeroRadius(t *testing.T) {
	//1.- No grid point passes the circular mask, so the mean degrades to zero.
	coil := Coil{Radius: 0}
	magnet := Magnet{Position: Vec2{X: -1}, Moment: 1}
	if got := AverageField(coil, magnet, 20); got.X != 0 || got.Y != 0 {
		t.Fatalf("expected zero average field, got %+v", got)
	}
}

func TestLinkedFluxMonotonicOnApproach(t *testing.T) {
	//1.- Reference scenario: m = 1 A·m², N = 10, R = 0.1 m, untilted coil at the
	// origin, magnet approaching along the axis from x = -1 m.
	coil := Coil{Radius: 0.1, Turns: 10}
	positions := []float64{-1.0, -0.8, -0.6, -0.4, -0.3, -0.2}

	prev := 0.0
	for i, x := range positions {
		magnet := Magnet{Position: Vec2{X: x}, Moment: 1}
		flux := math.Abs(LinkedFlux(coil, magnet, 20))
		if i > 0 && flux <= prev {
			t.Fatalf("|flux| should grow on approach: %.6e at x=%.1f after %.6e", flux, x, prev)
		}
		prev = flux
	}
}

func TestLinkedFluxScalesWithTurns(t *testing.T) {
	magnet := Magnet{Position: Vec2{X: -0.5}, Moment: 1}
	single := LinkedFlux(Coil{Radius: 0.1, Turns: 1}, magnet, 20)
	double := LinkedFlux(Coil{Radius: 0.1, Turns: 2}, magnet, 20)
	if math.Abs(double-2*single) > 1e-18 {
		t.Fatalf("flux should scale linearly with turns: %.6e vs %.6e", single, double)
	}
}

func TestLinkedFluxTiltedCoil(t *testing.T) {
	//1.- With the normal rotated onto the x axis the flux picks up the strong
	// axial component, dwarfing the untilted case for an on-axis magnet.
	magnet := Magnet{Position: Vec2{X: -0.5}, Moment: 1}
	flat := math.Abs(LinkedFlux(Coil{Radius: 0.1, Turns: 10}, magnet, 20))
	faced := math.Abs(LinkedFlux(Coil{Radius: 0.1, Turns: 10, Tilt: math.Pi / 2}, magnet, 20))
	if faced <= flat {
		t.Fatalf("facing coil should link more flux: flat %.6e faced %.6e", flat, faced)
	}
}

func TestLinkedFluxDefaultSampleCount(t *testing.T) {
	coil := Coil{Radius: 0.1, Turns: 10}
	magnet := Magnet{Position: Vec2{X: -0.5}, Moment: 1}
	//1.- A non-positive sample count falls back to the default resolution.
	if got, want := LinkedFlux(coil, magnet, 0), LinkedFlux(coil, magnet, DefaultFluxSamples); got != want {
		t.Fatalf("default sample fallback mismatch: %.6e vs %.6e", got, want)
	}
}

func TestAverageFieldFinite(t *testing.T) {
	coil := Coil{Radius: 0.1, Turns: 10, Tilt: 0.3}
	magnet := Magnet{Position: Vec2{X: 0.02, Y: 0.01}, Moment: 2}
	//1.- Even with the magnet inside the coil disk the guard keeps values finite.
	b := AverageField(coil, magnet, 20)
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
		t.Fatalf("average field must stay finite, got %+v", b)
	}
}
