package phys

import "math"

// endEffectBand is the fraction of the solenoid length, measured from each
// end, over which the end-effect mode tapers the field linearly to zero.
const endEffectBand = 0.1

// Solenoid describes the current-to-field scenario geometry. Polarity is ±1
// and flips the sign of the reported field; turn density is always derived
// from Turns and Length, never stored.
type Solenoid struct {
	Length     float64 `json:"length"`
	Turns      int     `json:"turns"`
	Radius     float64 `json:"radius"`
	Polarity   int     `json:"polarity"`
	EndEffects bool    `json:"end_effects"`
}

// TurnDensity returns the winding density N/L in turns per metre. A
// non-positive length yields zero so downstream field math stays finite.
func (s Solenoid) TurnDensity() float64 {
	if s.Length <= 0 {
		return 0
	}
	return float64(s.Turns) / s.Length
}

// SolenoidAxialField returns the axial field magnitude at position z along the
// solenoid axis (z = 0 at the centre) for the supplied current magnitude.
//
// In ideal mode the field is uniform μ0·n·I inside |z| ≤ L/2 and zero outside,
// a deliberate sharp-cutoff idealisation. With end effects enabled the ideal
// value is tapered linearly to zero across the outermost 10% of the length at
// each end. The taper is an approximation; the exact finite-solenoid result is
// the (cosθ1+cosθ2)/2 Biot–Savart factor, which this model intentionally does
// not compute.
func SolenoidAxialField(s Solenoid, z, current float64) float64 {
	//1.- Outside the winding the idealised field is exactly zero.
	if s.Length <= 0 || math.Abs(z) > s.Length/2 {
		return 0
	}
	//2.- Start from the infinite-solenoid interior value.
	field := Mu0 * s.TurnDensity() * current
	if !s.EndEffects {
		return field
	}
	//3.- Scale down linearly within the taper band nearest either end.
	band := endEffectBand * s.Length
	distFromEnd := s.Length/2 - math.Abs(z)
	if distFromEnd < band {
		field *= distFromEnd / band
	}
	return field
}
