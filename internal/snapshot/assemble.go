package snapshot

import (
	"inductionlab/sim/internal/induction"
	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/signal"
)

// FaradayInput carries everything the Mode A assembler reads for one tick.
// History is consumed by value; the assembler never touches the caller's copy.
type FaradayInput struct {
	Time   float64
	DeltaT float64

	Magnet         phys.Magnet
	Coil           phys.Coil
	LoadResistance float64
	Samples        int

	History signal.History
}

// Assemble composes the field model, flux integrator, smoothing pipeline, and
// induction law into one Measurement. It also returns the extended history
// that produced the reported rate; persisting it for the next tick is the
// caller's job, which keeps the assembler pure and repeat calls bit-identical.
func Assemble(in FaradayInput) (Measurement, signal.History) {
	//1.- Integrate the raw linked flux, then smooth it against the last entry.
	raw := phys.LinkedFlux(in.Coil, in.Magnet, in.Samples)
	smoothed := signal.Smooth(in.History, raw)

	//2.- Extend a copy of the history so the rate sees the fresh sample.
	extended := in.History.Extend(signal.Sample{Flux: smoothed, Time: in.Time})
	rate := signal.BackwardDifference(extended)

	//3.- Chain Faraday's and Ohm's laws with the full circuit resistance.
	emf := induction.EMF(in.Coil.Turns, rate)
	totalResistance := in.Coil.Resistance + in.LoadResistance
	current := induction.Current(emf, totalResistance)
	reading := induction.Classify(rate, emf)

	//4.- The display field is the cheap unweighted average over the coil disk.
	field := phys.AverageField(in.Coil, in.Magnet, in.Samples)

	m := Measurement{
		Time:   in.Time,
		DeltaT: in.DeltaT,

		MagnetPosition: in.Magnet.Position,
		MagnetVelocity: in.Magnet.Velocity,
		MagnetSpeed:    in.Magnet.Velocity.Norm(),
		DipoleMoment:   in.Magnet.Moment,

		CoilCenter:     in.Coil.Center,
		CoilRadius:     in.Coil.Radius,
		CoilTurns:      in.Coil.Turns,
		CoilTilt:       in.Coil.Tilt,
		CoilResistance: in.Coil.Resistance,
		LoadResistance: in.LoadResistance,

		Field:          field,
		FieldMagnitude: field.Norm(),
		Flux:           smoothed,
		FluxRate:       rate,
		EMF:            emf,
		Current:        current,

		Direction:   reading.Direction,
		FluxTrend:   reading.Trend,
		Explanation: reading.Explanation,
	}
	return m, extended
}

// SolenoidInput carries the Mode B state for one tick.
type SolenoidInput struct {
	Time float64

	Solenoid        phys.Solenoid
	Voltage         float64
	TotalResistance float64
}

// AssembleSolenoid builds the steady-state Mode B record: current from Ohm's
// law, turn density from the winding, and the signed axial field at the
// solenoid centre with the polarity applied as a multiplicative sign.
func AssembleSolenoid(in SolenoidInput) MeasurementB {
	current := induction.Current(in.Voltage, in.TotalResistance)
	//1.- Polarity flips the field direction; the magnitude comes from |I| at z=0.
	sign := 1.0
	if in.Solenoid.Polarity < 0 {
		sign = -1.0
	}
	field := sign * phys.SolenoidAxialField(in.Solenoid, 0, current)

	return MeasurementB{
		Time:   in.Time,
		DeltaT: 0,

		Voltage:         in.Voltage,
		TotalResistance: in.TotalResistance,
		Current:         current,

		SolenoidLength: in.Solenoid.Length,
		SolenoidTurns:  in.Solenoid.Turns,
		SolenoidRadius: in.Solenoid.Radius,
		TurnDensity:    in.Solenoid.TurnDensity(),
		Polarity:       in.Solenoid.Polarity,
		EndEffects:     in.Solenoid.EndEffects,

		Field: field,
	}
}
