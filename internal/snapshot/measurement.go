// Package snapshot assembles one immutable measurement record per simulation
// tick. The assembler is the single source of truth: every consumer (live
// display, charts, table, export) reads the same record, so all of them
// observe mutually consistent values for a given state.
package snapshot

import (
	"inductionlab/sim/internal/induction"
	"inductionlab/sim/internal/phys"
)

// Measurement is the fully self-contained record of one Faraday-mode tick.
// It is created fresh per tick and never mutated afterwards; this is the unit
// appended to the recorded-measurements log and exported to file.
type Measurement struct {
	Time   float64 `json:"time"`
	DeltaT float64 `json:"delta_t"`

	MagnetPosition phys.Vec2 `json:"magnet_position"`
	MagnetVelocity phys.Vec2 `json:"magnet_velocity"`
	MagnetSpeed    float64   `json:"magnet_speed"`
	DipoleMoment   float64   `json:"dipole_moment"`

	CoilCenter     phys.Vec2 `json:"coil_center"`
	CoilRadius     float64   `json:"coil_radius"`
	CoilTurns      int       `json:"coil_turns"`
	CoilTilt       float64   `json:"coil_tilt"`
	CoilResistance float64   `json:"coil_resistance"`
	LoadResistance float64   `json:"load_resistance"`

	Field          phys.Vec2 `json:"field"`
	FieldMagnitude float64   `json:"field_magnitude"`
	Flux           float64   `json:"flux"`
	FluxRate       float64   `json:"flux_rate"`
	EMF            float64   `json:"emf"`
	Current        float64   `json:"current"`

	Direction   induction.Direction `json:"direction"`
	FluxTrend   induction.FluxTrend `json:"flux_trend"`
	Explanation string              `json:"explanation"`
}

// MeasurementB is the steady-state record for one current-to-field tick.
// Mode B is a DC scenario, so DeltaT carries no physics and is always zero.
type MeasurementB struct {
	Time   float64 `json:"time"`
	DeltaT float64 `json:"delta_t"`

	Voltage         float64 `json:"voltage"`
	TotalResistance float64 `json:"total_resistance"`
	Current         float64 `json:"current"`

	SolenoidLength float64 `json:"solenoid_length"`
	SolenoidTurns  int     `json:"solenoid_turns"`
	SolenoidRadius float64 `json:"solenoid_radius"`
	TurnDensity    float64 `json:"turn_density"`
	Polarity       int     `json:"polarity"`
	EndEffects     bool    `json:"end_effects"`

	Field float64 `json:"field"`
}
