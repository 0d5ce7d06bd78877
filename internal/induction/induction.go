// Package induction converts a flux rate into EMF, current, and a Lenz's-law
// classification with its natural-language explanation. Every function is a
// pure mapping over plain floats; degenerate circuits degrade to zero.
package induction

import (
	"fmt"
	"math"
)

// minResistance is the smallest circuit resistance treated as conductive; a
// shorter circuit reports zero current rather than dividing by zero.
const minResistance = 1e-9

// rateDeadband is the |dΦ/dt| below which the flux is classified as constant.
const rateDeadband = 1e-9

// Direction is the induced current's sense as seen by an observer looking
// along the positive axis of the dipole orientation.
type Direction string

const (
	Clockwise        Direction = "CW"
	CounterClockwise Direction = "CCW"
)

// FluxTrend classifies how the linked flux is changing.
type FluxTrend string

const (
	FluxIncreasing FluxTrend = "increasing"
	FluxDecreasing FluxTrend = "decreasing"
	FluxConstant   FluxTrend = "constant"
)

// EMF applies Faraday's law, ε = -N·dΦ/dt.
func EMF(turns int, fluxRate float64) float64 {
	return -float64(turns) * fluxRate
}

// Current applies Ohm's law, I = ε/R. Circuits below minResistance carry no
// current by policy.
func Current(emf, totalResistance float64) float64 {
	if totalResistance < minResistance {
		return 0
	}
	return emf / totalResistance
}

// Reading bundles the Lenz's-law outputs for one tick. The explanation is a
// contract output: it is exported with the numeric fields it describes and
// must be derived from the same inputs.
type Reading struct {
	Direction   Direction `json:"direction"`
	Trend       FluxTrend `json:"flux_trend"`
	Explanation string    `json:"explanation"`
}

// Classify maps a flux rate and the EMF it induced onto the current direction,
// the flux trend, and the explanation text. Within the deadband the trend is
// constant and the direction falls back to clockwise; there is no physically
// meaningful direction when nothing changes.
func Classify(fluxRate, emf float64) Reading {
	//1.- The degenerate regime first: effectively unchanging flux.
	if math.Abs(fluxRate) < rateDeadband {
		return Reading{
			Direction: Clockwise,
			Trend:     FluxConstant,
			Explanation: "The magnetic flux through the coil is constant, " +
				"so by Faraday's law (EMF = -N dΦ/dt) no EMF and no current are induced.",
		}
	}
	//2.- Classify the trend from the rate sign and the direction from the EMF sign.
	trend := FluxIncreasing
	if fluxRate < 0 {
		trend = FluxDecreasing
	}
	direction := Clockwise
	if emf > 0 {
		direction = CounterClockwise
	}
	label := "counterclockwise"
	if direction == Clockwise {
		label = "clockwise"
	}
	explanation := fmt.Sprintf(
		"The magnetic flux through the coil is %s. By Faraday's law (EMF = -N dΦ/dt) "+
			"this induces an EMF of opposite sign to the flux change, driving a %s current. "+
			"Per Lenz's law the induced current creates a magnetic field that opposes the %s flux.",
		trend, label, trend)
	return Reading{Direction: direction, Trend: trend, Explanation: explanation}
}
