// Package export serialises measurement logs for consumers outside the
// process: CSV and JSON files triggered by the user, and compressed session
// bundles for long recordings. Field sets and precision are part of the core
// contract; consumers must be able to round-trip every value.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"inductionlab/sim/internal/induction"
	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/snapshot"
)

// csvPrecision is the number of decimal places written for float columns.
const csvPrecision = 6

var faradayHeader = []string{
	"time", "delta_t",
	"magnet_x", "magnet_y", "magnet_vx", "magnet_vy", "magnet_speed", "dipole_moment",
	"coil_x", "coil_y", "coil_radius", "coil_turns", "coil_tilt", "coil_resistance", "load_resistance",
	"field_x", "field_y", "field_magnitude", "flux", "flux_rate", "emf", "current",
	"direction", "flux_trend", "explanation",
}

var solenoidHeader = []string{
	"time", "delta_t", "voltage", "total_resistance", "current",
	"solenoid_length", "solenoid_turns", "solenoid_radius", "turn_density",
	"polarity", "end_effects", "field",
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', csvPrecision, 64)
}

// WriteCSV emits the recorded Faraday-mode log as CSV: one header row, then
// one row per measurement with floats at six decimal places. The explanation
// column is escaped by the writer for embedded quotes and commas.
func WriteCSV(w io.Writer, measurements []snapshot.Measurement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(faradayHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range measurements {
		row := []string{
			f(m.Time), f(m.DeltaT),
			f(m.MagnetPosition.X), f(m.MagnetPosition.Y),
			f(m.MagnetVelocity.X), f(m.MagnetVelocity.Y),
			f(m.MagnetSpeed), f(m.DipoleMoment),
			f(m.CoilCenter.X), f(m.CoilCenter.Y),
			f(m.CoilRadius), strconv.Itoa(m.CoilTurns), f(m.CoilTilt),
			f(m.CoilResistance), f(m.LoadResistance),
			f(m.Field.X), f(m.Field.Y), f(m.FieldMagnitude),
			f(m.Flux), f(m.FluxRate), f(m.EMF), f(m.Current),
			string(m.Direction), string(m.FluxTrend), m.Explanation,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV back into measurement records.
// Numeric values are recovered to the six-decimal export precision; the
// explanation string is recovered exactly.
func ReadCSV(r io.Reader) ([]snapshot.Measurement, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv missing header row")
	}
	if len(rows[0]) != len(faradayHeader) {
		return nil, fmt.Errorf("csv header has %d columns, want %d", len(rows[0]), len(faradayHeader))
	}

	out := make([]snapshot.Measurement, 0, len(rows)-1)
	for i, row := range rows[1:] {
		//1.- Collect the float columns positionally; the trailing three are text.
		floats := make([]float64, 0, len(row))
		for col := 0; col < 22; col++ {
			if col == 11 {
				continue // coil_turns is an integer column
			}
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, faradayHeader[col], err)
			}
			floats = append(floats, v)
		}
		turns, err := strconv.Atoi(row[11])
		if err != nil {
			return nil, fmt.Errorf("row %d coil_turns: %w", i+1, err)
		}
		out = append(out, snapshot.Measurement{
			Time:           floats[0],
			DeltaT:         floats[1],
			MagnetPosition: phys.Vec2{X: floats[2], Y: floats[3]},
			MagnetVelocity: phys.Vec2{X: floats[4], Y: floats[5]},
			MagnetSpeed:    floats[6],
			DipoleMoment:   floats[7],
			CoilCenter:     phys.Vec2{X: floats[8], Y: floats[9]},
			CoilRadius:     floats[10],
			CoilTurns:      turns,
			CoilTilt:       floats[11],
			CoilResistance: floats[12],
			LoadResistance: floats[13],
			Field:          phys.Vec2{X: floats[14], Y: floats[15]},
			FieldMagnitude: floats[16],
			Flux:           floats[17],
			FluxRate:       floats[18],
			EMF:            floats[19],
			Current:        floats[20],
			Direction:      induction.Direction(row[22]),
			FluxTrend:      induction.FluxTrend(row[23]),
			Explanation:    row[24],
		})
	}
	return out, nil
}

// WriteCSVB emits the recorded solenoid-mode log as CSV.
func WriteCSVB(w io.Writer, measurements []snapshot.MeasurementB) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(solenoidHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range measurements {
		row := []string{
			f(m.Time), f(m.DeltaT), f(m.Voltage), f(m.TotalResistance), f(m.Current),
			f(m.SolenoidLength), strconv.Itoa(m.SolenoidTurns), f(m.SolenoidRadius),
			f(m.TurnDensity), strconv.Itoa(m.Polarity), strconv.FormatBool(m.EndEffects),
			f(m.Field),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
