package export

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"inductionlab/sim/internal/induction"
	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/snapshot"
)

func sampleMeasurement() snapshot.Measurement {
	reading := induction.Classify(0.25, induction.EMF(10, 0.25))
	return snapshot.Measurement{
		Time:           1.234567,
		DeltaT:         0.016,
		MagnetPosition: phys.Vec2{X: -0.5, Y: 0.125},
		MagnetVelocity: phys.Vec2{X: 2, Y: -1},
		MagnetSpeed:    math.Sqrt(5),
		DipoleMoment:   1,
		CoilCenter:     phys.Vec2{X: 0, Y: 0},
		CoilRadius:     0.1,
		CoilTurns:      10,
		CoilTilt:       math.Pi / 2,
		CoilResistance: 0.5,
		LoadResistance: 1.5,
		Field:          phys.Vec2{X: 1.5e-6, Y: -2.5e-7},
		FieldMagnitude: 1.52e-6,
		Flux:           0.012345,
		FluxRate:       0.25,
		EMF:            -2.5,
		Current:        -1.25,
		Direction:      reading.Direction,
		FluxTrend:      reading.Trend,
		Explanation:    reading.Explanation,
	}
}

func TestCSVRoundTrip(t *testing.T) {
	original := sampleMeasurement()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []snapshot.Measurement{original}); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	parsed, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d rows, want 1", len(parsed))
	}
	got := parsed[0]

	//1.- Numeric fields round-trip to the six-decimal export precision.
	const tol = 5e-7
	checks := map[string][2]float64{
		"time":      {got.Time, original.Time},
		"flux":      {got.Flux, original.Flux},
		"flux_rate": {got.FluxRate, original.FluxRate},
		"emf":       {got.EMF, original.EMF},
		"current":   {got.Current, original.Current},
		"speed":     {got.MagnetSpeed, original.MagnetSpeed},
		"tilt":      {got.CoilTilt, original.CoilTilt},
	}
	for name, pair := range checks {
		if math.Abs(pair[0]-pair[1]) > tol {
			t.Fatalf("%s drifted: %.9f vs %.9f", name, pair[0], pair[1])
		}
	}
	if got.CoilTurns != original.CoilTurns {
		t.Fatalf("turns drifted: %d vs %d", got.CoilTurns, original.CoilTurns)
	}
	//2.- The explanation survives exactly, despite commas in the text.
	if got.Explanation != original.Explanation {
		t.Fatalf("explanation drifted:\n%q\n%q", got.Explanation, original.Explanation)
	}
	if got.Direction != original.Direction || got.FluxTrend != original.FluxTrend {
		t.Fatalf("classification drifted: %q/%q", got.Direction, got.FluxTrend)
	}
}

func TestCSVEscapesExplanation(t *testing.T) {
	m := sampleMeasurement()
	m.Explanation = `flux is "increasing", current opposes it`
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []snapshot.Measurement{m}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	//1.- The embedded quotes and commas must be escaped, not mangled.
	parsed, err := ReadCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if parsed[0].Explanation != m.Explanation {
		t.Fatalf("escaped explanation drifted: %q", parsed[0].Explanation)
	}
}

func TestJSONRoundTripKeepsNativePrecision(t *testing.T) {
	original := sampleMeasurement()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []snapshot.Measurement{original}, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("write json: %v", err)
	}
	session, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if session.Mode != "faraday" || len(session.Measurements) != 1 {
		t.Fatalf("unexpected session %+v", session)
	}
	//1.- JSON is a structured dump: values come back bit-identical.
	if session.Measurements[0] != original {
		t.Fatalf("json round trip drifted:\n%+v\n%+v", session.Measurements[0], original)
	}
}

func TestSolenoidCSVHasEveryField(t *testing.T) {
	m := snapshot.MeasurementB{
		Time:            2.5,
		Voltage:         5,
		TotalResistance: 5,
		Current:         1,
		SolenoidLength:  0.5,
		SolenoidTurns:   100,
		SolenoidRadius:  0.02,
		TurnDensity:     200,
		Polarity:        -1,
		EndEffects:      true,
		Field:           -2.513274e-4,
	}
	var buf bytes.Buffer
	if err := WriteCSVB(&buf, []snapshot.MeasurementB{m}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if got, want := len(strings.Split(lines[1], ",")), len(strings.Split(lines[0], ",")); got != want {
		t.Fatalf("row has %d columns, header has %d", got, want)
	}
	for _, fragment := range []string{"turn_density", "polarity", "end_effects"} {
		if !strings.Contains(lines[0], fragment) {
			t.Fatalf("header missing %q: %s", fragment, lines[0])
		}
	}
}

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Unix(1700000000, 0) }
	writer, manifest, err := NewBundleWriter(dir, "demo run", "faraday", clock)
	if err != nil {
		t.Fatalf("new bundle writer: %v", err)
	}
	records := []snapshot.Measurement{sampleMeasurement()}
	second := sampleMeasurement()
	second.Time = 1.250567
	records = append(records, second)

	for _, m := range records {
		if err := writer.Append(m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if manifest.Mode != "faraday" {
		t.Fatalf("manifest mode %q", manifest.Mode)
	}

	//1.- Loading the bundle recovers the full log bit-identically.
	loaded, measurements, err := LoadBundle(writer.Directory())
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	if loaded.Version != BundleVersion {
		t.Fatalf("loaded version %d", loaded.Version)
	}
	if len(measurements) != len(records) {
		t.Fatalf("loaded %d measurements, want %d", len(measurements), len(records))
	}
	for i := range records {
		if measurements[i] != records[i] {
			t.Fatalf("measurement %d drifted:\n%+v\n%+v", i, measurements[i], records[i])
		}
	}
}
