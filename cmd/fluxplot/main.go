// Command fluxplot renders an exported recording session as PNG charts of
// linked flux, EMF, and induced current against simulated time. It accepts
// either a session JSON document or a compressed bundle directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"inductionlab/sim/internal/export"
	"inductionlab/sim/internal/snapshot"
)

func main() {
	in := flag.String("in", "", "session JSON file or bundle directory")
	out := flag.String("out", ".", "directory to write the PNG charts into")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: fluxplot -in session.json [-out dir]")
		os.Exit(2)
	}
	if err := run(*in, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in, out string) error {
	measurements, err := loadMeasurements(in)
	if err != nil {
		return err
	}
	if len(measurements) == 0 {
		return fmt.Errorf("session %s holds no measurements", in)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	charts := []struct {
		file  string
		title string
		unit  string
		value func(snapshot.Measurement) float64
	}{
		{"flux.png", "Linked flux", "Φ (Wb)", func(m snapshot.Measurement) float64 { return m.Flux }},
		{"emf.png", "Induced EMF", "ε (V)", func(m snapshot.Measurement) float64 { return m.EMF }},
		{"current.png", "Induced current", "I (A)", func(m snapshot.Measurement) float64 { return m.Current }},
	}
	for _, chart := range charts {
		path := filepath.Join(out, chart.file)
		if err := renderChart(path, chart.title, chart.unit, measurements, chart.value); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

// loadMeasurements reads a bundle directory or a session JSON document.
func loadMeasurements(in string) ([]snapshot.Measurement, error) {
	info, err := os.Stat(in)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		_, measurements, err := export.LoadBundle(in)
		if err != nil {
			return nil, fmt.Errorf("load bundle: %w", err)
		}
		return measurements, nil
	}
	file, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer file.Close()
	session, err := export.ReadJSON(file)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return session.Measurements, nil
}

func renderChart(path, title, unit string, measurements []snapshot.Measurement, value func(snapshot.Measurement) float64) error {
	points := make(plotter.XYs, len(measurements))
	for i, m := range measurements {
		points[i].X = m.Time
		points[i].Y = value(m)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = unit
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("build series: %w", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
