package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"inductionlab/sim/internal/snapshot"
)

// LoadBundle rehydrates the measurement log from a session bundle directory
// written by BundleWriter.
func LoadBundle(dir string) (Manifest, []snapshot.Measurement, error) {
	if dir == "" {
		return Manifest{}, nil, fmt.Errorf("bundle directory must be provided")
	}

	//1.- The manifest locates the artefacts and pins the layout version.
	manifestData, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return Manifest{}, nil, fmt.Errorf("parse manifest: %w", err)
	}
	if manifest.Version != BundleVersion {
		return Manifest{}, nil, fmt.Errorf("unsupported bundle version %d", manifest.Version)
	}

	//2.- Stream the snappy JSONL log line by line.
	file, err := os.Open(filepath.Join(dir, manifest.MeasurementsPath))
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("open measurement log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var measurements []snapshot.Measurement
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var m snapshot.Measurement
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			return Manifest{}, nil, fmt.Errorf("parse measurement line %d: %w", line, err)
		}
		measurements = append(measurements, m)
	}
	if err := scanner.Err(); err != nil {
		return Manifest{}, nil, fmt.Errorf("scan measurement log: %w", err)
	}
	return manifest, measurements, nil
}
