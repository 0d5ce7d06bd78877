package export

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"inductionlab/sim/internal/snapshot"
)

var sessionNameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// BundleVersion identifies the on-disk session bundle layout.
const BundleVersion = 1

// Manifest describes the bundle layout so tooling can locate the artefacts.
type Manifest struct {
	Version          int    `json:"version"`
	CreatedAt        string `json:"created_at"`
	Mode             string `json:"mode"`
	MeasurementsPath string `json:"measurements_path"`
	FramesPath       string `json:"frames_path"`
}

// BundleWriter streams a recorded session to disk: a snappy-compressed JSONL
// measurement log for tooling, plus a zstd-compressed length-prefixed binary
// frame stream for compact long recordings.
type BundleWriter struct {
	mu         sync.Mutex
	dir        string
	now        func() time.Time
	recordFile *os.File
	records    *snappy.Writer
	frameFile  *os.File
	frames     *zstd.Encoder
	tick       uint64
}

// NewBundleWriter creates the session directory under root and opens the
// compressed sinks. The session name is sanitised for use as a path segment.
func NewBundleWriter(root, session, mode string, clock func() time.Time) (*BundleWriter, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("session root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	cleaned := sessionNameCleaner.ReplaceAllString(session, "")
	if cleaned == "" {
		cleaned = "session"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	recordPath := filepath.Join(dir, "measurements.jsonl.sz")
	framePath := filepath.Join(dir, "frames.bin.zst")

	recordFile, err := os.Create(recordPath)
	if err != nil {
		return nil, Manifest{}, err
	}
	records := snappy.NewBufferedWriter(recordFile)

	frameFile, err := os.Create(framePath)
	if err != nil {
		records.Close()
		recordFile.Close()
		return nil, Manifest{}, err
	}
	frames, err := zstd.NewWriter(frameFile)
	if err != nil {
		records.Close()
		recordFile.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}

	manifest := Manifest{
		Version:          BundleVersion,
		CreatedAt:        created.Format(time.RFC3339Nano),
		Mode:             mode,
		MeasurementsPath: "measurements.jsonl.sz",
		FramesPath:       "frames.bin.zst",
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644)
	}
	if err != nil {
		frames.Close()
		frameFile.Close()
		records.Close()
		recordFile.Close()
		return nil, Manifest{}, err
	}

	writer := &BundleWriter{
		dir:        dir,
		now:        clock,
		recordFile: recordFile,
		records:    records,
		frameFile:  frameFile,
		frames:     frames,
	}
	return writer, manifest, nil
}

// Directory exposes the directory backing the session bundle.
func (w *BundleWriter) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Append persists one measurement to both sinks.
func (w *BundleWriter) Append(m snapshot.Measurement) error {
	if w == nil {
		return fmt.Errorf("bundle writer not initialised")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode measurement: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.tick++

	//1.- One JSON line per measurement so downstream parsers can stream it.
	if _, err := w.records.Write(payload); err != nil {
		return err
	}
	if _, err := w.records.Write([]byte("\n")); err != nil {
		return err
	}

	//2.- Length-prefixed binary framing so replaying tools can step efficiently.
	header := make([]byte, 8+8+4)
	binary.LittleEndian.PutUint64(header[0:8], w.tick)
	binary.LittleEndian.PutUint64(header[8:16], math.Float64bits(m.Time))
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(payload)))
	if _, err := w.frames.Write(header); err != nil {
		return err
	}
	if _, err := w.frames.Write(payload); err != nil {
		return err
	}
	return nil
}

// Close flushes both streams and releases the file handles.
func (w *BundleWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if err := w.records.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.recordFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frames.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.frameFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
