// Package httpapi exposes the operational HTTP surface of the lab service:
// health and status probes, recording control, and session export endpoints.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inductionlab/sim/internal/export"
	"inductionlab/sim/internal/lab"
	"inductionlab/sim/internal/logging"
	"inductionlab/sim/internal/store"
)

// ClientsFunc returns the number of connected stream viewers.
type ClientsFunc func() int

// RateLimiter gates how frequently expensive operations may be invoked.
type RateLimiter interface {
	Allow() bool
}

// Options configures the HandlerSet.
type Options struct {
	Logger      *logging.Logger
	Lab         *lab.Lab
	Clients     ClientsFunc
	Store       *store.Store
	SessionDir  string
	RateLimiter RateLimiter
	TimeSource  func() time.Time
}

// HandlerSet bundles the lab service operational handlers.
type HandlerSet struct {
	logger      *logging.Logger
	lab         *lab.Lab
	clients     ClientsFunc
	store       *store.Store
	sessionDir  string
	rateLimiter RateLimiter
	now         func() time.Time
	started     time.Time
}

// NewHandlerSet constructs a HandlerSet using the provided options.
func NewHandlerSet(opts Options) *HandlerSet {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}
	return &HandlerSet{
		logger:      logger,
		lab:         opts.Lab,
		clients:     opts.Clients,
		store:       opts.Store,
		sessionDir:  opts.SessionDir,
		rateLimiter: opts.RateLimiter,
		now:         now,
		started:     now(),
	}
}

// Register attaches the handlers to the provided mux.
func (h *HandlerSet) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/healthz", h.HealthHandler())
	mux.HandleFunc("/statusz", h.StatusHandler())
	mux.HandleFunc("/recording/start", h.RecordingHandler(true))
	mux.HandleFunc("/recording/stop", h.RecordingHandler(false))
	mux.HandleFunc("/reset", h.ResetHandler())
	mux.HandleFunc("/export/csv", h.ExportCSVHandler())
	mux.HandleFunc("/export/json", h.ExportJSONHandler())
	mux.HandleFunc("/export/bundle", h.ExportBundleHandler())
	mux.HandleFunc("/sessions", h.SaveSessionHandler())
}

// HealthHandler reports process liveness.
func (h *HandlerSet) HealthHandler() http.HandlerFunc {
	type response struct {
		Status string  `json:"status"`
		Uptime float64 `json:"uptime_seconds"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, response{
			Status: "ok",
			Uptime: h.now().Sub(h.started).Seconds(),
		})
	}
}

// StatusHandler reports the bench state and tick loop health.
func (h *HandlerSet) StatusHandler() http.HandlerFunc {
	type tickReport struct {
		Samples   int     `json:"samples"`
		Dropped   int     `json:"dropped"`
		AverageMS float64 `json:"average_ms"`
		MaxMS     float64 `json:"max_ms"`
		Hz        float64 `json:"hz"`
	}
	type response struct {
		Mode       string     `json:"mode"`
		SimTime    float64    `json:"sim_time"`
		Recording  bool       `json:"recording"`
		HistoryLen int        `json:"history_len"`
		Samples    int        `json:"recorded_samples"`
		Viewers    int        `json:"viewers"`
		Tick       tickReport `json:"tick"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		//1.- Gather tick timings and bench state under the lab's own locking.
		stats := h.lab.Monitor().Snapshot()
		recorded := len(h.lab.Measurements())
		if h.lab.Mode() == lab.ModeCurrentToField {
			recorded = len(h.lab.MeasurementsB())
		}
		viewers := 0
		if h.clients != nil {
			viewers = h.clients()
		}
		writeJSON(w, http.StatusOK, response{
			Mode:       string(h.lab.Mode()),
			SimTime:    h.lab.SimTime(),
			Recording:  h.lab.Recording(),
			HistoryLen: h.lab.HistoryLen(),
			Samples:    recorded,
			Viewers:    viewers,
			Tick: tickReport{
				Samples:   stats.Samples,
				Dropped:   stats.Dropped,
				AverageMS: float64(stats.Average) / float64(time.Millisecond),
				MaxMS:     float64(stats.Max) / float64(time.Millisecond),
				Hz:        stats.AverageHz(),
			},
		})
	}
}

// RecordingHandler starts or stops measurement recording.
func (h *HandlerSet) RecordingHandler(start bool) http.HandlerFunc {
	type response struct {
		Recording bool `json:"recording"`
		Samples   int  `json:"recorded_samples"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		if start {
			h.lab.StartRecording()
		} else {
			h.lab.StopRecording()
		}
		h.logger.Info("recording toggled", logging.Bool("recording", h.lab.Recording()))
		writeJSON(w, http.StatusOK, response{
			Recording: h.lab.Recording(),
			Samples:   h.recordedCount(),
		})
	}
}

// ResetHandler clears the measurement log, history, and simulation clock.
func (h *HandlerSet) ResetHandler() http.HandlerFunc {
	type response struct {
		SimTime float64 `json:"sim_time"`
		Samples int     `json:"recorded_samples"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		h.lab.Reset()
		h.logger.Info("lab reset")
		writeJSON(w, http.StatusOK, response{SimTime: h.lab.SimTime(), Samples: 0})
	}
}

// ExportCSVHandler streams the recorded measurement log as CSV.
func (h *HandlerSet) ExportCSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="session.csv"`)
		var err error
		if h.lab.Mode() == lab.ModeCurrentToField {
			err = export.WriteCSVB(w, h.lab.MeasurementsB())
		} else {
			err = export.WriteCSV(w, h.lab.Measurements())
		}
		if err != nil {
			h.logger.Error("csv export failed", logging.Error(err))
		}
	}
}

// ExportJSONHandler streams the recorded measurement log as a session document.
func (h *HandlerSet) ExportJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		var err error
		if h.lab.Mode() == lab.ModeCurrentToField {
			err = export.WriteJSONB(w, h.lab.MeasurementsB(), h.now())
		} else {
			err = export.WriteJSON(w, h.lab.Measurements(), h.now())
		}
		if err != nil {
			h.logger.Error("json export failed", logging.Error(err))
		}
	}
}

// ExportBundleHandler writes the recorded log to a compressed session bundle
// on disk and reports the bundle directory.
func (h *HandlerSet) ExportBundleHandler() http.HandlerFunc {
	type response struct {
		Directory string `json:"directory"`
		Samples   int    `json:"samples"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		if h.rateLimiter != nil && !h.rateLimiter.Allow() {
			http.Error(w, "bundle export rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		if h.lab.Mode() != lab.ModeFaraday {
			http.Error(w, "bundle export is only available on the faraday bench", http.StatusConflict)
			return
		}
		measurements := h.lab.Measurements()
		if len(measurements) == 0 {
			http.Error(w, "no recorded measurements", http.StatusConflict)
			return
		}
		logger := h.logger.With(logging.Int("samples", len(measurements)))
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "session"
		}
		writer, _, err := export.NewBundleWriter(h.sessionDir, name, string(h.lab.Mode()), h.now)
		if err != nil {
			logger.Error("bundle create failed", logging.Error(err))
			http.Error(w, "bundle export failed", http.StatusInternalServerError)
			return
		}
		for _, m := range measurements {
			if err := writer.Append(m); err != nil {
				logger.Error("bundle append failed", logging.Error(err))
				writer.Close()
				http.Error(w, "bundle export failed", http.StatusInternalServerError)
				return
			}
		}
		if err := writer.Close(); err != nil {
			logger.Error("bundle close failed", logging.Error(err))
			http.Error(w, "bundle export failed", http.StatusInternalServerError)
			return
		}
		logger.Info("session bundle written", logging.String("directory", writer.Directory()))
		writeJSON(w, http.StatusOK, response{Directory: writer.Directory(), Samples: len(measurements)})
	}
}

// SaveSessionHandler persists the recorded log to the session database.
func (h *HandlerSet) SaveSessionHandler() http.HandlerFunc {
	type response struct {
		SessionID uint `json:"session_id"`
		Samples   int  `json:"samples"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.lab == nil {
			http.Error(w, "lab unavailable", http.StatusServiceUnavailable)
			return
		}
		if h.store == nil {
			http.Error(w, "session database unavailable", http.StatusServiceUnavailable)
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = fmt.Sprintf("session-%d", h.now().Unix())
		}
		var (
			id      uint
			count   int
			saveErr error
		)
		//1.- Persist the log matching the active bench mode.
		if h.lab.Mode() == lab.ModeCurrentToField {
			rows := h.lab.MeasurementsB()
			count = len(rows)
			id, saveErr = h.store.SaveSessionB(name, rows)
		} else {
			rows := h.lab.Measurements()
			count = len(rows)
			id, saveErr = h.store.SaveSession(name, rows)
		}
		if saveErr != nil {
			h.logger.Error("session save failed", logging.Error(saveErr))
			http.Error(w, "session save failed", http.StatusInternalServerError)
			return
		}
		h.logger.Info("session saved",
			logging.String("name", name), logging.Int("samples", count))
		writeJSON(w, http.StatusOK, response{SessionID: id, Samples: count})
	}
}

func (h *HandlerSet) recordedCount() int {
	if h.lab.Mode() == lab.ModeCurrentToField {
		return len(h.lab.MeasurementsB())
	}
	return len(h.lab.Measurements())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
