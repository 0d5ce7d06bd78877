// Command labd runs the induction lab service: a fixed-rate simulation loop
// over one of the two bench scenarios, a websocket stream of live
// measurements, and an HTTP surface for recording control and session export.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inductionlab/sim/internal/config"
	httpapi "inductionlab/sim/internal/http"
	"inductionlab/sim/internal/lab"
	"inductionlab/sim/internal/logging"
	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/store"
	"inductionlab/sim/internal/stream"
)

func main() {
	modeFlag := flag.String("mode", string(lab.ModeFaraday),
		"bench scenario: faraday or current_to_field")
	flag.Parse()

	if err := run(lab.Mode(*modeFlag)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode lab.Mode) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	logging.ReplaceGlobals(logger)
	defer logger.Sync()

	//1.- Seed the bench with the default classroom scenario for the mode.
	bench := lab.New(lab.Options{
		Mode:    mode,
		Samples: cfg.FluxSamples,
		Magnet: phys.Magnet{
			Position: phys.Vec2{X: -0.6},
			Velocity: phys.Vec2{X: 0.5},
			Moment:   1.0,
		},
		Coil: phys.Coil{Radius: 0.1, Turns: 100, Tilt: math.Pi / 2, Resistance: 1.0},
		Solenoid: phys.Solenoid{
			Length:   0.2,
			Turns:    400,
			Radius:   0.02,
			Polarity: 1,
		},
		Voltage:         5.0,
		TotalResistance: 10.0,
	})

	var db *store.Store
	if cfg.DatabasePath != "" {
		db, err = store.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open session database: %w", err)
		}
		defer db.Close()
	}

	hub := stream.NewHub(logger)

	//2.- The loop feeds wall-clock deltas to the bench and streams the
	// resulting measurement to every connected viewer.
	loop := lab.NewLoop(cfg.TargetHz, func(dt float64) {
		started := time.Now()
		m, mb, ok := bench.Advance(dt)
		if !ok {
			bench.Monitor().ObserveDrop()
			return
		}
		bench.Monitor().Observe(time.Since(started))

		var (
			payload    []byte
			marshalErr error
		)
		if bench.Mode() == lab.ModeCurrentToField {
			payload, marshalErr = json.Marshal(mb)
		} else {
			payload, marshalErr = json.Marshal(m)
		}
		if marshalErr != nil {
			logger.Error("marshal measurement", logging.Error(marshalErr))
			return
		}
		hub.Broadcast(payload)
	})

	mux := http.NewServeMux()
	handlers := httpapi.NewHandlerSet(httpapi.Options{
		Logger:      logger,
		Lab:         bench,
		Clients:     hub.ClientCount,
		Store:       db,
		SessionDir:  cfg.SessionDir,
		RateLimiter: httpapi.NewSlidingWindowLimiter(time.Minute, 4, nil),
	})
	handlers.Register(mux)
	mux.Handle("/ws", hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop.Start(ctx)

	server := &http.Server{Addr: cfg.Address, Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	logger.Info("lab service listening",
		logging.String("addr", cfg.Address),
		logging.String("mode", string(bench.Mode())),
		logging.Float64("target_hz", cfg.TargetHz))

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		loop.Stop()
		return fmt.Errorf("serve: %w", err)
	}

	//3.- Drain in dependency order: stop ticking, then close the listener.
	stop()
	loop.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", logging.Error(err))
	}
	logger.Info("lab service stopped")
	return nil
}
