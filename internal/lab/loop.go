package lab

import (
	"context"
	"time"
)

// StepFunc receives the measured wall-clock delta for one animation frame.
type StepFunc func(dt float64)

// Loop drives the lab at a target frame rate using wall-clock pacing: each
// tick passes the real elapsed time since the previous one, not a fixed step.
// The Δt clamp in Lab.Advance handles pauses and suspensions.
type Loop struct {
	interval time.Duration
	step     StepFunc
	ticker   *time.Ticker
	done     chan struct{}
}

// NewLoop configures a loop targeting the provided frames per second.
func NewLoop(targetHz float64, step StepFunc) *Loop {
	if targetHz <= 0 {
		targetHz = 60
	}
	if step == nil {
		step = func(float64) {}
	}
	interval := time.Duration(float64(time.Second) / targetHz)
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{interval: interval, step: step}
}

// Start begins ticking until the context is cancelled or Stop is invoked.
func (l *Loop) Start(ctx context.Context) {
	if l == nil || l.step == nil {
		return
	}
	l.ticker = time.NewTicker(l.interval)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		defer l.ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-l.ticker.C:
				//1.- Hand the real elapsed time to the step; the lab decides
				// whether the delta is usable.
				l.step(now.Sub(last).Seconds())
				last = now
			}
		}
	}()
}

// Stop cancels the loop and waits for the goroutine to exit.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		<-l.done
		l.done = nil
	}
}

// Interval exposes the configured frame interval for testing.
func (l *Loop) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}
