package lab

import (
	"context"
	"math"
	"testing"
	"time"

	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/signal"
)

func newFaradayLab() *Lab {
	return New(Options{
		Mode:           ModeFaraday,
		Magnet:         phys.Magnet{Position: phys.Vec2{X: -0.5}, Velocity: phys.Vec2{X: 1}, Moment: 1},
		Coil:           phys.Coil{Radius: 0.1, Turns: 10, Tilt: math.Pi / 2, Resistance: 0.5},
		LoadResistance: 1.0,
	})
}

func TestAdvanceDropsOversizedDelta(t *testing.T) {
	l := newFaradayLab()
	l.StartRecording()
	//1.- A suspended process produces a huge delta; the tick must be rejected.
	if _, _, ok := l.Advance(0.25); ok {
		t.Fatalf("tick above the delta clamp should be dropped")
	}
	if l.SimTime() != 0 {
		t.Fatalf("dropped tick advanced simulated time to %.3f", l.SimTime())
	}
	if got := len(l.Measurements()); got != 0 {
		t.Fatalf("dropped tick appended %d measurements", got)
	}
}

func TestAdvanceRejectsNonPositiveDelta(t *testing.T) {
	l := newFaradayLab()
	if _, _, ok := l.Advance(0); ok {
		t.Fatalf("zero delta should be rejected")
	}
	if _, _, ok := l.Advance(-0.016); ok {
		t.Fatalf("negative delta should be rejected")
	}
}

func TestPausedTicksKeepTimelineFrozen(t *testing.T) {
	l := newFaradayLab()
	//1.- Without recording, ticks refresh the live snapshot only.
	for i := 0; i < 5; i++ {
		if _, _, ok := l.Advance(0.016); !ok {
			t.Fatalf("paused tick %d rejected", i)
		}
	}
	if l.SimTime() != 0 {
		t.Fatalf("paused ticks advanced simulated time to %.3f", l.SimTime())
	}
	if l.HistoryLen() != 0 {
		t.Fatalf("paused ticks extended the history to %d", l.HistoryLen())
	}
	if got := len(l.Measurements()); got != 0 {
		t.Fatalf("paused ticks recorded %d measurements", got)
	}
	//2.- But the live preview is populated.
	if l.Latest().Explanation == "" {
		t.Fatalf("live snapshot should be populated while paused")
	}
}

func TestRecordingAppendsAndBoundsHistory(t *testing.T) {
	l := newFaradayLab()
	l.StartRecording()
	ticks := signal.WindowSize + 10
	for i := 0; i < ticks; i++ {
		if _, _, ok := l.Advance(0.016); !ok {
			t.Fatalf("recording tick %d rejected", i)
		}
	}
	//1.- The log is append-only and unbounded; the window is clamped.
	if got := len(l.Measurements()); got != ticks {
		t.Fatalf("recorded %d measurements, want %d", got, ticks)
	}
	if l.HistoryLen() != signal.WindowSize {
		t.Fatalf("history length %d, want %d", l.HistoryLen(), signal.WindowSize)
	}
	if got := l.SimTime(); math.Abs(got-float64(ticks)*0.016) > 1e-9 {
		t.Fatalf("simulated time %.4f, want %.4f", got, float64(ticks)*0.016)
	}
	//2.- Timestamps in the log are strictly increasing while recording.
	ms := l.Measurements()
	for i := 1; i < len(ms); i++ {
		if ms[i].Time <= ms[i-1].Time {
			t.Fatalf("timestamps not increasing at %d: %.4f then %.4f", i, ms[i-1].Time, ms[i].Time)
		}
	}
}

func TestRecordingMovesMagnet(t *testing.T) {
	l := newFaradayLab()
	l.StartRecording()
	for i := 0; i < 10; i++ {
		l.Advance(0.01)
	}
	//1.- Constant-velocity drift: 10 ticks of 10 ms at 1 m/s is 0.1 m.
	got := l.Latest().MagnetPosition.X
	if math.Abs(got-(-0.4)) > 1e-9 {
		t.Fatalf("magnet position %.4f, want -0.4", got)
	}
}

func TestOscillationDrive(t *testing.T) {
	l := New(Options{
		Mode:   ModeFaraday,
		Magnet: phys.Magnet{Moment: 1},
		Coil:   phys.Coil{Radius: 0.1, Turns: 10, Tilt: math.Pi / 2},
		Drive:  Drive{Enabled: true, Anchor: phys.Vec2{X: -0.5}, Amplitude: 0.2, Frequency: 1},
	})
	l.StartRecording()
	for i := 0; i < 25; i++ {
		l.Advance(0.01)
	}
	//1.- A quarter period of a 1 Hz drive puts the magnet at the +x extreme.
	got := l.Latest().MagnetPosition.X
	if math.Abs(got-(-0.3)) > 1e-3 {
		t.Fatalf("driven magnet at %.4f, want about -0.3", got)
	}
}

func TestSolenoidModeRecords(t *testing.T) {
	l := New(Options{
		Mode:            ModeCurrentToField,
		Solenoid:        phys.Solenoid{Length: 0.5, Turns: 100, Radius: 0.02, Polarity: 1},
		Voltage:         5,
		TotalResistance: 5,
	})
	l.StartRecording()
	for i := 0; i < 3; i++ {
		if _, m, ok := l.Advance(0.016); !ok || m.Current != 1.0 {
			t.Fatalf("tick %d: ok=%v current=%.4f", i, ok, m.Current)
		}
	}
	if got := len(l.MeasurementsB()); got != 3 {
		t.Fatalf("recorded %d solenoid measurements, want 3", got)
	}
}

func TestResetClearsTimeline(t *testing.T) {
	l := newFaradayLab()
	l.StartRecording()
	for i := 0; i < 5; i++ {
		l.Advance(0.016)
	}
	l.Reset()
	if l.SimTime() != 0 || l.HistoryLen() != 0 || len(l.Measurements()) != 0 {
		t.Fatalf("reset left state behind: t=%.3f history=%d log=%d",
			l.SimTime(), l.HistoryLen(), len(l.Measurements()))
	}
	if l.Recording() {
		t.Fatalf("reset should stop recording")
	}
}

func TestLoopDeliversWallClockDeltas(t *testing.T) {
	deltas := make(chan float64, 16)
	loop := NewLoop(100, func(dt float64) {
		select {
		case deltas <- dt:
		default:
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	//1.- Collect a few frames, then shut the loop down.
	var got []float64
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case d := <-deltas:
			got = append(got, d)
		case <-timeout:
			t.Fatalf("loop produced only %d deltas", len(got))
		}
	}
	cancel()
	loop.Stop()

	for _, d := range got {
		if d <= 0 {
			t.Fatalf("loop delivered non-positive delta %.6f", d)
		}
	}
}

func TestTickMonitorAggregates(t *testing.T) {
	m := NewTickMonitor()
	m.Observe(10 * time.Millisecond)
	m.Observe(30 * time.Millisecond)
	m.ObserveDrop()
	s := m.Snapshot()
	if s.Samples != 2 || s.Dropped != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.Average != 20*time.Millisecond || s.Max != 30*time.Millisecond {
		t.Fatalf("unexpected aggregates %+v", s)
	}
	if hz := s.AverageHz(); math.Abs(hz-50) > 1e-9 {
		t.Fatalf("average Hz %.2f, want 50", hz)
	}
	m.Reset()
	if s := m.Snapshot(); s.Samples != 0 || s.Dropped != 0 {
		t.Fatalf("reset left samples behind %+v", s)
	}
}
