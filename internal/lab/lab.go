// Package lab owns the time-stepped simulation state: the active scenario,
// the magnet motion model, the caller-side flux history, the recording gate,
// and the append-only measurement log. The physics packages underneath stay
// pure; this is the only place state lives between ticks.
package lab

import (
	"math"
	"sync"

	"inductionlab/sim/internal/phys"
	"inductionlab/sim/internal/signal"
	"inductionlab/sim/internal/snapshot"
)

// Mode selects which scenario pipeline the lab is running.
type Mode string

const (
	// ModeFaraday is the moving-magnet induction scenario.
	ModeFaraday Mode = "faraday"
	// ModeCurrentToField is the steady-state solenoid scenario.
	ModeCurrentToField Mode = "current_to_field"
)

// MaxTickDelta is the largest wall-clock delta accepted for one tick, in
// seconds. Larger gaps are treated as a resume-from-suspend event and
// dropped, so a backgrounded process never injects a huge non-physical jump
// into the integrated flux.
const MaxTickDelta = 0.1

// Drive optionally replaces free magnet motion with a sinusoidal oscillation
// about an anchor point, giving reproducible periodic flux changes.
type Drive struct {
	Enabled   bool
	Anchor    phys.Vec2
	Amplitude float64
	Frequency float64
}

// Lab is the single owner of mutable simulation state. All access is
// serialised by one mutex; the snapshot assemblers it calls are pure.
type Lab struct {
	mu sync.Mutex

	mode    Mode
	samples int

	magnet         phys.Magnet
	coil           phys.Coil
	loadResistance float64
	drive          Drive

	solenoid        phys.Solenoid
	voltage         float64
	totalResistance float64

	simTime   float64
	recording bool
	history   signal.History

	latest  snapshot.Measurement
	latestB snapshot.MeasurementB
	log     []snapshot.Measurement
	logB    []snapshot.MeasurementB

	monitor *TickMonitor
}

// Options seeds a new lab with its initial scenario state.
type Options struct {
	Mode    Mode
	Samples int

	Magnet         phys.Magnet
	Coil           phys.Coil
	LoadResistance float64
	Drive          Drive

	Solenoid        phys.Solenoid
	Voltage         float64
	TotalResistance float64
}

// New constructs a lab in the configured mode.
func New(opts Options) *Lab {
	mode := opts.Mode
	if mode != ModeCurrentToField {
		mode = ModeFaraday
	}
	samples := opts.Samples
	if samples <= 0 {
		samples = phys.DefaultFluxSamples
	}
	return &Lab{
		mode:            mode,
		samples:         samples,
		magnet:          opts.Magnet,
		coil:            opts.Coil,
		loadResistance:  opts.LoadResistance,
		drive:           opts.Drive,
		solenoid:        opts.Solenoid,
		voltage:         opts.Voltage,
		totalResistance: opts.TotalResistance,
		monitor:         NewTickMonitor(),
	}
}

// Advance processes one wall-clock tick of dt seconds. It returns the fresh
// measurement payload for live consumers and whether the tick was accepted.
// Simulated time, the history window, and the measurement log advance only
// while recording; while paused the live snapshot is still recomputed so the
// instantaneous display stays responsive against the frozen timeline.
func (l *Lab) Advance(dt float64) (snapshot.Measurement, snapshot.MeasurementB, bool) {
	if l == nil || dt <= 0 {
		return snapshot.Measurement{}, snapshot.MeasurementB{}, false
	}
	//1.- Oversized deltas mean the process was suspended; drop the tick.
	if dt > MaxTickDelta {
		return snapshot.Measurement{}, snapshot.MeasurementB{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == ModeCurrentToField {
		m := snapshot.AssembleSolenoid(snapshot.SolenoidInput{
			Time:            l.simTime,
			Solenoid:        l.solenoid,
			Voltage:         l.voltage,
			TotalResistance: l.totalResistance,
		})
		l.latestB = m
		if l.recording {
			l.simTime += dt
			l.logB = append(l.logB, m)
		}
		return snapshot.Measurement{}, m, true
	}

	//2.- While recording, motion and simulated time advance before sampling.
	if l.recording {
		l.simTime += dt
		l.moveMagnetLocked(dt)
	}
	m, extended := snapshot.Assemble(snapshot.FaradayInput{
		Time:           l.simTime,
		DeltaT:         dt,
		Magnet:         l.magnet,
		Coil:           l.coil,
		LoadResistance: l.loadResistance,
		Samples:        l.samples,
		History:        l.history,
	})
	l.latest = m
	//3.- Only a recording tick persists the extended history and the record.
	if l.recording {
		l.history = extended
		l.log = append(l.log, m)
	}
	return m, snapshot.MeasurementB{}, true
}

// moveMagnetLocked advances the magnet by one recorded tick.
func (l *Lab) moveMagnetLocked(dt float64) {
	if l.drive.Enabled {
		omega := 2 * math.Pi * l.drive.Frequency
		phase := omega * l.simTime
		l.magnet.Position = l.drive.Anchor.Add(phys.Vec2{X: l.drive.Amplitude * math.Sin(phase)})
		l.magnet.Velocity = phys.Vec2{X: l.drive.Amplitude * omega * math.Cos(phase)}
		return
	}
	l.magnet.Position = l.magnet.Position.Add(l.magnet.Velocity.Scale(dt))
}

// StartRecording opens the recorded timeline; simulated time resumes.
func (l *Lab) StartRecording() {
	l.mu.Lock()
	l.recording = true
	l.mu.Unlock()
}

// StopRecording freezes the recorded timeline; live preview keeps updating.
func (l *Lab) StopRecording() {
	l.mu.Lock()
	l.recording = false
	l.mu.Unlock()
}

// Recording reports whether the recorded timeline is advancing.
func (l *Lab) Recording() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recording
}

// Reset clears simulated time, the history window, and both measurement logs.
// Scenario parameters are kept.
func (l *Lab) Reset() {
	l.mu.Lock()
	l.simTime = 0
	l.recording = false
	l.history = signal.History{}
	l.log = nil
	l.logB = nil
	l.latest = snapshot.Measurement{}
	l.latestB = snapshot.MeasurementB{}
	l.monitor.Reset()
	l.mu.Unlock()
}

// Mode reports the active scenario.
func (l *Lab) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// SimTime reports the recorded-timeline clock in seconds.
func (l *Lab) SimTime() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.simTime
}

// HistoryLen reports how many flux samples the derivative window holds.
func (l *Lab) HistoryLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.Len()
}

// Latest returns the most recent Faraday-mode measurement.
func (l *Lab) Latest() snapshot.Measurement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// LatestB returns the most recent solenoid-mode measurement.
func (l *Lab) LatestB() snapshot.MeasurementB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latestB
}

// Measurements returns a copy of the recorded Faraday-mode log.
func (l *Lab) Measurements() []snapshot.Measurement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]snapshot.Measurement, len(l.log))
	copy(out, l.log)
	return out
}

// MeasurementsB returns a copy of the recorded solenoid-mode log.
func (l *Lab) MeasurementsB() []snapshot.MeasurementB {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]snapshot.MeasurementB, len(l.logB))
	copy(out, l.logB)
	return out
}

// Monitor exposes the tick statistics collector.
func (l *Lab) Monitor() *TickMonitor {
	return l.monitor
}

// SetMagnet replaces the magnet state.
func (l *Lab) SetMagnet(m phys.Magnet) {
	l.mu.Lock()
	l.magnet = m
	l.mu.Unlock()
}

// SetCoil replaces the coil geometry.
func (l *Lab) SetCoil(c phys.Coil) {
	l.mu.Lock()
	l.coil = c
	l.mu.Unlock()
}

// SetSolenoid replaces the solenoid geometry.
func (l *Lab) SetSolenoid(s phys.Solenoid) {
	l.mu.Lock()
	l.solenoid = s
	l.mu.Unlock()
}

// SetElectrical replaces the Mode B drive parameters.
func (l *Lab) SetElectrical(voltage, totalResistance float64) {
	l.mu.Lock()
	l.voltage = voltage
	l.totalResistance = totalResistance
	l.mu.Unlock()
}
