// Package signal turns the noisy per-tick flux sequence into a stable rate
// signal: a caller-owned bounded sample window, exponential smoothing, and the
// two-point backward difference that feeds the induction law.
package signal

// WindowSize bounds the flux history to the most recent entries; older samples
// are evicted first so derivative memory stays constant.
const WindowSize = 20

// Sample pairs one smoothed flux value (Weber) with its simulated timestamp
// (seconds).
type Sample struct {
	Flux float64 `json:"flux"`
	Time float64 `json:"time"`
}

// History is the bounded, time-ordered flux window. It has value semantics:
// Extend returns a new History backed by fresh storage, so the snapshot
// pipeline never mutates the caller's copy. The caller owns persistence
// between ticks.
type History struct {
	samples []Sample
}

// NewHistory builds a history from existing samples, keeping only the most
// recent WindowSize entries.
func NewHistory(samples ...Sample) History {
	h := History{}
	for _, s := range samples {
		h = h.Extend(s)
	}
	return h
}

// Len reports how many samples the window currently holds.
func (h History) Len() int {
	return len(h.samples)
}

// Last returns the most recent sample, if any.
func (h History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// At returns the sample at index i, oldest first.
func (h History) At(i int) Sample {
	return h.samples[i]
}

// Extend returns a copy of the history with the sample appended, evicting the
// oldest entry once the window is full. The receiver is left untouched.
func (h History) Extend(s Sample) History {
	//1.- Copy into fresh storage so the extension never aliases the receiver.
	start := 0
	if len(h.samples) >= WindowSize {
		start = len(h.samples) - WindowSize + 1
	}
	next := make([]Sample, 0, len(h.samples)-start+1)
	next = append(next, h.samples[start:]...)
	next = append(next, s)
	return History{samples: next}
}

// Samples returns a copy of the window, oldest first.
func (h History) Samples() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}
