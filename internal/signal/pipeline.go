package signal

// SmoothingAlpha is the exponential smoothing weight applied to raw integrated
// flux before it enters the history window.
const SmoothingAlpha = 0.3

// minTimeDelta is the smallest usable spacing between derivative samples;
// anything closer reports a zero rate instead of a near-singular division.
const minTimeDelta = 1e-9

// Smooth applies one step of exponential smoothing against the last recorded
// value: α·raw + (1-α)·previous. When the history is empty the raw value
// passes through unchanged as the initial smoothed value.
func Smooth(h History, raw float64) float64 {
	last, ok := h.Last()
	if !ok {
		return raw
	}
	return SmoothingAlpha*raw + (1-SmoothingAlpha)*last.Flux
}

// BackwardDifference returns dΦ/dt estimated from the two most recent history
// samples. Fewer than two samples, or a time spacing below minTimeDelta,
// yields zero: no rate is defined yet.
//
// A symmetric central difference (one sample each side of the evaluation
// time) was considered and rejected: it would delay the reported rate by a
// full tick, which a live display cannot afford.
func BackwardDifference(h History) float64 {
	n := h.Len()
	if n < 2 {
		return 0
	}
	newest := h.At(n - 1)
	prior := h.At(n - 2)
	dt := newest.Time - prior.Time
	if dt < minTimeDelta {
		return 0
	}
	return (newest.Flux - prior.Flux) / dt
}
