package subsystem

// LowPass is the single-pole low-pass filter the main command loop applies
// to commanded speed and rotation before they reach the motor driver:
// y += (x - y) / n, equivalent to alpha = 1/n.
type LowPass struct {
	n       int
	value   float64
	primed  bool
}

// NewLowPass builds a filter with smoothing factor 1/n.
func NewLowPass(n int) *LowPass {
	if n < 1 {
		n = 1
	}
	return &LowPass{n: n}
}

// Update folds x into the running value and returns the new filtered
// value. The first call snaps directly to x rather than ramping up from
// zero, so a fresh command isn't damped by sixteen iterations of silence.
func (f *LowPass) Update(x float64) float64 {
	if !f.primed {
		f.value = x
		f.primed = true
		return f.value
	}
	f.value += (x - f.value) / float64(f.n)
	return f.value
}

// Value returns the filter's current output without updating it.
func (f *LowPass) Value() float64 {
	return f.value
}
