// Package frametimer aggregates per-frame render durations into a windowed
// frames-per-second estimate.
package frametimer

// DefaultWindowMs is the aggregation window length.
const DefaultWindowMs = 1000

// FrameSample is one rendered frame.
type FrameSample struct {
	DurationMs  float64
	TimestampMs float64
}

// Timer accumulates samples between SampleAndReset calls. It is not safe for
// concurrent use; the render loop owns it.
type Timer struct {
	windowMs    float64
	windowStart float64
	started     bool

	sumMs float64
	count int
	last  float64
}

// New returns a timer whose estimate is initialFPS until the first window
// with samples completes.
func New(initialFPS, windowMs float64) *Timer {
	if windowMs <= 0 {
		windowMs = DefaultWindowMs
	}
	return &Timer{windowMs: windowMs, last: initialFPS}
}

// RecordFrame adds one sample. The first sample opens the window.
func (t *Timer) RecordFrame(s FrameSample) {
	if !t.started {
		t.windowStart = s.TimestampMs
		t.started = true
	}
	if s.DurationMs > 0 {
		t.sumMs += s.DurationMs
		t.count++
	}
}

// Due reports whether more than one window has elapsed since the window
// opened.
func (t *Timer) Due(nowMs float64) bool {
	return t.started && nowMs-t.windowStart > t.windowMs
}

// SampleAndReset returns 1000 / mean frame duration over the samples since
// the previous call and clears them. With no samples the previous estimate is
// returned. The next window opens at nowMs.
func (t *Timer) SampleAndReset(nowMs float64) float64 {
	if t.count > 0 {
		t.last = 1000 / (t.sumMs / float64(t.count))
	}
	t.sumMs = 0
	t.count = 0
	t.windowStart = nowMs
	t.started = true
	return t.last
}

// FPS returns the most recent estimate without resetting.
func (t *Timer) FPS() float64 {
	return t.last
}

// Pending returns the number of samples in the open window.
func (t *Timer) Pending() int {
	return t.count
}
