package trend

// DefaultWindowSize is the number of samples kept by a Window when no valid
// capacity is given. It matches the regression window used by WebRTC's
// trendline estimator.
const DefaultWindowSize = 20

// Window is a fixed-capacity ring buffer of packet timings, ordered from
// oldest to newest. It implements Samples, so it can be passed straight to
// FitSlope.
//
// Window only stores samples. Deciding when to evict (by count through the
// capacity, or by age through DropBefore) is left to the owner.
//
// Window is not safe for concurrent use. Owners that share a window across
// goroutines must synchronize and can hand readers a copy from Snapshot.
type Window struct {
	buf   []PacketTiming
	head  int // index of the oldest sample
	count int
}

// NewWindow creates an empty window holding at most capacity samples.
// If capacity is less than 2, DefaultWindowSize is used since no slope can be
// fit to fewer than two points.
func NewWindow(capacity int) *Window {
	if capacity < 2 {
		capacity = DefaultWindowSize
	}
	return &Window{
		buf: make([]PacketTiming, capacity),
	}
}

// Len returns the number of samples in the window.
func (w *Window) Len() int { return w.count }

// Cap returns the maximum number of samples the window holds.
func (w *Window) Cap() int { return len(w.buf) }

// At returns the i-th sample counting from the oldest.
// It panics if i is out of range.
func (w *Window) At(i int) PacketTiming {
	if i < 0 || i >= w.count {
		panic("trend: Window index out of range")
	}
	return w.buf[w.index(i)]
}

// Push appends s as the newest sample. When the window is full the oldest
// sample is overwritten and returned with ok set to true.
func (w *Window) Push(s PacketTiming) (evicted PacketTiming, ok bool) {
	if w.count == len(w.buf) {
		evicted = w.buf[w.head]
		w.buf[w.head] = s
		w.head = w.index(1)
		return evicted, true
	}
	w.buf[w.index(w.count)] = s
	w.count++
	return PacketTiming{}, false
}

// Oldest returns the oldest sample, if any.
func (w *Window) Oldest() (PacketTiming, bool) {
	if w.count == 0 {
		return PacketTiming{}, false
	}
	return w.buf[w.head], true
}

// Newest returns the most recently pushed sample, if any.
func (w *Window) Newest() (PacketTiming, bool) {
	if w.count == 0 {
		return PacketTiming{}, false
	}
	return w.buf[w.index(w.count-1)], true
}

// DropBefore removes samples from the old end whose ArrivalTimeMs is less
// than cutoffMs, and returns how many were removed. Removal stops at the
// first sample at or after the cutoff.
func (w *Window) DropBefore(cutoffMs float64) int {
	dropped := 0
	for w.count > 0 && w.buf[w.head].ArrivalTimeMs < cutoffMs {
		w.buf[w.head] = PacketTiming{}
		w.head = w.index(1)
		w.count--
		dropped++
	}
	return dropped
}

// Snapshot appends the window's samples, oldest first, to dst and returns the
// extended slice.
func (w *Window) Snapshot(dst []PacketTiming) []PacketTiming {
	for i := 0; i < w.count; i++ {
		dst = append(dst, w.buf[w.index(i)])
	}
	return dst
}

// Reset empties the window, keeping its capacity.
func (w *Window) Reset() {
	clear(w.buf)
	w.head = 0
	w.count = 0
}

func (w *Window) index(i int) int {
	return (w.head + i) % len(w.buf)
}
