// Package trend estimates the trend of one-way network delay for delay-based
// congestion control.
package trend

// PacketTiming is one observation of network delay at a point in time.
type PacketTiming struct {
	// ArrivalTimeMs is the arrival time of the packet in milliseconds,
	// relative to any fixed reference. It is the regression's x value.
	// Values are expected to be non-decreasing within a window but may
	// repeat and need not be evenly spaced.
	ArrivalTimeMs float64

	// SmoothedDelayMs is the filtered delay at this arrival, in milliseconds.
	// It is the regression's y value. Filtering happens upstream.
	SmoothedDelayMs float64

	// RawDelayMs is the unfiltered delay measurement. It is carried for
	// diagnostics and is not used by FitSlope.
	RawDelayMs float64
}

// Samples is a read-only, ordered view over packet timings.
//
// Implementations must return the same sample for the same index for the
// duration of a FitSlope call.
type Samples interface {
	// Len returns the number of samples in the view.
	Len() int
	// At returns the i-th sample, 0 <= i < Len().
	At(i int) PacketTiming
}

// SampleSlice adapts a slice of PacketTiming to the Samples interface.
type SampleSlice []PacketTiming

// Len returns the number of samples.
func (s SampleSlice) Len() int { return len(s) }

// At returns the i-th sample.
func (s SampleSlice) At(i int) PacketTiming { return s[i] }
