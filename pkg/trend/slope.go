package trend

// FitSlope computes the ordinary least squares slope of SmoothedDelayMs
// regressed on ArrivalTimeMs over all samples in s.
//
// The slope is in delay-ms per arrival-ms. Positive values mean delay is
// building up, negative values mean the queue is draining and zero means delay
// is flat.
//
// ok is false when no line can be fit: fewer than two samples, or every
// sample has the same arrival time. Callers must treat that as "no trend
// signal this interval", which is distinct from a flat (0, true) result.
//
// Sums are accumulated left to right in two passes so that results are
// bit-for-bit reproducible for a given sample order. FitSlope does not
// allocate and does not retain s.
func FitSlope(s Samples) (slope float64, ok bool) {
	n := s.Len()
	if n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		p := s.At(i)
		sumX += p.ArrivalTimeMs
		sumY += p.SmoothedDelayMs
	}
	xAvg := sumX / float64(n)
	yAvg := sumY / float64(n)

	// slope = sum((x-xAvg)(y-yAvg)) / sum((x-xAvg)^2)
	// The float64 conversions keep the compiler from fusing multiply-adds,
	// which would change rounding on some architectures.
	var numerator, denominator float64
	for i := 0; i < n; i++ {
		p := s.At(i)
		dx := p.ArrivalTimeMs - xAvg
		numerator += float64(dx * (p.SmoothedDelayMs - yAvg))
		denominator += float64(dx * dx)
	}

	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// FitSlopeSlice is FitSlope over a plain slice of samples.
func FitSlopeSlice(samples []PacketTiming) (slope float64, ok bool) {
	return FitSlope(SampleSlice(samples))
}
