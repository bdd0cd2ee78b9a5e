package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timings(xy ...float64) []PacketTiming {
	if len(xy)%2 != 0 {
		panic("timings: odd number of coordinates")
	}
	out := make([]PacketTiming, 0, len(xy)/2)
	for i := 0; i < len(xy); i += 2 {
		out = append(out, PacketTiming{
			ArrivalTimeMs:   xy[i],
			SmoothedDelayMs: xy[i+1],
			RawDelayMs:      xy[i+1],
		})
	}
	return out
}

func TestFitSlope_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		samples   []PacketTiming
		wantSlope float64
		wantOK    bool
	}{
		{"rising", timings(1, 1, 2, 2, 3, 3), 1.0, true},
		{"falling", timings(1, 3, 2, 2, 3, 1), -1.0, true},
		{"single sample", timings(1, 3), 0, false},
		{"identical arrivals", timings(5, 10, 5, 20, 5, 30), 0, false},
		{"flat delay", timings(1, 5, 2, 5, 3, 5), 0.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, ok := FitSlopeSlice(tt.samples)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSlope, slope)
			}
		})
	}
}

func TestFitSlope_FewerThanTwoSamples(t *testing.T) {
	slope, ok := FitSlope(SampleSlice(nil))
	assert.False(t, ok, "nil window should give no estimate")
	assert.Zero(t, slope)

	slope, ok = FitSlope(SampleSlice{})
	assert.False(t, ok, "empty window should give no estimate")
	assert.Zero(t, slope)

	// Content of a lone sample does not matter.
	for _, p := range []PacketTiming{
		{},
		{ArrivalTimeMs: 1e9, SmoothedDelayMs: -1e9},
		{ArrivalTimeMs: math.MaxFloat64, SmoothedDelayMs: math.SmallestNonzeroFloat64},
	} {
		_, ok := FitSlope(SampleSlice{p})
		assert.False(t, ok, "single sample %+v should give no estimate", p)
	}
}

func TestFitSlope_ZeroArrivalVariance(t *testing.T) {
	for _, n := range []int{2, 3, 10, 100} {
		samples := make([]PacketTiming, n)
		for i := range samples {
			samples[i] = PacketTiming{ArrivalTimeMs: 42, SmoothedDelayMs: float64(i * i)}
		}
		slope, ok := FitSlopeSlice(samples)
		assert.False(t, ok, "n=%d identical arrivals should give no estimate", n)
		assert.False(t, math.IsNaN(slope) || math.IsInf(slope, 0), "no estimate must not leak NaN/Inf")
	}
}

func TestFitSlope_FlatIsDistinctFromNoEstimate(t *testing.T) {
	flat, flatOK := FitSlopeSlice(timings(1, 5, 2, 5, 3, 5))
	_, noneOK := FitSlopeSlice(timings(1, 5))

	require.True(t, flatOK)
	require.False(t, noneOK)
	assert.Equal(t, 0.0, flat)
}

func TestFitSlope_TwoSamples(t *testing.T) {
	slope, ok := FitSlopeSlice(timings(0, 0, 10, 5))
	require.True(t, ok)
	assert.Equal(t, 0.5, slope)
}

func TestFitSlope_RepeatedArrivalsStillFit(t *testing.T) {
	// Duplicate x values are allowed as long as not all of them match.
	slope, ok := FitSlopeSlice(timings(0, 0, 0, 2, 10, 10, 10, 12))
	require.True(t, ok)
	assert.Equal(t, 1.0, slope)
}

func TestFitSlope_IgnoresRawDelay(t *testing.T) {
	a := timings(1, 1, 2, 2, 3, 3)
	b := timings(1, 1, 2, 2, 3, 3)
	for i := range b {
		b[i].RawDelayMs = float64(1000 - i*500)
	}

	sa, _ := FitSlopeSlice(a)
	sb, _ := FitSlopeSlice(b)
	assert.Equal(t, sa, sb)
}

func TestFitSlope_DoesNotMutateInput(t *testing.T) {
	samples := timings(3, 1, 1, 7, 2, 4)
	orig := append([]PacketTiming(nil), samples...)

	FitSlopeSlice(samples)

	assert.Equal(t, orig, samples)
}

func TestFitSlope_Deterministic(t *testing.T) {
	samples := make([]PacketTiming, 200)
	for i := range samples {
		x := float64(i) * 16.7
		samples[i] = PacketTiming{ArrivalTimeMs: x, SmoothedDelayMs: math.Sin(x/100) * 3.3}
	}

	first, ok := FitSlopeSlice(samples)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		got, _ := FitSlopeSlice(samples)
		assert.Equal(t, math.Float64bits(first), math.Float64bits(got), "run %d not bit-identical", i)
	}
}

func TestFitSlope_MatchesTwoPassReference(t *testing.T) {
	// Spelled out with separate sums to pin the accumulation order.
	samples := make([]PacketTiming, 64)
	for i := range samples {
		samples[i] = PacketTiming{
			ArrivalTimeMs:   1000.1 + float64(i)*20.3,
			SmoothedDelayMs: 0.1 * float64(i%7) * float64(i),
		}
	}

	var sumX, sumY float64
	for _, p := range samples {
		sumX += p.ArrivalTimeMs
		sumY += p.SmoothedDelayMs
	}
	xAvg := sumX / float64(len(samples))
	yAvg := sumY / float64(len(samples))
	var num, den float64
	for _, p := range samples {
		num += float64((p.ArrivalTimeMs - xAvg) * (p.SmoothedDelayMs - yAvg))
		den += float64((p.ArrivalTimeMs - xAvg) * (p.ArrivalTimeMs - xAvg))
	}
	want := num / den

	got, ok := FitSlopeSlice(samples)
	require.True(t, ok)
	assert.Equal(t, math.Float64bits(want), math.Float64bits(got))
}

func TestFitSlope_ThroughWindowMatchesSlice(t *testing.T) {
	w := NewWindow(5)
	var all []PacketTiming
	for i := 0; i < 13; i++ {
		p := PacketTiming{ArrivalTimeMs: float64(i * 20), SmoothedDelayMs: float64(i*i) / 4}
		w.Push(p)
		all = append(all, p)
	}

	fromWindow, ok1 := FitSlope(w)
	fromSlice, ok2 := FitSlopeSlice(all[len(all)-5:])

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, math.Float64bits(fromSlice), math.Float64bits(fromWindow))
}
