// Package testutil provides synthetic sample windows for testing the trend
// package under various network conditions.
//
// All generators take a Manual clock so traces are deterministic. Arrival
// times are measured on an axis starting at the clock's reading when the
// generator is called. The clock ends one interval past the last packet.
package testutil

import (
	"math/rand"
	"time"

	"github.com/thesyncim/delaytrend/pkg/trend"
	"github.com/thesyncim/delaytrend/pkg/trend/clock"
)

// StableTrace generates samples with a constant smoothed delay of baseMs.
// The queue neither builds nor drains, so the fitted slope is 0.
func StableTrace(c *clock.Manual, count, intervalMs int, baseMs float64) []trend.PacketTiming {
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, count)
	for i := range samples {
		samples[i] = trend.PacketTiming{
			ArrivalTimeMs:   axis.NowMs(),
			SmoothedDelayMs: baseMs,
			RawDelayMs:      baseMs,
		}
		c.Advance(time.Duration(intervalMs) * time.Millisecond)
	}
	return samples
}

// CongestingTrace generates samples where delay grows by delayIncreaseMs per
// packet, simulating a queue building up.
func CongestingTrace(c *clock.Manual, count, intervalMs int, delayIncreaseMs float64) []trend.PacketTiming {
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, count)
	delay := 0.0
	for i := range samples {
		samples[i] = trend.PacketTiming{
			ArrivalTimeMs:   axis.NowMs(),
			SmoothedDelayMs: delay,
			RawDelayMs:      delay,
		}
		delay += delayIncreaseMs
		c.Advance(time.Duration(intervalMs) * time.Millisecond)
	}
	return samples
}

// DrainingTrace generates samples where delay starts at startMs and shrinks by
// delayDecreaseMs per packet, never going below zero.
func DrainingTrace(c *clock.Manual, count, intervalMs int, startMs, delayDecreaseMs float64) []trend.PacketTiming {
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, count)
	delay := startMs
	for i := range samples {
		samples[i] = trend.PacketTiming{
			ArrivalTimeMs:   axis.NowMs(),
			SmoothedDelayMs: delay,
			RawDelayMs:      delay,
		}
		delay -= delayDecreaseMs
		if delay < 0 {
			delay = 0
		}
		c.Advance(time.Duration(intervalMs) * time.Millisecond)
	}
	return samples
}

// LinearTrace generates samples lying exactly on delay = m*arrival + b.
func LinearTrace(c *clock.Manual, count, intervalMs int, m, b float64) []trend.PacketTiming {
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, count)
	for i := range samples {
		x := axis.NowMs()
		samples[i] = trend.PacketTiming{
			ArrivalTimeMs:   x,
			SmoothedDelayMs: m*x + b,
			RawDelayMs:      m*x + b,
		}
		c.Advance(time.Duration(intervalMs) * time.Millisecond)
	}
	return samples
}

// BurstTrace generates bursts of packets sharing one arrival time, as seen
// when a receiver timestamps a whole batch at once. Delay grows by
// delayIncreaseMs per burst.
func BurstTrace(c *clock.Manual, burstCount, packetsPerBurst, interBurstMs int, delayIncreaseMs float64) []trend.PacketTiming {
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, 0, burstCount*packetsPerBurst)
	delay := 0.0
	for b := 0; b < burstCount; b++ {
		x := axis.NowMs()
		for p := 0; p < packetsPerBurst; p++ {
			samples = append(samples, trend.PacketTiming{
				ArrivalTimeMs:   x,
				SmoothedDelayMs: delay,
				RawDelayMs:      delay,
			})
		}
		delay += delayIncreaseMs
		c.Advance(time.Duration(interBurstMs) * time.Millisecond)
	}
	return samples
}

// NoisyTrace generates samples around an underlying slope of m delay-ms per
// arrival-ms with uniform noise in [-noiseMs, noiseMs]. The raw delay carries
// the noise and the smoothed delay is an exponential average of it with
// coefficient 0.9. The same seed always yields the same trace.
func NoisyTrace(c *clock.Manual, count, intervalMs int, m, noiseMs float64, seed int64) []trend.PacketTiming {
	rng := rand.New(rand.NewSource(seed))
	axis := clock.NewAxis(c)
	samples := make([]trend.PacketTiming, count)
	smoothed := 0.0
	for i := range samples {
		x := axis.NowMs()
		raw := m*x + (rng.Float64()*2-1)*noiseMs
		if i == 0 {
			smoothed = raw
		} else {
			smoothed = 0.9*smoothed + 0.1*raw
		}
		samples[i] = trend.PacketTiming{
			ArrivalTimeMs:   x,
			SmoothedDelayMs: smoothed,
			RawDelayMs:      raw,
		}
		c.Advance(time.Duration(intervalMs) * time.Millisecond)
	}
	return samples
}

// Shuffle returns a permuted copy of samples. The input is left untouched.
func Shuffle(samples []trend.PacketTiming, seed int64) []trend.PacketTiming {
	out := make([]trend.PacketTiming, len(samples))
	copy(out, samples)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
