// Soak test runner for long-duration testing of the slope estimator.
//
// This tool feeds a synthetic delay signal into a sliding window at packet
// rate and refits the trend after every packet, watching for NaN/Inf slopes,
// missing estimates, heap growth and allocations on the hot path over
// extended periods (hours or more).
//
// Usage:
//
//	go run ./cmd/soak -duration 24h
//	go run ./cmd/soak -duration 1h -window 60 -interval 5ms
//
// Exposes pprof endpoint at :6060 for live profiling:
//
//	curl http://localhost:6060/debug/pprof/heap > heap.pprof
//	go tool pprof heap.pprof
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	_ "net/http/pprof" // Enable pprof endpoints
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/thesyncim/delaytrend/pkg/trend"
	"github.com/thesyncim/delaytrend/pkg/trend/clock"
)

const (
	statusInterval = 5 * time.Minute
	heapLimitMB    = 100
	// sawtoothPeriod is how many packets the synthetic queue builds for
	// before draining, so the slope keeps flipping sign.
	sawtoothPeriod = 250
	// hotPathSteps is the number of steps measured for allocations.
	hotPathSteps = 10000
)

// SoakConfig holds the soak runner's options.
type SoakConfig struct {
	Duration       time.Duration
	PacketInterval time.Duration
	WindowSize     int
	// Clock timestamps arrivals. Nil uses the system clock.
	Clock clock.Clock
}

// SoakResult contains the results of a soak test run.
type SoakResult struct {
	Duration         time.Duration
	TotalPackets     int
	Estimates        int
	Rising           int
	Falling          int
	MissingEstimates int
	InvalidSlopes    int
	PeakHeapMB       float64
	TotalGCCycles    uint32
	HotPathAllocs    uint64
	SuspiciousEvents int
	Status           string
}

func main() {
	duration := flag.Duration("duration", 24*time.Hour, "Test duration (e.g., 1h, 24h)")
	pprofPort := flag.Int("pprof-port", 6060, "Port for pprof HTTP server")
	window := flag.Int("window", trend.DefaultWindowSize, "Regression window size in samples")
	interval := flag.Duration("interval", 20*time.Millisecond, "Interval between synthetic packets")
	flag.Parse()

	cfg := SoakConfig{
		Duration:       *duration,
		PacketInterval: *interval,
		WindowSize:     *window,
	}

	fmt.Printf("Delay Trend Soak Test Runner\n")
	fmt.Printf("============================\n")
	fmt.Printf("Duration: %v\n", cfg.Duration)
	fmt.Printf("Window:   %d samples every %v\n", cfg.WindowSize, cfg.PacketInterval)
	fmt.Printf("Pprof:    http://localhost:%d/debug/pprof/\n", *pprofPort)
	fmt.Printf("\n")

	go func() {
		addr := fmt.Sprintf(":%d", *pprofPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			fmt.Printf("Warning: pprof server failed: %v\n", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived %v, shutting down gracefully...\n", sig)
		cancel()
	}()

	result := runSoakTest(ctx, cfg)

	printSummary(result)

	if result.Status == "PASS" {
		os.Exit(0)
	}
	os.Exit(1)
}

// sawtooth returns the synthetic smoothed delay for packet n: a queue that
// grows for sawtoothPeriod packets and then drains at the same rate.
func sawtooth(n int) float64 {
	phase := n % (2 * sawtoothPeriod)
	if phase < sawtoothPeriod {
		return float64(phase) * 0.2
	}
	return float64(2*sawtoothPeriod-phase) * 0.2
}

// step pushes one sample and refits, updating result. It is the per-packet
// hot path and must not allocate.
func step(w *trend.Window, arrivalMs float64, n int, result *SoakResult) {
	delay := sawtooth(n)
	w.Push(trend.PacketTiming{
		ArrivalTimeMs:   arrivalMs,
		SmoothedDelayMs: delay,
		RawDelayMs:      delay,
	})
	result.TotalPackets++

	slope, ok := trend.FitSlope(w)
	if !ok {
		// Arrivals are strictly increasing, so only the first packet may
		// lack an estimate.
		if w.Len() >= 2 {
			result.MissingEstimates++
			result.SuspiciousEvents++
			result.Status = "FAIL"
		}
		return
	}
	result.Estimates++

	switch {
	case math.IsNaN(slope) || math.IsInf(slope, 0):
		result.InvalidSlopes++
		result.SuspiciousEvents++
		result.Status = "FAIL"
	case slope > 0:
		result.Rising++
	case slope < 0:
		result.Falling++
	}
}

func runSoakTest(ctx context.Context, cfg SoakConfig) SoakResult {
	w := trend.NewWindow(cfg.WindowSize)

	result := SoakResult{
		Status: "PASS",
	}

	var memStats runtime.MemStats

	axis := clock.NewAxis(cfg.Clock)
	lastStatusTime := axis.Origin()

	ticker := time.NewTicker(cfg.PacketInterval)
	defer ticker.Stop()

	fmt.Printf("[%s] Starting soak test...\n", formatDuration(0))

	for {
		select {
		case <-ctx.Done():
			result.Duration = axis.Elapsed()
			result.HotPathAllocs = measureHotPathAllocs(w)
			checkAllocs(&result)
			return result

		case <-ticker.C:
			now, arrivalMs := axis.Now()
			elapsed := now.Sub(axis.Origin())

			if elapsed >= cfg.Duration {
				result.Duration = elapsed
				result.HotPathAllocs = measureHotPathAllocs(w)
				checkAllocs(&result)
				return result
			}

			missingBefore, invalidBefore := result.MissingEstimates, result.InvalidSlopes
			step(w, arrivalMs, result.TotalPackets, &result)
			if result.MissingEstimates > missingBefore {
				fmt.Printf("[%s] WARNING: no estimate with %d samples in window\n", formatDuration(elapsed), w.Len())
			}
			if result.InvalidSlopes > invalidBefore {
				fmt.Printf("[%s] ERROR: NaN/Inf slope detected!\n", formatDuration(elapsed))
			}

			if now.Sub(lastStatusTime) >= statusInterval {
				lastStatusTime = now
				runtime.ReadMemStats(&memStats)

				heapMB := float64(memStats.HeapAlloc) / (1024 * 1024)
				if heapMB > result.PeakHeapMB {
					result.PeakHeapMB = heapMB
				}
				result.TotalGCCycles = memStats.NumGC

				fmt.Printf("[%s] Packets: %d, Rising: %d, Falling: %d, HeapAlloc: %.2f MB, NumGC: %d\n",
					formatDuration(elapsed),
					result.TotalPackets,
					result.Rising,
					result.Falling,
					heapMB,
					memStats.NumGC)

				if heapMB > heapLimitMB {
					fmt.Printf("[%s] ERROR: Memory limit exceeded: %.2f MB\n", formatDuration(elapsed), heapMB)
					result.Status = "FAIL"
				}
			}
		}
	}
}

// measureHotPathAllocs counts heap allocations over a burst of steps on a
// scratch copy of the window.
func measureHotPathAllocs(w *trend.Window) uint64 {
	scratch := trend.NewWindow(w.Cap())
	for i := 0; i < w.Len(); i++ {
		scratch.Push(w.At(i))
	}
	var discard SoakResult
	x := 0.0
	if newest, ok := scratch.Newest(); ok {
		x = newest.ArrivalTimeMs
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	for i := 0; i < hotPathSteps; i++ {
		x += 20
		step(scratch, x, i, &discard)
	}
	runtime.ReadMemStats(&after)
	return after.Mallocs - before.Mallocs
}

func checkAllocs(result *SoakResult) {
	// A handful of runtime allocations can land inside the measured burst;
	// one per step or more means the hot path allocates.
	if result.HotPathAllocs >= hotPathSteps {
		result.Status = "FAIL"
	}
}

func printSummary(result SoakResult) {
	fmt.Printf("\n")
	fmt.Printf("Soak Test Complete\n")
	fmt.Printf("==================\n")
	fmt.Printf("Duration:          %v\n", result.Duration.Round(time.Second))
	fmt.Printf("Total packets:     %d\n", result.TotalPackets)
	fmt.Printf("Estimates:         %d (rising %d, falling %d)\n", result.Estimates, result.Rising, result.Falling)
	fmt.Printf("Missing estimates: %d\n", result.MissingEstimates)
	fmt.Printf("Peak HeapAlloc:    %.2f MB\n", result.PeakHeapMB)
	fmt.Printf("Total GC cycles:   %d\n", result.TotalGCCycles)
	fmt.Printf("Hot path mallocs:  %d\n", result.HotPathAllocs)
	fmt.Printf("Suspicious events: %d\n", result.SuspiciousEvents)
	fmt.Printf("Status:            %s\n", result.Status)
	fmt.Printf("\n")

	fmt.Printf("Pass Criteria:\n")
	fmt.Printf("  - No panics:            %s\n", checkMark(true))
	fmt.Printf("  - No NaN/Inf slopes:    %s\n", checkMark(result.InvalidSlopes == 0))
	fmt.Printf("  - Peak memory < 100 MB: %s\n", checkMark(result.PeakHeapMB < heapLimitMB))
	fmt.Printf("  - Hot path allocation:  %s\n", checkMark(result.HotPathAllocs < hotPathSteps))
	fmt.Printf("  - No missing estimates: %s\n", checkMark(result.MissingEstimates == 0))
}

func formatDuration(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
