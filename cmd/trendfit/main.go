// trendfit streams delay samples from a CSV file through a sliding window and
// prints the fitted delay trend after every sample.
//
// Input rows are arrival_ms,smoothed_ms[,raw_ms]. Output rows are
// arrival_ms,slope with an empty slope when no estimate is available.
//
// Usage:
//
//	go run ./cmd/trendfit -in delays.csv -window 20
//	go run ./cmd/trendfit -window 60 -max-age 1000 < delays.csv
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/thesyncim/delaytrend/pkg/trend"
)

// Config holds the trendfit command-line options.
type Config struct {
	// Input is the CSV path. Empty or "-" reads stdin.
	Input string
	// WindowSize is the maximum number of samples in the regression window.
	WindowSize int
	// MaxAgeMs evicts samples older than the newest arrival minus MaxAgeMs.
	// Zero keeps samples until the window is full.
	MaxAgeMs float64
	// Header skips the first input row.
	Header bool
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout))
}

// realMain runs trendfit and returns the process exit code.
func realMain(args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, err := parseFlags(args)
	if err != nil {
		log.Printf("trendfit: %v", err)
		return 2
	}

	in := stdin
	if cfg.Input != "" && cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			log.Printf("trendfit: %v", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	if err := run(cfg, in, out); err != nil {
		log.Printf("trendfit: %v", err)
		return 1
	}
	if err := out.Flush(); err != nil {
		log.Printf("trendfit: %v", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("trendfit", flag.ContinueOnError)
	cfg := Config{}
	fs.StringVar(&cfg.Input, "in", "", "CSV input file (default stdin)")
	fs.IntVar(&cfg.WindowSize, "window", trend.DefaultWindowSize, "Regression window size in samples")
	fs.Float64Var(&cfg.MaxAgeMs, "max-age", 0, "Drop samples older than this many ms (0 disables)")
	fs.BoolVar(&cfg.Header, "header", false, "Skip the first input row")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.WindowSize < 2 {
		return Config{}, fmt.Errorf("window must be at least 2, got %d", cfg.WindowSize)
	}
	if cfg.MaxAgeMs < 0 {
		return Config{}, fmt.Errorf("max-age must be non-negative, got %v", cfg.MaxAgeMs)
	}
	return cfg, nil
}

// run reads samples from r, keeps them in a window per cfg and writes one
// output row per input row to w.
func run(cfg Config, r io.Reader, w io.Writer) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	cw := csv.NewWriter(w)
	// Rows fitted before an error are still written.
	defer cw.Flush()
	window := trend.NewWindow(cfg.WindowSize)

	skipHeader := cfg.Header
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		if skipHeader {
			skipHeader = false
			continue
		}

		line, _ := cr.FieldPos(0)
		sample, err := parseSample(record)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		window.Push(sample)
		if cfg.MaxAgeMs > 0 {
			window.DropBefore(sample.ArrivalTimeMs - cfg.MaxAgeMs)
		}

		slopeField := ""
		if slope, ok := trend.FitSlope(window); ok {
			slopeField = strconv.FormatFloat(slope, 'g', -1, 64)
		}
		if err := cw.Write([]string{record[0], slopeField}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func parseSample(record []string) (trend.PacketTiming, error) {
	if len(record) < 2 || len(record) > 3 {
		return trend.PacketTiming{}, fmt.Errorf("want 2 or 3 fields, got %d", len(record))
	}

	var vals [3]float64
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return trend.PacketTiming{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return trend.PacketTiming{}, fmt.Errorf("field %d: non-finite value %q", i+1, field)
		}
		vals[i] = v
	}

	return trend.PacketTiming{
		ArrivalTimeMs:   vals[0],
		SmoothedDelayMs: vals[1],
		RawDelayMs:      vals[2],
	}, nil
}
