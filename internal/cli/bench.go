package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/entropy"
)

type benchResult struct {
	Name       string  `json:"name"`
	Iterations int     `json:"iterations"`
	ElapsedMS  float64 `json:"elapsed_ms"`
	NsPerOp    float64 `json:"ns_per_op"`
}

func newBenchCommand(a *app) *cobra.Command {
	var (
		iterations int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time each entropy source and a full Powerball draw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if iterations < 1 {
				return fmt.Errorf("--iterations must be positive, got %d", iterations)
			}
			results, err := runBench(cmd.Context(), iterations)
			if err != nil {
				return err
			}
			a.logger.Debug("bench finished", "iterations", iterations)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, results)
			}
			t := newTable(out, "Benchmark", "Iterations", "Elapsed (ms)", "ns/op")
			for _, r := range results {
				t.Append([]string{
					r.Name,
					strconv.Itoa(r.Iterations),
					strconv.FormatFloat(r.ElapsedMS, 'f', 3, 64),
					strconv.FormatFloat(r.NsPerOp, 'f', 1, 64),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 100000, "Words per source; draws for the lottery run are a hundredth of this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func runBench(ctx context.Context, iterations int) ([]benchResult, error) {
	var results []benchResult
	for _, kind := range entropy.PrimaryKinds {
		src, err := entropy.NewSource(kind, rand.Reader, nil)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		for range iterations {
			if _, err := src.Uint32(); err != nil {
				return nil, fmt.Errorf("%s: %w", kind, err)
			}
		}
		results = append(results, newBenchResult(string(kind), iterations, time.Since(start)))
	}

	draws := max(1, iterations/100)
	src, err := entropy.NewSource(entropy.KindHybrid, rand.Reader, nil)
	if err != nil {
		return nil, err
	}
	quiet := slog.New(slog.DiscardHandler)
	eng := engine.New(entropy.NewCollector(src, entropy.WithLogger(quiet)),
		engine.WithLogger(quiet), engine.WithHistorySize(0))
	req := engine.PowerballRequest()

	start := time.Now()
	for range draws {
		if _, err := eng.Generate(ctx, req); err != nil {
			return nil, fmt.Errorf("lottery: %w", err)
		}
	}
	results = append(results, newBenchResult("lottery", draws, time.Since(start)))
	return results, nil
}

func newBenchResult(name string, n int, took time.Duration) benchResult {
	return benchResult{
		Name:       name,
		Iterations: n,
		ElapsedMS:  float64(took.Microseconds()) / 1000,
		NsPerOp:    float64(took.Nanoseconds()) / float64(n),
	}
}
