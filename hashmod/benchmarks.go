// =======================
// hashmod/benchmarks.go
// =======================

package hashmod

import (
	"fmt"
	"io"
	"time"
)

// BenchmarkInfo holds performance metrics for one strategy.
type BenchmarkInfo struct {
	Title       string        `json:"title"`
	Inputs      int           `json:"inputs"`
	ComputeTime time.Duration `json:"compute_time"`
	Throughput  float64       `json:"hashes_per_second"`
	Buckets     uint64        `json:"buckets"`
	Used        uint64        `json:"buckets_used"`
	MaxLoad     uint64        `json:"max_load"`
}

// BenchmarkStrategies hashes every input with every strategy, iterations
// times, and reports throughput together with how well the inputs spread
// over the table.
func BenchmarkStrategies(strategies []Strategy, inputs []Components, iterations int) ([]BenchmarkInfo, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive: %w", ErrInvalidArgument)
	}
	results := make([]BenchmarkInfo, 0, len(strategies))

	for _, s := range strategies {
		counts := make(map[uint64]uint64)

		start := time.Now()
		for i := 0; i < iterations; i++ {
			for j, c := range inputs {
				h, err := s.HashForComponents(c)
				if err != nil {
					return nil, fmt.Errorf("%s failed at input %d: %w", s.Title(), j, err)
				}
				b := s.BucketIndexForHash(h)
				if i == 0 {
					counts[b]++
				}
			}
		}
		duration := time.Since(start)

		var maxLoad uint64
		for _, n := range counts {
			if n > maxLoad {
				maxLoad = n
			}
		}

		total := len(inputs) * iterations
		var throughput float64
		if seconds := duration.Seconds(); seconds > 0 {
			throughput = float64(total) / seconds
		}

		var perHash time.Duration
		if total > 0 {
			perHash = duration / time.Duration(total)
		}

		results = append(results, BenchmarkInfo{
			Title:       s.Title(),
			Inputs:      len(inputs),
			ComputeTime: perHash,
			Throughput:  throughput,
			Buckets:     s.TableLength(),
			Used:        uint64(len(counts)),
			MaxLoad:     maxLoad,
		})
	}

	return results, nil
}

// PrintBenchmarkResults writes results as a formatted table.
func PrintBenchmarkResults(w io.Writer, results []BenchmarkInfo) {
	fmt.Fprintln(w, "Hash Strategy Benchmark Results")
	fmt.Fprintln(w, "===============================")
	fmt.Fprintf(w, "%-28s | %-12s | %-14s | %-14s | %-8s\n",
		"Strategy", "Time/Hash", "Hashes/s", "Buckets Used", "Max Load")
	fmt.Fprintln(w, "-----------------------------|--------------|----------------|----------------|---------")

	for _, r := range results {
		fmt.Fprintf(w, "%-28s | %-12s | %-14.0f | %-14s | %-8d\n",
			r.Title,
			r.ComputeTime.String(),
			r.Throughput,
			fmt.Sprintf("%d/%d", r.Used, r.Buckets),
			r.MaxLoad)
	}
}
