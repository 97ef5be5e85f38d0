package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/searchmeter/searchmeter/internal/statistic"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats statistic.Stats) {
	fmt.Fprintln(w, "\n--- Query Test Results ---")
	fmt.Fprintf(w, "Total Queries:     %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Queries/sec:       %.2f\n", stats.QueriesPerSec)
	if stats.AvgFound > 0 {
		fmt.Fprintf(w, "Avg Results Found: %.1f\n", stats.AvgFound)
	}
	fmt.Fprintln(w, "\nClient Latency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)
	if stats.P50QTimeMs > 0 || stats.P99QTimeMs > 0 {
		fmt.Fprintln(w, "\nServer QTime:")
		fmt.Fprintf(w, "  P50:             %.0fms\n", stats.P50QTimeMs)
		fmt.Fprintf(w, "  P99:             %.0fms\n", stats.P99QTimeMs)
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Errors[names[i]] == stats.Errors[names[j]] {
				return names[i] < names[j]
			}
			return stats.Errors[names[i]] > stats.Errors[names[j]]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.Errors[name])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, stats statistic.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
