package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "searchmeter",
		Short:         "Fire randomized queries at a search endpoint at a controlled rate",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target and query content flags
	flags.StringP("url", "u", "", "Search select-handler URL to load test")
	flags.String("query-type", "standard", "Query type (qt parameter) for all queries")
	flags.String("extra-params", "", "Extra request parameters in key=value,key=value form")
	flags.Float64("filter-probability", 0, "Probability in [0,1] of adding a filter query to an operation")
	flags.Bool("facets", false, "Add a random facet field to every operation")

	// Pool flags
	flags.String("queries-file", "", "Path to text file with one query per line")
	flags.String("filter-queries-file", "", "Path to text file with one filter query per line")
	flags.String("facet-fields-file", "", "Path to text file with one facet field per line")
	flags.String("pools", "", "Path to YAML file defining all three pools at once")

	// Load control flags
	flags.IntP("qpm", "q", 60, "Target queries per minute")
	flags.DurationP("duration", "d", 0, "How long to run the test (e.g. 30s, 1m); 0 runs until interrupted")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Int("retries", 0, "Number of retries per query")
	flags.String("arrival-model", string(ArrivalModelUniform), "Arrival model to use when pacing queries (uniform or poisson)")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("log-errors", false, "Log each failed query")
	flags.String("history-file", "", "Append a run summary line to this file after the test")
	flags.StringSlice("threshold", nil, "Pass/fail assertion, e.g. 'p99<200' or 'error_rate<0.01' (repeatable)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for per-query spans (empty disables tracing)")
	flags.String("trace-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into queries")
}

func displayHelp(cmd *cobra.Command) {
	_ = cmd.Help()
}
