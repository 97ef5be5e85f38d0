// Package config provides configuration loading and parsing for searchmeter.
package config

import (
	"fmt"
	"strings"
	"time"
)

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Config holds everything a test run needs. Values come from an optional
// YAML/JSON config file with flag overrides on top.
type Config struct {
	SearchURL        string        `mapstructure:"search_url"`
	QueryType        string        `mapstructure:"query_type"`
	QueriesPerMinute int           `mapstructure:"queries_per_minute"`
	Duration         time.Duration `mapstructure:"duration"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Retries          int           `mapstructure:"retries"`

	// ExtraParameters is the raw "key=value,key=value" string appended to
	// every query.
	ExtraParameters string `mapstructure:"extra_parameters"`

	// FilterProbability is the chance in [0,1] that an operation carries a
	// filter query.
	FilterProbability float64 `mapstructure:"filter_probability"`

	// UseFacets adds a random facet field to every operation.
	UseFacets bool `mapstructure:"use_facets"`

	QueriesFile       string `mapstructure:"queries_file"`
	FilterQueriesFile string `mapstructure:"filter_queries_file"`
	FacetFieldsFile   string `mapstructure:"facet_fields_file"`
	PoolsFile         string `mapstructure:"pools_file"`

	Arrival ArrivalConfig `mapstructure:"arrival"`

	JSONOutput  bool     `mapstructure:"json_output"`
	LogErrors   bool     `mapstructure:"log_errors"`
	HistoryFile string   `mapstructure:"history_file"`
	Thresholds  []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether tracing should be initialized at all.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.SearchURL) == "" {
		issues = append(issues, "search_url is required")
	}
	if c.QueriesPerMinute <= 0 {
		issues = append(issues, "queries_per_minute must be positive")
	}
	if c.FilterProbability < 0 || c.FilterProbability > 1 {
		issues = append(issues, "filter_probability must be between 0 and 1")
	}
	if c.QueriesFile == "" && c.PoolsFile == "" {
		issues = append(issues, "one of queries_file or pools_file is required")
	}
	if c.QueriesFile != "" && c.PoolsFile != "" {
		issues = append(issues, "queries_file and pools_file are mutually exclusive")
	}
	if c.Retries < 0 {
		issues = append(issues, "retries cannot be negative")
	}
	switch c.Arrival.Model {
	case "", ArrivalModelUniform, ArrivalModelPoisson:
	default:
		issues = append(issues, fmt.Sprintf("unknown arrival model %q", c.Arrival.Model))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
