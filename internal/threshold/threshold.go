// Package threshold evaluates pass/fail assertions against final run
// statistics, so a CI invocation can gate on latency or error rate.
package threshold

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/searchmeter/searchmeter/internal/statistic"
)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  // e.g. "query_duration", "query_failed"
	Aggregate string  // e.g. "p99", "avg", "rate"
	Operator  string  // e.g. "<", "<=", ">", ">=", "=="
	Value     float64 // the value to compare against
	Raw       string  // original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against collected statistics.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks all thresholds against the provided stats.
func (e *Evaluator) Evaluate(stats statistic.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, stats))
	}
	return results
}

func evaluateOne(t Threshold, stats statistic.Stats) Result {
	actual, err := extractMetricValue(t, stats)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
//   - "query_duration:p99 < 500"  (client latency percentile in ms)
//   - "query_duration:avg < 200"  (average client latency in ms)
//   - "query_qtime:p99 < 100"     (server QTime percentile in ms)
//   - "query_failed:rate < 0.01"  (failure rate as decimal)
//   - "query_failed:count < 10"   (failure count)
//   - "queries:rate > 10"         (queries per second achieved)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected metric:aggregate operator value, e.g. 'query_duration:p99 < 500')", s)
	}

	metric, aggregate, operator, valueStr := matches[1], matches[2], matches[3], matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: query_duration, query_qtime, query_failed, queries)", metric)
	}
	if !isValidAggregate(aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: p50, p90, p99, avg, min, max, rate, count)", aggregate)
	}
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings, aggregating errors.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var issues []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			issues = append(issues, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(issues) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(issues, "; "))
	}
	return result, nil
}

func isValidMetric(metric string) bool {
	switch metric {
	case "query_duration", "query_qtime", "query_failed", "queries":
		return true
	}
	return false
}

func isValidAggregate(aggregate string) bool {
	switch aggregate {
	case "p50", "p90", "p99", "avg", "min", "max", "rate", "count":
		return true
	}
	return false
}

func isValidOperator(operator string) bool {
	switch operator {
	case "<", "<=", ">", ">=", "==":
		return true
	}
	return false
}

func extractMetricValue(t Threshold, stats statistic.Stats) (float64, error) {
	switch t.Metric {
	case "query_duration":
		switch t.Aggregate {
		case "p50":
			return stats.P50LatencyMs, nil
		case "p90":
			return stats.P90LatencyMs, nil
		case "p99":
			return stats.P99LatencyMs, nil
		case "avg":
			return stats.MeanLatencyMs, nil
		case "min":
			return stats.MinLatencyMs, nil
		case "max":
			return stats.MaxLatencyMs, nil
		}
	case "query_qtime":
		switch t.Aggregate {
		case "p50":
			return stats.P50QTimeMs, nil
		case "p99":
			return stats.P99QTimeMs, nil
		}
	case "query_failed":
		switch t.Aggregate {
		case "rate":
			return stats.ErrorRate(), nil
		case "count":
			return float64(stats.Failures), nil
		}
	case "queries":
		switch t.Aggregate {
		case "rate":
			return stats.QueriesPerSec, nil
		case "count":
			return float64(stats.Total), nil
		}
	}
	return 0, fmt.Errorf("aggregate %q not supported for metric %q", t.Aggregate, t.Metric)
}

func compareValues(actual float64, operator string, expected float64) bool {
	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected
	case "==":
		return actual == expected
	}
	return false
}
