package statistic

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/searchmeter/searchmeter/internal/solr"
)

func TestCollectorRecordsOutcomes(t *testing.T) {
	c := NewCollector()
	c.Prepare()

	c.OnExecutedQuery(&solr.QueryResponse{NumFound: 10, QTimeMillis: 4}, 20*time.Millisecond)
	c.OnExecutedQuery(&solr.QueryResponse{NumFound: 30, QTimeMillis: 8}, 40*time.Millisecond)
	c.OnQueryError(errors.New("boom"))

	stats := c.Stats(time.Second)
	if stats.Total != 3 || stats.Successes != 2 || stats.Failures != 1 {
		t.Fatalf("counts wrong: %+v", stats)
	}
	if stats.MinLatency != 20*time.Millisecond || stats.MaxLatency != 40*time.Millisecond {
		t.Fatalf("latency bounds wrong: min=%s max=%s", stats.MinLatency, stats.MaxLatency)
	}
	if stats.AvgFound != 20 {
		t.Fatalf("avg found wrong: %g", stats.AvgFound)
	}
	if stats.QueriesPerSec != 3 {
		t.Fatalf("qps wrong: %g", stats.QueriesPerSec)
	}
	if stats.P99QTimeMs < 7 {
		t.Fatalf("qtime percentile wrong: %g", stats.P99QTimeMs)
	}
	if stats.ErrorRate() < 0.3 || stats.ErrorRate() > 0.34 {
		t.Fatalf("error rate wrong: %g", stats.ErrorRate())
	}
}

func TestCollectorErrorBreakdownUsesFriendlyNames(t *testing.T) {
	c := NewCollector()
	c.OnQueryError(&solr.HTTPError{StatusCode: 500, Body: "oops"})
	c.OnQueryError(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")})
	c.OnQueryError(context.DeadlineExceeded)

	stats := c.Stats(time.Second)
	if stats.Errors["HTTP error response"] != 1 {
		t.Fatalf("http error bucket missing: %v", stats.Errors)
	}
	if stats.Errors["Request URL error"] != 1 {
		t.Fatalf("url error bucket missing: %v", stats.Errors)
	}
}

func TestCollectorPrepareResets(t *testing.T) {
	c := NewCollector()
	c.OnExecutedQuery(&solr.QueryResponse{NumFound: 1}, 10*time.Millisecond)
	c.OnQueryError(errors.New("boom"))

	c.Prepare()

	stats := c.Stats(time.Second)
	if stats.Total != 0 || len(stats.Errors) != 0 {
		t.Fatalf("collector not reset: %+v", stats)
	}
}

func TestCollectorEmptyStats(t *testing.T) {
	c := NewCollector()
	stats := c.Stats(0)
	if stats.Total != 0 || stats.QueriesPerSec != 0 || stats.MeanLatency != 0 {
		t.Fatalf("zero-state stats wrong: %+v", stats)
	}
}
