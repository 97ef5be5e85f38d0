package statistic

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/searchmeter/searchmeter/internal/solr"
)

// Collector records per-operation metrics in a thread-safe manner.
// It implements Observer.
type Collector struct {
	mu           sync.Mutex
	clientHist   *hdrhistogram.Histogram
	qtimeHist    *hdrhistogram.Histogram
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	totalFound   int64
	errorsByType map[string]int64
	start        time.Time
}

// Stats represents aggregated metrics for one test run.
type Stats struct {
	Total        int64         `json:"total"`
	Successes    int64         `json:"successes"`
	Failures     int64         `json:"failures"`
	MinLatency   time.Duration `json:"-"`
	MaxLatency   time.Duration `json:"-"`
	MeanLatency  time.Duration `json:"-"`
	P50Latency   time.Duration `json:"-"`
	P90Latency   time.Duration `json:"-"`
	P99Latency   time.Duration `json:"-"`
	Duration     time.Duration `json:"-"`
	QueriesPerSec float64      `json:"queries_per_sec"`
	AvgFound     float64       `json:"avg_found"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64        `json:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms"`
	P50LatencyMs  float64        `json:"p50_latency_ms"`
	P90LatencyMs  float64        `json:"p90_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms"`
	P50QTimeMs    float64        `json:"p50_qtime_ms"`
	P99QTimeMs    float64        `json:"p99_qtime_ms"`
	DurationMs    float64        `json:"duration_ms"`
	Errors        map[string]int `json:"errors,omitempty"`
}

// ErrorRate returns the fraction of failed operations, in [0, 1].
func (s Stats) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Total)
}

func NewCollector() *Collector {
	c := &Collector{}
	c.reset()
	return c
}

func (c *Collector) reset() {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	c.clientHist = hdrhistogram.New(1, 60_000_000, 3)
	// Server QTime is reported in whole milliseconds.
	c.qtimeHist = hdrhistogram.New(1, 60_000, 3)
	c.successes = 0
	c.failures = 0
	c.minLatency = 0
	c.maxLatency = 0
	c.sumLatency = 0
	c.totalFound = 0
	c.errorsByType = make(map[string]int64)
	c.start = time.Now()
}

// Prepare resets all recorded state for a new test run.
func (c *Collector) Prepare() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Start marks the beginning of the measured interval.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// OnExecutedQuery records one successful operation.
func (c *Collector) OnExecutedQuery(resp *solr.QueryResponse, clientTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successes++
	c.recordLatency(clientTime)
	if resp != nil {
		c.totalFound += resp.NumFound
		if resp.QTimeMillis > 0 {
			ms := resp.QTimeMillis
			if ms > c.qtimeHist.HighestTrackableValue() {
				ms = c.qtimeHist.HighestTrackableValue()
			}
			_ = c.qtimeHist.RecordValue(ms)
		}
	}
}

// OnQueryError records one failed operation, bucketed by error type.
func (c *Collector) OnQueryError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	errorType := fmt.Sprintf("%T", err)
	if len(errorType) > 30 {
		errorType = errorType[len(errorType)-30:]
	}
	c.errorsByType[errorType]++
}

// OnFinishedTest is a no-op; final stats are read via Stats.
func (c *Collector) OnFinishedTest() {}

func (c *Collector) recordLatency(latency time.Duration) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < c.clientHist.LowestTrackableValue() {
			us = c.clientHist.LowestTrackableValue()
		}
		if us > c.clientHist.HighestTrackableValue() {
			us = c.clientHist.HighestTrackableValue()
		}
		_ = c.clientHist.RecordValue(us)
	}
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
}

// Elapsed returns the time since the measured interval started.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}
	if c.successes > 0 {
		stats.AvgFound = float64(c.totalFound) / float64(c.successes)
	}

	if c.clientHist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.clientHist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.clientHist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.clientHist.ValueAtQuantile(99)) * time.Microsecond
	}
	if c.qtimeHist.TotalCount() > 0 {
		stats.P50QTimeMs = float64(c.qtimeHist.ValueAtQuantile(50))
		stats.P99QTimeMs = float64(c.qtimeHist.ValueAtQuantile(99))
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.QueriesPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[FriendlyErrorName(k)] += int(v)
		}
	}

	return stats
}
