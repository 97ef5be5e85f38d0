package executor

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/searchmeter/searchmeter/internal/config"
	"github.com/searchmeter/searchmeter/internal/querysource"
	"github.com/searchmeter/searchmeter/internal/solr"
)

// Options configure an Executor.
type Options struct {
	// Source supplies random query content. Required unless NewOperation
	// is set.
	Source *querysource.Source

	// Invoker executes one operation against the target endpoint (required).
	Invoker solr.Invoker

	// QueriesPerMinute is the target admission rate. Must be positive by
	// Prepare time; it can be changed mid-run via SetOperationsPerMinute.
	QueriesPerMinute int

	// QueryType tags every spawned operation (qt parameter).
	QueryType string

	// ExtraParameters is the raw "key=value,key=value" string, re-parsed on
	// every Prepare.
	ExtraParameters string

	// FilterProbability is the chance in [0,1] that an operation includes a
	// random filter query.
	FilterProbability float64

	// UseFacets adds a random facet field to every operation.
	UseFacets bool

	ArrivalModel config.ArrivalModel
	RandomSeed   int64

	Logger *logrus.Entry

	// NewOperation overrides content sampling; when nil, operations are
	// sampled from Source using the settings above.
	NewOperation func() (solr.Query, error)
}

func (o *Options) normalize() {
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if o.FilterProbability < 0 {
		o.FilterProbability = 0
	}
	if o.FilterProbability > 1 {
		o.FilterProbability = 1
	}
}
