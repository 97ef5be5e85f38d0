// Package statistic defines the observer contract for test lifecycle and
// per-operation outcomes, plus the built-in statistics collectors.
//
// Observers are registered on the executor while it is idle and notified in
// registration order: Prepare when a test is prepared, OnExecutedQuery or
// OnQueryError once per finished operation, and OnFinishedTest when the test
// stops.
package statistic

import (
	"time"

	"github.com/searchmeter/searchmeter/internal/solr"
)

// Observer receives test lifecycle and per-operation notifications.
// Implementations need not be safe for concurrent use; the executor
// serializes notifications.
type Observer interface {
	// Prepare resets the observer state before a test run starts.
	Prepare()

	// OnExecutedQuery is called once for every successful operation with the
	// parsed response and the client-side elapsed time.
	OnExecutedQuery(resp *solr.QueryResponse, clientTime time.Duration)

	// OnQueryError is called once for every failed operation.
	OnQueryError(err error)

	// OnFinishedTest is called when the test stops.
	OnFinishedTest()
}
