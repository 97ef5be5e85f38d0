// Package executor provides the core scheduling engine for searchmeter.
//
// An [Executor] owns one test cycle at a time and moves through the states
// Idle, Preparing, Running and Stopping:
//
//	ex := executor.New(executor.Options{
//		Source:           source,
//		Invoker:          client,
//		QueriesPerMinute: 120,
//	})
//	ex.AddObserver(collector)
//	if err := ex.Prepare(); err != nil { ... }
//	if err := ex.Start(); err != nil { ... }
//	...
//	ex.Stop()
//
// # Admission
//
// The target rate is an admission rate: the executor spawns one worker
// goroutine per computed deadline and never waits for the previous worker to
// finish, so in-flight operations overlap when the endpoint is slow. Pacing
// is handled by a token-bucket limiter (or an exponential sampler for the
// poisson arrival model) keyed to a monotonic clock, so the rate does not
// decay under load. SetOperationsPerMinute applies to the next deadline
// without a restart.
//
// # Outcomes
//
// Each worker reports exactly one outcome. Successes reach every observer's
// OnExecutedQuery hook, failures OnQueryError, in registration order; a
// panicking observer is isolated and logged. Outcomes are delivered in
// completion order, not admission order. After Stop, late outcomes from
// cancelled workers are discarded.
//
// A worker's network failure is data, not a crash: it never stops the
// admission loop. Only lifecycle misuse (Prepare while running, Start
// without Prepare) is returned as an error to the controller.
package executor
