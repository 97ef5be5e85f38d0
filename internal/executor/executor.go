package executor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/searchmeter/searchmeter/internal/config"
	"github.com/searchmeter/searchmeter/internal/querysource"
	"github.com/searchmeter/searchmeter/internal/solr"
	"github.com/searchmeter/searchmeter/internal/statistic"
)

// State is the executor lifecycle state. It is owned exclusively by the
// Executor; controllers observe it through State().
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrAlreadyRunning is returned by Prepare when a test cycle is already
	// in progress.
	ErrAlreadyRunning = errors.New("executor: test already prepared or running")

	// ErrNotPrepared is returned by Start without a preceding Prepare.
	ErrNotPrepared = errors.New("executor: start requires prepare")

	// ErrNotIdle is returned by AddObserver outside the idle state.
	ErrNotIdle = errors.New("executor: observers can only be added while idle")

	// ErrInvalidRate is returned by Prepare when the configured rate is not
	// positive.
	ErrInvalidRate = errors.New("executor: queries per minute must be positive")
)

// Executor turns a queries-per-minute target into a stream of concurrently
// executing worker goroutines, one per operation, and fans each outcome out
// to the registered observers.
//
// Admission and execution are decoupled: the admission loop never waits for
// a worker to finish, so in-flight operations overlap and the measured rate
// is one of admission, not completion.
type Executor struct {
	opt Options

	// mu guards state, observers, extra parameters, the run generation and
	// observer fan-out. Workers only take it when delivering an outcome.
	mu         sync.Mutex
	state      State
	observers  []statistic.Observer
	opm        int
	extra      map[string]string
	arrival    arrivalController
	cancel     context.CancelFunc
	loopDone   chan struct{}
	generation uint64

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// New creates an idle Executor. No workers run until Prepare and Start.
func New(opt Options) *Executor {
	opt.normalize()
	return &Executor{
		opt: opt,
		opm: opt.QueriesPerMinute,
		rnd: rand.New(rand.NewSource(opt.RandomSeed)),
	}
}

// State returns the current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddObserver registers a statistics observer. Observers can only be added
// while the executor is idle; the set is frozen for the duration of a run.
func (e *Executor) AddObserver(obs statistic.Observer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return ErrNotIdle
	}
	e.observers = append(e.observers, obs)
	return nil
}

// QueriesPerMinute returns the current target rate.
func (e *Executor) QueriesPerMinute() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opm
}

// ExtraParameters returns a copy of the parsed extra-parameter mapping.
func (e *Executor) ExtraParameters() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	params := make(map[string]string, len(e.extra))
	for k, v := range e.extra {
		params[k] = v
	}
	return params
}

// SetOperationsPerMinute changes the target rate. While running, the new
// rate applies to the next scheduled deadline; no restart is required.
// Non-positive values are ignored, keeping the rate invariant intact.
func (e *Executor) SetOperationsPerMinute(n int) {
	if n <= 0 {
		e.opt.Logger.WithField("qpm", n).Warn("ignoring non-positive rate")
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opm = n
	if e.arrival != nil {
		e.arrival.SetRate(float64(n) / 60)
	}
}

// Prepare validates configuration, computes the admission pacing and readies
// every observer. It transitions Idle to Preparing and fails with
// ErrAlreadyRunning in any other state.
func (e *Executor) Prepare() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return ErrAlreadyRunning
	}
	if e.opm <= 0 {
		return ErrInvalidRate
	}
	if err := e.checkPools(); err != nil {
		return err
	}

	e.extra = config.ParseExtraParameters(e.opt.ExtraParameters)
	e.arrival = newArrivalController(e.opt.ArrivalModel, float64(e.opm)/60, e.opt.RandomSeed)
	e.state = StatePreparing

	e.notifyLocked("prepare", func(obs statistic.Observer) { obs.Prepare() })
	return nil
}

func (e *Executor) checkPools() error {
	if e.opt.NewOperation != nil {
		return nil
	}
	if e.opt.Source == nil || e.opt.Source.QueryCount() == 0 {
		return fmt.Errorf("executor: %w: no queries loaded", querysource.ErrEmptyPool)
	}
	if e.opt.FilterProbability > 0 && e.opt.Source.FilterQueryCount() == 0 {
		return fmt.Errorf("executor: %w: filter probability set but no filter queries loaded", querysource.ErrEmptyPool)
	}
	if e.opt.UseFacets && e.opt.Source.FacetFieldCount() == 0 {
		return fmt.Errorf("executor: %w: facets enabled but no facet fields loaded", querysource.ErrEmptyPool)
	}
	return nil
}

// Start begins the admission loop. It transitions Preparing to Running and
// fails with ErrNotPrepared in any other state.
func (e *Executor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePreparing {
		return ErrNotPrepared
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.loopDone = make(chan struct{})
	e.generation++
	e.state = StateRunning

	go e.admissionLoop(ctx, e.generation, e.arrival, e.loopDone)
	return nil
}

// Stop halts admission, cancels in-flight workers best-effort and notifies
// observers that the test finished. It is idempotent; calling it while idle
// is a no-op. Outcomes delivered by workers after Stop begins are discarded.
func (e *Executor) Stop() error {
	e.mu.Lock()
	switch e.state {
	case StateIdle, StateStopping:
		e.mu.Unlock()
		return nil
	}
	prepared := e.state == StatePreparing
	e.state = StateStopping
	cancel := e.cancel
	done := e.loopDone
	e.cancel = nil
	e.loopDone = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if !prepared && done != nil {
		<-done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifyLocked("finished", func(obs statistic.Observer) { obs.OnFinishedTest() })
	e.state = StateIdle
	return nil
}

// admissionLoop spawns one worker per computed deadline until the run
// context is cancelled. It never waits for a worker to complete.
func (e *Executor) admissionLoop(ctx context.Context, gen uint64, arrival arrivalController, done chan struct{}) {
	defer close(done)
	for {
		if err := arrival.Wait(ctx); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		op, err := e.nextOperation()
		if err != nil {
			e.opt.Logger.WithError(err).Warn("skipping operation")
			continue
		}
		go e.runWorker(ctx, gen, op)
	}
}

// runWorker performs one request/response cycle and reports the outcome
// exactly once. Cancellation surfaces as a context error, which the
// dispatch path discards once the run is over.
func (e *Executor) runWorker(ctx context.Context, gen uint64, op solr.Query) {
	start := time.Now()
	resp, err := e.opt.Invoker.Execute(ctx, op)
	elapsed := time.Since(start)
	if err != nil {
		e.dispatchError(gen, err)
		return
	}
	e.dispatchExecuted(gen, resp, elapsed)
}

func (e *Executor) dispatchExecuted(gen uint64, resp *solr.QueryResponse, elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning || gen != e.generation {
		return
	}
	e.notifyLocked("executed", func(obs statistic.Observer) { obs.OnExecutedQuery(resp, elapsed) })
}

func (e *Executor) dispatchError(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning || gen != e.generation {
		return
	}
	e.notifyLocked("error", func(obs statistic.Observer) { obs.OnQueryError(err) })
}

// notifyLocked runs a hook on every observer in registration order. A panic
// in one observer is logged and does not keep the rest from being notified.
// Callers must hold mu, which also makes notification for a single outcome
// strictly sequential across observers.
func (e *Executor) notifyLocked(hook string, fn func(statistic.Observer)) {
	for _, obs := range e.observers {
		e.safeNotify(hook, obs, fn)
	}
}

func (e *Executor) safeNotify(hook string, obs statistic.Observer, fn func(statistic.Observer)) {
	defer func() {
		if r := recover(); r != nil {
			e.opt.Logger.WithFields(map[string]interface{}{
				"hook":     hook,
				"observer": fmt.Sprintf("%T", obs),
				"panic":    r,
			}).Error("observer hook panicked")
		}
	}()
	fn(obs)
}

// nextOperation snapshots the content for one operation at spawn time, so
// configuration changes only affect subsequently spawned workers.
func (e *Executor) nextOperation() (solr.Query, error) {
	if e.opt.NewOperation != nil {
		return e.opt.NewOperation()
	}

	query, err := e.opt.Source.NextQuery()
	if err != nil {
		return solr.Query{}, err
	}
	op := solr.Query{
		Query:           query,
		QueryType:       e.opt.QueryType,
		ExtraParameters: e.extra,
	}
	if e.opt.FilterProbability > 0 && e.roll() < e.opt.FilterProbability {
		if fq, err := e.opt.Source.NextFilterQuery(); err == nil {
			op.FilterQuery = fq
		}
	}
	if e.opt.UseFacets {
		if field, err := e.opt.Source.NextFacetField(); err == nil {
			op.FacetField = field
		}
	}
	return op, nil
}

func (e *Executor) roll() float64 {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return e.rnd.Float64()
}
