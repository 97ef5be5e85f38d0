package executor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/searchmeter/searchmeter/internal/config"
)

// arrivalController paces worker admission. SetRate may be called while
// Wait is in use; the new rate applies to the next computed deadline.
type arrivalController interface {
	Wait(ctx context.Context) error
	SetRate(rps float64)
}

func newArrivalController(model config.ArrivalModel, rps float64, seed int64) arrivalController {
	switch model {
	case config.ArrivalModelPoisson:
		seeded := rand.New(rand.NewSource(seed))
		ctrl := &poissonArrival{sample: seeded.ExpFloat64}
		ctrl.SetRate(rps)
		return ctrl
	default:
		// Burst stays at one so a rate change cannot dump a backlog of
		// admissions at once; spacing between workers remains even.
		limiter := rate.NewLimiter(rate.Limit(rps), 1)
		return &uniformArrival{limiter: limiter}
	}
}

// uniformArrival delegates pacing to a rate.Limiter. The limiter tracks a
// monotonic deadline internally, so the admission rate does not drift even
// when individual waits run long.
type uniformArrival struct {
	limiter *rate.Limiter
}

func (u *uniformArrival) Wait(ctx context.Context) error {
	if u == nil || u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}

func (u *uniformArrival) SetRate(rps float64) {
	if u == nil || u.limiter == nil {
		return
	}
	if rps <= 0 {
		u.limiter.SetLimit(rate.Inf)
		u.limiter.SetBurst(0)
		return
	}
	u.limiter.SetLimit(rate.Limit(rps))
}

// poissonArrival samples exponential inter-arrival times to approximate a
// Poisson process.
type poissonArrival struct {
	mu     sync.Mutex
	rate   float64
	sample func() float64
}

func (p *poissonArrival) Wait(ctx context.Context) error {
	delay := p.nextDelay()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *poissonArrival) SetRate(rps float64) {
	if p == nil {
		return
	}
	if rps < 0 {
		rps = 0
	}
	p.mu.Lock()
	p.rate = rps
	p.mu.Unlock()
}

func (p *poissonArrival) nextDelay() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rate <= 0 || p.sample == nil {
		return 0
	}

	value := p.sample()
	delay := float64(time.Second) * value / p.rate
	if delay > math.MaxInt64 {
		delay = math.MaxInt64
	}
	return time.Duration(delay)
}
