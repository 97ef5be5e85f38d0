package executor

import (
	"context"
	"testing"
	"time"

	"github.com/searchmeter/searchmeter/internal/config"
)

func TestPoissonArrivalNextDelayUsesSampler(t *testing.T) {
	ctrl := &poissonArrival{sample: func() float64 { return 1 }}
	ctrl.SetRate(200)
	delay := ctrl.nextDelay()
	expected := time.Second / 200
	if delay != expected {
		t.Fatalf("expected delay %s, got %s", expected, delay)
	}
}

func TestPoissonArrivalWaitCancelledContext(t *testing.T) {
	ctrl := &poissonArrival{sample: func() float64 { return 1 }}
	ctrl.SetRate(0.000001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ctrl.Wait(ctx); err == nil {
		t.Fatalf("expected context error when cancelled")
	}
}

func TestNewArrivalControllerSelectsModel(t *testing.T) {
	if _, ok := newArrivalController(config.ArrivalModelPoisson, 10, 1).(*poissonArrival); !ok {
		t.Fatalf("expected poisson controller")
	}
	if _, ok := newArrivalController(config.ArrivalModelUniform, 10, 1).(*uniformArrival); !ok {
		t.Fatalf("expected uniform controller")
	}
}

func TestUniformArrivalSetRateAppliesToNextWait(t *testing.T) {
	ctrl := newArrivalController(config.ArrivalModelUniform, 1, 1)
	ctrl.SetRate(1000)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := ctrl.Wait(ctx); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	// Five admissions at 1000/s fit comfortably in well under a second;
	// at the original 1/s they could not.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("rate change ignored, five waits took %s", elapsed)
	}
}
