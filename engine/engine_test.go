package engine

import (
	"math"
	"testing"
)

func TestRunRejectsNonPositiveConfig(t *testing.T) {
	_, err := Run(func() Cont { return func(h *Handler) Outcome { return ExitOutcome(nil) } },
		Options{NumParticles: 0, BufferSize: 10})
	if err != ErrInvalidConfig {
		t.Fatalf("Run with NumParticles=0 should return ErrInvalidConfig, got %v", err)
	}

	_, err = Run(func() Cont { return func(h *Handler) Outcome { return ExitOutcome(nil) } },
		Options{NumParticles: 10, BufferSize: 0})
	if err != ErrInvalidConfig {
		t.Fatalf("Run with BufferSize=0 should return ErrInvalidConfig, got %v", err)
	}
}

func TestRunPureExitModelCompletesExactBudget(t *testing.T) {
	newModel := func() Cont {
		return func(h *Handler) Outcome {
			return ExitOutcome("done")
		}
	}

	d, err := Run(newModel, Options{NumParticles: 30, BufferSize: 10, Seed: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	buckets := d.Buckets()
	if len(buckets) != 1 || buckets[0].Value != "done" {
		t.Fatalf("expected a single bucket {done}, got %v", buckets)
	}
	if buckets[0].Count != 30 {
		t.Fatalf("expected 30 completed particles, got %d", buckets[0].Count)
	}
}

func TestRunAllKillStallsToEmptyDistributionNotHang(t *testing.T) {
	newModel := func() Cont {
		return func(h *Handler) Outcome {
			return FactorOutcome("kill", math.Inf(-1), func(h *Handler) Outcome {
				return ExitOutcome(0)
			})
		}
	}

	d, err := Run(newModel, Options{NumParticles: 5, BufferSize: 5, Seed: 2})
	if err != nil {
		t.Fatalf("Run should terminate cleanly on a degenerate model, got error %v", err)
	}
	if len(d.Buckets()) != 0 {
		t.Fatalf("expected an empty histogram, got %d buckets", len(d.Buckets()))
	}
	if !math.IsInf(d.NormalizationConstant, -1) {
		t.Fatalf("normalizationConstant = %v, want -Inf", d.NormalizationConstant)
	}
}

func TestRunContinueDoublesCompletedCount(t *testing.T) {
	newModel := func() Cont {
		return func(h *Handler) Outcome {
			return ExitOutcome(1)
		}
	}

	d, err := Run(newModel, Options{NumParticles: 50, BufferSize: 20, Seed: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	nd := d.Continue(50)
	total := 0
	for _, b := range nd.Buckets() {
		total += b.Count
	}
	if total != 100 {
		t.Fatalf("Continue(50) after Run(50) should give 100 completed particles total, got %d", total)
	}
}

func TestSchedulerNeverExceedsBufferCapacity(t *testing.T) {
	newModel := func() Cont {
		return func(h *Handler) Outcome {
			return FactorOutcome("obs", 0, func(h *Handler) Outcome {
				return ExitOutcome(1)
			})
		}
	}

	sched := newScheduler(8, 42, newModel, false)
	sched.seedInitial(4)
	for i := 0; i < 500 && sched.step(200); i++ {
		if len(sched.buffer) > sched.bufferSize {
			t.Fatalf("buffer grew past its configured capacity: %d > %d", len(sched.buffer), sched.bufferSize)
		}
	}
}
