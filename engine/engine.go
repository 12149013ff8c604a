// Package engine implements the core aSMC particle-filter scheduler:
// C1 numeric utilities, C2 particle records, C3 the observation ledger
// and resampling policy, C4 the scheduler control loop, C5 the
// sample/factor/exit coroutine hooks, and C6 the marginal aggregator.
// Everything else in this repo (dist, models, trace, gossip, cmd) is
// an ambient or domain collaborator layered on top.
package engine

import (
	"asmc/engine/config"
)

// Options configures a Run: target particle count, buffer occupancy
// limit, an explicit RNG seed in place of a process-wide RNG, and a
// verbose flag for bracket-tagged log.Printf diagnostics.
type Options struct {
	NumParticles int
	BufferSize   int
	Seed         int64
	Verbose      bool
}

// Run drives an aSMC particle filter to completion and returns its
// empirical marginal distribution. newModel constructs a fresh
// particle's entry continuation; it is called once per particle seeded
// or freshly injected by the scheduler.
//
// A non-positive NumParticles or BufferSize is InvalidConfig, fatal
// before any step — callers needing the package defaults
// (config.NumParticles, config.BufferSize) must set them on Options
// explicitly rather than relying on the zero value.
func Run(newModel func() Cont, opts Options) (*Distribution, error) {
	if opts.NumParticles <= 0 || opts.BufferSize <= 0 {
		return nil, ErrInvalidConfig
	}

	sched := newScheduler(opts.BufferSize, opts.Seed, newModel, opts.Verbose)

	initial := (config.InitialFractionNumerator * opts.BufferSize) / config.InitialFractionDenominator
	sched.seedInitial(initial)

	for sched.step(opts.NumParticles) {
		if sched.lastErr != nil {
			return nil, sched.lastErr
		}
	}
	if sched.lastErr != nil {
		return nil, sched.lastErr
	}

	return sched.aggregator.compile(opts.NumParticles, opts.BufferSize, sched), nil
}
