// Package models hand-writes the CPS-style probabilistic programs the
// engine's inward contract expects: each one is a plain Go closure that
// calls Handler.Sample for pure-forward draws and returns an
// engine.Outcome at every observation/exit boundary. Source-to-
// continuation compilation is out of scope for the engine; these are
// the manually-written equivalent, one step of work driven forward to
// a terminal outcome.
package models

import (
	"math"

	"asmc/dist"
	"asmc/engine"
)

// CoinFlip: a single Bernoulli sample, no observation, return the
// draw.
func CoinFlip(p float64) func() engine.Cont {
	return func() engine.Cont {
		return func(h *engine.Handler) engine.Outcome {
			x := h.Sample("x", dist.Bernoulli{P: p}) != 0
			return engine.ExitOutcome(x)
		}
	}
}

// SingleObservation: x ~ Normal(0,1), observe Normal(x,1) = obs,
// return x.
func SingleObservation(obs float64) func() engine.Cont {
	return func() engine.Cont {
		return func(h *engine.Handler) engine.Outcome {
			x := h.Sample("x", dist.Normal{Mu: 0, Sigma: 1})
			score := dist.Normal{Mu: x, Sigma: 1}.LogPdf(obs)
			return engine.FactorOutcome("obs", score, func(h *engine.Handler) engine.Outcome {
				return engine.ExitOutcome(x)
			})
		}
	}
}

// AllKill: an observation that always scores -Inf, so every
// particle dies before completing.
func AllKill() func() engine.Cont {
	return func() engine.Cont {
		return func(h *engine.Handler) engine.Outcome {
			return engine.FactorOutcome("kill", math.Inf(-1), func(h *engine.Handler) engine.Outcome {
				return engine.ExitOutcome(0)
			})
		}
	}
}

// LinearRegression: slope ~ Normal(0,1), then one observation of
// slope*xi against yi per data point with a fixed noise level,
// returning slope.
func LinearRegression(xs, ys []float64, noise float64) func() engine.Cont {
	return func() engine.Cont {
		return func(h *engine.Handler) engine.Outcome {
			slope := h.Sample("slope", dist.Normal{Mu: 0, Sigma: 1})
			return factorChain(xs, ys, noise, slope, 0)
		}
	}
}

func factorChain(xs, ys []float64, noise, slope float64, i int) engine.Outcome {
	if i >= len(xs) {
		return engine.ExitOutcome(slope)
	}
	pred := slope * xs[i]
	score := dist.Normal{Mu: pred, Sigma: noise}.LogPdf(ys[i])
	return engine.FactorOutcome("obs", score, func(h *engine.Handler) engine.Outcome {
		return factorChain(xs, ys, noise, slope, i+1)
	})
}

// FactorChain: a chain of n factors each scoring 0 (pure sampling in
// disguise), then return the sampled value.
func FactorChain(n int) func() engine.Cont {
	return func() engine.Cont {
		return func(h *engine.Handler) engine.Outcome {
			x := h.Sample("x", dist.Normal{Mu: 0, Sigma: 1})
			return zeroFactorChain(x, n)
		}
	}
}

func zeroFactorChain(x float64, remaining int) engine.Outcome {
	if remaining <= 0 {
		return engine.ExitOutcome(x)
	}
	return engine.FactorOutcome("noop", 0, func(h *engine.Handler) engine.Outcome {
		return zeroFactorChain(x, remaining-1)
	})
}
