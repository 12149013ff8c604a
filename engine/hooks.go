package engine

import "math"

// applyFactor implements the factor hook: it mutates active in place
// and returns the buffering decision; if ok is false the particle is
// dropped and must not be re-enqueued.
func (s *Scheduler) applyFactor(active *Particle, o Outcome) (ok bool) {
	active.Weight += o.Score
	active.Cont = o.Next
	if active.FactorIndex == noFactor {
		active.FactorIndex = 0
	} else {
		active.FactorIndex++
	}

	if active.dead() {
		return false
	}

	n := active.FactorIndex
	res := s.ledger.resample(n, active.Weight, active.Multiplicity, s.bufferSize, s.rng)
	if res.children == 0 {
		return false
	}

	if len(s.buffer) < s.bufferSize {
		active.ChildrenToSpawn = res.children
		active.Weight = res.logW
	} else {
		// Buffer saturation law: preserve statistical equivalence
		// without growing the buffer by folding the fork count into
		// multiplicity instead of spawning extra slots.
		active.Multiplicity *= res.children
		active.ChildrenToSpawn = 1
		active.Weight = res.logW
	}
	active.FinalWeight = math.Log(float64(active.Multiplicity)) + active.Weight + o.Score
	return true
}

// applyExit implements the exit hook: finalize the particle and hand
// it to the aggregator.
func (s *Scheduler) applyExit(active *Particle, o Outcome) {
	active.Value = o.Value
	active.Completed = true
	active.Weight = active.FinalWeight
	s.aggregator.add(active)
}
