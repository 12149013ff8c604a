package engine

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewParticleDefaults(t *testing.T) {
	cont := func(h *Handler) Outcome { return ExitOutcome(nil) }
	p := newParticle(Store{"a": 1}, cont, rand.New(rand.NewSource(1)))

	if p.Weight != 0 || p.FinalWeight != 0 {
		t.Fatalf("fresh particle should have zero weights, got %v/%v", p.Weight, p.FinalWeight)
	}
	if p.Multiplicity != 1 {
		t.Fatalf("fresh particle multiplicity = %d, want 1", p.Multiplicity)
	}
	if p.FactorIndex != noFactor {
		t.Fatalf("fresh particle factorIndex = %d, want noFactor", p.FactorIndex)
	}
	if p.Store["a"] != 1 {
		t.Fatalf("store not copied correctly")
	}
}

func TestStoreCloneIsIndependent(t *testing.T) {
	s := Store{"k": 1}
	c := s.Clone()
	c["k"] = 2
	if s["k"] != 1 {
		t.Fatalf("mutating clone leaked into original: %v", s["k"])
	}
}

func TestCloneOneIndependentStoreAndRNG(t *testing.T) {
	cont := func(h *Handler) Outcome { return ExitOutcome(nil) }
	parent := newParticle(Store{"k": 1}, cont, rand.New(rand.NewSource(1)))
	parent.Weight = -2.5
	parent.FinalWeight = -1.5
	parent.Multiplicity = 3
	parent.FactorIndex = 2

	child := cloneOne(parent, rand.New(rand.NewSource(2)))

	if child.Weight != parent.Weight || child.FinalWeight != parent.FinalWeight {
		t.Fatalf("clone should mirror weights")
	}
	if child.Multiplicity != parent.Multiplicity || child.FactorIndex != parent.FactorIndex {
		t.Fatalf("clone should mirror multiplicity/factorIndex")
	}
	if child.ChildrenToSpawn != 1 {
		t.Fatalf("clone should start with exactly one child credit, got %d", child.ChildrenToSpawn)
	}

	child.Store["k"] = 99
	if parent.Store["k"] != 1 {
		t.Fatalf("clone's store must be independently owned")
	}
	if child.rng == parent.rng {
		t.Fatalf("clone must not share the parent's rng")
	}
}

func TestParticleDead(t *testing.T) {
	p := &Particle{Weight: math.Inf(-1)}
	if !p.dead() {
		t.Fatalf("particle with -Inf weight should be dead")
	}
	p.Weight = -3
	if p.dead() {
		t.Fatalf("particle with finite weight should not be dead")
	}
}
