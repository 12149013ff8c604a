package engine

import (
	"fmt"
	"log"
	"math/rand"

	"asmc/engine/seed"
)

// Scheduler is the particle-filter control loop (C4). It owns every
// particle record currently in its buffer; ownership of the "active"
// particle transfers to the hooks in hooks.go for the duration of one
// resumption, then returns to the buffer, the completed list, or is
// dropped — mirroring the single ownership discipline miner.WorkLoop
// keeps over the mining template it is currently hashing.
type Scheduler struct {
	buffer     []*Particle
	bufferSize int
	ledger     *ledger
	aggregator *aggregator
	rng        *rand.Rand
	newModel   func() Cont
	verbose    bool

	masterSeed  int64
	seedCounter uint64
	nextSeq     uint64
	lastErr     error

	// idleRounds/stalled detect a degenerate model where every particle
	// dies before its first exit: without this, a model that always
	// factors -Inf would leave step's requested completed-particle
	// budget forever unreachable and spin the scheduler indefinitely.
	// After stallLimit consecutive steps that leave the buffer empty
	// with no new completion, the run is treated as exhausted rather
	// than hung, and compiles whatever completed set it has (possibly
	// none, giving normalizationConstant = -Inf).
	idleRounds int
	stalled    bool
}

// minStallLimit floors stallLimit for small buffer sizes so a
// bufferSize-1 run still gets a reasonable number of attempts before
// being declared degenerate.
const minStallLimit = 200

func (s *Scheduler) stallLimit() int {
	l := 20 * s.bufferSize
	if l < minStallLimit {
		l = minStallLimit
	}
	return l
}

// newScheduler wires a fresh scheduler. newModel constructs the initial
// continuation for a brand-new particle (the compiled model's entry
// point); it is called once per fresh injection. masterSeed is folded
// with a monotonic counter (package seed) to hand every particle its
// own independent random stream.
func newScheduler(bufferSize int, masterSeed int64, newModel func() Cont, verbose bool) *Scheduler {
	return &Scheduler{
		bufferSize: bufferSize,
		ledger:     newLedger(),
		aggregator: newAggregator(),
		rng:        rand.New(rand.NewSource(masterSeed)),
		newModel:   newModel,
		verbose:    verbose,
		masterSeed: masterSeed,
	}
}

// newParticleRNG derives the next independent random stream from the
// run's master seed, per package seed (grounded on keyschedule.EpochKey),
// alongside the counter value used to derive it so the caller can stamp
// the resulting particle for later replay.
func (s *Scheduler) newParticleRNG() (uint64, *rand.Rand) {
	idx := s.seedCounter
	key := seed.Derive(s.masterSeed, idx)
	s.seedCounter++
	return idx, rand.New(rand.NewSource(seed.Fold(key)))
}

// seedInitial buffers ⌊3·bufferSize/5⌋ fresh particles (the ρ0 initial
// fraction).
func (s *Scheduler) seedInitial(n int) {
	for i := 0; i < n; i++ {
		idx, rng := s.newParticleRNG()
		p := newParticle(Store{}, s.newModel(), rng)
		p.seedIdx = idx
		s.buffer = append(s.buffer, p)
	}
}

// step picks one unit of work and resumes it, applying whichever hook
// its next suspension point calls for. It returns false
// once the requested completed-particle budget has been met.
func (s *Scheduler) step(budget int) bool {
	if s.aggregator.completedCount() >= budget || s.stalled {
		return false
	}

	completedBefore := s.aggregator.completedCount()

	var active *Particle
	i := s.rng.Intn(len(s.buffer) + 1) // inclusive upper bound: fresh-slot probability 1/(|buffer|+1)
	if i == len(s.buffer) {
		idx, rng := s.newParticleRNG()
		active = newParticle(Store{}, s.newModel(), rng)
		active.seedIdx = idx
	} else {
		p := s.buffer[i]
		if p.ChildrenToSpawn > 1 {
			idx, rng := s.newParticleRNG()
			active = cloneOne(p, rng)
			active.seedIdx = idx
			p.ChildrenToSpawn--
		} else {
			active = p
			s.buffer = append(s.buffer[:i], s.buffer[i+1:]...)
		}
	}

	s.resume(active)

	if len(s.buffer) == 0 && s.aggregator.completedCount() == completedBefore {
		s.idleRounds++
		if s.idleRounds >= s.stallLimit() {
			s.stalled = true
		}
	} else {
		s.idleRounds = 0
	}

	return true
}

// resume drives active's continuation forward to its next suspension
// point and dispatches to the matching hook. A panicking model is
// reported as a ModelError instead of crashing the scheduler, the same
// way cmd/poaid's mining goroutine recovers and logs instead of taking
// the whole daemon down.
func (s *Scheduler) resume(active *Particle) {
	defer func() {
		if r := recover(); r != nil {
			s.lastErr = &ModelError{Addr: "", Err: panicAsError(r)}
		}
	}()

	h := &Handler{Store: active.Store, RNG: active.rng}
	o := active.Cont(h)
	active.Store = h.Store

	switch o.Kind {
	case OutcomeFactor:
		if s.verbose {
			log.Printf("[SCHED] factor addr=%s score=%.4f idx=%d", o.Addr, o.Score, active.FactorIndex+1)
		}
		if ok := s.applyFactor(active, o); ok {
			s.buffer = append(s.buffer, active)
		} else if s.verbose {
			log.Printf("[SCHED] dropped particle at factorIndex=%d", active.FactorIndex)
		}
	case OutcomeExit:
		if s.verbose {
			log.Printf("[SCHED] exit value=%v weight=%.4f", o.Value, active.FinalWeight)
		}
		active.seq = s.nextSeq
		s.nextSeq++
		s.applyExit(active, o)
	}
}

func panicAsError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{r}
}

// panicValue adapts an arbitrary recovered panic value to error.
type panicValue struct{ v interface{} }

func (p *panicValue) Error() string { return fmt.Sprint(p.v) }
