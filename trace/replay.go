package trace

import (
	"fmt"
	"math/rand"

	"asmc/engine"
	"asmc/engine/seed"
)

// Replay re-derives the RNG stream a particle identified by seedIndex
// would have received from masterSeed (the same derivation scheduler's
// newParticleRNG uses) and drives newModel's continuation forward to
// its exit value. This is the same epoch-seed-then-recompute check
// validator.VerifyBlock performs against a block's claimed loss:
// reproducibility is verified by recomputation, not by trusting the
// stored record.
func Replay(newModel func() engine.Cont, masterSeed int64, seedIndex uint64) interface{} {
	key := seed.Derive(masterSeed, seedIndex)
	rng := rand.New(rand.NewSource(seed.Fold(key)))
	h := &engine.Handler{Store: engine.Store{}, RNG: rng}

	cont := newModel()
	for {
		o := cont(h)
		if o.Kind == engine.OutcomeExit {
			return o.Value
		}
		cont = o.Next
	}
}

// Verify replays newModel against rec's seedIndex under masterSeed and
// reports whether the recomputed exit value matches what was stored.
func Verify(newModel func() engine.Cont, masterSeed int64, rec Record) bool {
	return fmt.Sprint(Replay(newModel, masterSeed, rec.SeedIndex)) == fmt.Sprint(rec.Value)
}
