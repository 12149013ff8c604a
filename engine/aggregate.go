package engine

import (
	"encoding/json"
	"math"

	"github.com/ethereum/go-ethereum/crypto"
)

// aggregator is the marginal aggregator (C6): it consumes completed
// particles and, on demand, compiles them into a Distribution.
type aggregator struct {
	completed []*Particle
}

func newAggregator() *aggregator {
	return &aggregator{}
}

func (a *aggregator) add(p *Particle) {
	a.completed = append(a.completed, p)
}

func (a *aggregator) completedCount() int {
	return len(a.completed)
}

// canonicalKey hashes a JSON-canonicalized return value the same way
// core/tx.go's Transaction.CalculateHash hashes its deterministic JSON
// representation, so structurally equal return values (structs,
// slices, floats, bools — anything JSON-marshalable) collide into the
// same histogram bucket regardless of Go's map-key restrictions.
func canonicalKey(v interface{}) ([32]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return [32]byte{}, err
	}
	return [32]byte(crypto.Keccak256Hash(data)), nil
}

// bucket is one entry of the empirical marginal: a return value
// observed at least once, its raw count, and its normalized mass.
type bucket struct {
	Value interface{}
	Count int
	Mass  float64
}

// Distribution is the outward result of a Run: samples proportional
// to empirical mass, scores, exposes the log-marginal estimate, and
// supports extending the budget via Continue.
type Distribution struct {
	buckets               []bucket
	keyIndex              map[[32]byte]int
	NormalizationConstant float64

	numParticles int
	bufferSize   int
	sched        *Scheduler
}

// compile builds the empirical histogram and the log-marginal estimate
// from the aggregator's completed list.
func (a *aggregator) compile(numParticles, bufferSize int, sched *Scheduler) *Distribution {
	d := &Distribution{
		keyIndex:     make(map[[32]byte]int),
		numParticles: numParticles,
		bufferSize:   bufferSize,
		sched:        sched,
	}

	weights := make([]float64, 0, len(a.completed))
	for _, p := range a.completed {
		weights = append(weights, p.Weight)

		key, err := canonicalKey(p.Value)
		if err != nil {
			// Values that cannot be JSON-marshaled (e.g. func values)
			// still count toward the normalization constant but are
			// dropped from the histogram: there is no canonical key
			// to bucket them under.
			continue
		}
		if idx, ok := d.keyIndex[key]; ok {
			d.buckets[idx].Count++
		} else {
			d.keyIndex[key] = len(d.buckets)
			d.buckets = append(d.buckets, bucket{Value: p.Value, Count: 1})
		}
	}

	total := len(a.completed)
	for i := range d.buckets {
		d.buckets[i].Mass = float64(d.buckets[i].Count) / float64(total)
	}

	if total == 0 {
		d.NormalizationConstant = math.Inf(-1)
		return d
	}
	d.NormalizationConstant = logsumexp(weights) - math.Log(float64(total))
	return d
}

// Buckets exposes the empirical distribution's support for callers
// that want more than sample/score access.
func (d *Distribution) Buckets() []bucket {
	return d.buckets
}

// Sample draws a return value proportional to empirical mass.
func (d *Distribution) Sample(rng interface{ Float64() float64 }) interface{} {
	if len(d.buckets) == 0 {
		return nil
	}
	u := rng.Float64()
	acc := 0.0
	for _, b := range d.buckets {
		acc += b.Mass
		if u <= acc {
			return b.Value
		}
	}
	return d.buckets[len(d.buckets)-1].Value
}

// Score returns the empirical log-probability mass of v, or -Inf if v
// was never observed among the completed particles.
func (d *Distribution) Score(v interface{}) float64 {
	key, err := canonicalKey(v)
	if err != nil {
		return math.Inf(-1)
	}
	if idx, ok := d.keyIndex[key]; ok {
		return math.Log(d.buckets[idx].Mass)
	}
	return math.Inf(-1)
}

// CompletedRecord is the durable shape of one completed particle,
// exposed so a caller (package trace) can persist and later replay it
// without reaching into the engine's internals.
type CompletedRecord struct {
	Seq       uint64
	SeedIndex uint64
	Value     interface{}
	Weight    float64
}

// Completed lists every particle that has finished so far, in
// completion order. Returns nil if this Distribution was not compiled
// from a live scheduler (e.g. an empty aggregator with sched == nil).
func (d *Distribution) Completed() []CompletedRecord {
	if d.sched == nil {
		return nil
	}
	out := make([]CompletedRecord, 0, len(d.sched.aggregator.completed))
	for _, p := range d.sched.aggregator.completed {
		out = append(out, CompletedRecord{Seq: p.seq, SeedIndex: p.seedIdx, Value: p.Value, Weight: p.Weight})
	}
	return out
}

// Continue extends the completed-particle budget by extra and
// re-enters the scheduler loop. It returns a new Distribution compiled
// over the full (old + new) completed set.
func (d *Distribution) Continue(extra int) *Distribution {
	if d.sched == nil {
		return d
	}
	target := d.numParticles + extra
	for d.sched.step(target) {
	}
	nd := d.sched.aggregator.compile(target, d.bufferSize, d.sched)
	return nd
}
