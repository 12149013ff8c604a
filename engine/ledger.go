package engine

import (
	"math"
	"math/rand"
)

// ledgerEntry is one arrival record for a given factorIndex: the
// running reference log-weight after the k-th particle reached this
// observation, and how many children that arrival was awarded.
type ledgerEntry struct {
	wbar float64
	mnk  int
}

// ledger is the per-factorIndex sequence of arrivals (C3). Keyed by
// factorIndex the way core/mempool.go keys pending transactions by hex
// hash — a plain map guarded by the caller, since the scheduler is
// single-threaded and never needs a mutex here.
type ledger struct {
	entries map[int][]ledgerEntry
}

func newLedger() *ledger {
	return &ledger{entries: make(map[int][]ledgerEntry)}
}

func (l *ledger) len(n int) int {
	return len(l.entries[n])
}

func (l *ledger) append(n int, e ledgerEntry) {
	l.entries[n] = append(l.entries[n], e)
}

// totalChildren sums mnk over every arrival recorded so far at n.
func (l *ledger) totalChildren(n int) int {
	total := 0
	for _, e := range l.entries[n] {
		total += e.mnk
	}
	return total
}

// arrivalResult is what the resampling policy decides for one arriving
// particle at an observation boundary.
type arrivalResult struct {
	children int     // c: number of children awarded (0 means dropped)
	logW     float64 // per-child log-weight if children >= 1
	wbar     float64 // reference weight recorded in the ledger for this arrival
}

// resample applies the observation-ledger recurrence and resampling
// policy for one arrival. bufferSize is ρ, used only to compute minK
// for the ceil/floor branch selection.
func (l *ledger) resample(n int, weight float64, multiplicity int, bufferSize int, rng *rand.Rand) arrivalResult {
	k := l.len(n) + 1 // this arrival is the k-th distinct arrival at n

	if k == 1 {
		// First-arrival policy: seed the reference weight, award
		// exactly one child with the unchanged weight.
		l.append(n, ledgerEntry{wbar: weight, mnk: 1})
		return arrivalResult{children: 1, logW: weight, wbar: weight}
	}

	prevWbar := l.entries[n][k-2].wbar
	denom := float64((k - 1) + multiplicity)
	wbar := logsumexp2(
		math.Log(float64(k-1)/denom)+prevWbar,
		math.Log(float64(multiplicity)/denom)+weight,
	)
	logRatio := weight - wbar

	var c int
	if logRatio < 0 {
		// Underperform branch: stochastic keep-or-drop against the
		// reference weight.
		u := rng.Float64()
		if math.Log(u) < logRatio {
			c = 1
		} else {
			c = 0
		}
	} else {
		totalChildren := l.totalChildren(n)
		minK := bufferSize
		if k-1 < minK {
			minK = k - 1
		}
		r := math.Exp(logRatio)
		if totalChildren <= minK {
			c = int(math.Ceil(r))
		} else {
			c = int(math.Floor(r))
		}
	}

	l.append(n, ledgerEntry{wbar: wbar, mnk: c})

	if c == 0 {
		return arrivalResult{children: 0, wbar: wbar}
	}
	return arrivalResult{children: c, logW: weight - math.Log(float64(c)), wbar: wbar}
}
