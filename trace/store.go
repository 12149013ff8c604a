// Package trace persists completed particle records to disk so a run's
// empirical distribution can be reconstructed or audited after the
// fact, the same supporting role core.BadgerStore plays for mined
// blocks: a thin badger wrapper keyed by a monotonic sequence number,
// nothing fancier.
package trace

import (
	"encoding/json"
	"path/filepath"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"asmc/engine"
)

// Record is the durable shape of one completed particle, grounded on
// what the aggregator already tracks (engine.Particle's Value/Weight)
// plus the run identity needed to tell independent runs apart on disk.
type Record struct {
	RunID     string      `json:"runId"`
	Seq       uint64      `json:"seq"`
	SeedIndex uint64      `json:"seedIndex"`
	Value     interface{} `json:"value"`
	Weight    float64     `json:"weight"`
}

// FromCompleted adapts one of an engine.Distribution's CompletedRecord
// entries to a durable trace.Record for the given run.
func FromCompleted(runID string, c engine.CompletedRecord) Record {
	return Record{
		RunID:     runID,
		Seq:       c.Seq,
		SeedIndex: c.SeedIndex,
		Value:     c.Value,
		Weight:    c.Weight,
	}
}

// Store is a badger-backed append log of Records, keyed
// "trace:<runID>:<seq>" the way BadgerStore keys blocks "block:<height>".
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database rooted at dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "badger")
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func recordKey(runID string, seq uint64) []byte {
	return []byte("trace:" + runID + ":" + strconv.FormatUint(seq, 10))
}

// Put appends one completed particle's record.
func (s *Store) Put(r Record) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(r.RunID, r.Seq), val)
	})
}

// Get fetches the record for (runID, seq).
func (s *Store) Get(runID string, seq uint64) (Record, error) {
	var r Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(runID, seq))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	return r, err
}

// All returns every record stored for runID, in ascending seq order.
// badger iterates keys in lexicographic byte order and FormatUint does
// not zero-pad, so key order is not numeric order; the records are
// sorted by the numeric seq embedded in each value before returning.
func (s *Store) All(runID string) ([]Record, error) {
	var out []Record
	prefix := []byte("trace:" + runID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var r Record
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				out = append(out, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBySeq(out)
	return out, nil
}

// Delete removes every record for runID.
func (s *Store) Delete(runID string) error {
	prefix := []byte("trace:" + runID + ":")
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			keys = append(keys, k)
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func sortBySeq(rs []Record) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].Seq < rs[j-1].Seq; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}
