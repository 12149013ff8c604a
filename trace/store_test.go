package trace

import (
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorePutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	rec := Record{RunID: "run-1", Seq: 3, SeedIndex: 7, Value: 1.5, Weight: -2.25}

	if err := s.Put(rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("run-1", 3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SeedIndex != rec.SeedIndex || got.Weight != rec.Weight {
		t.Fatalf("round-tripped record mismatch: got %+v, want %+v", got, rec)
	}
}

func TestStoreAllReturnsAscendingSeq(t *testing.T) {
	s := openTestStore(t)
	for _, seq := range []uint64{5, 1, 3} {
		if err := s.Put(Record{RunID: "run-2", Seq: seq, Value: seq}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	recs, err := s.All("run-2")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Seq < recs[i-1].Seq {
			t.Fatalf("All did not return ascending seq order: %v", recs)
		}
	}
}

func TestStoreDeleteRemovesOnlyThatRun(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(Record{RunID: "keep", Seq: 1, Value: "a"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(Record{RunID: "drop", Seq: 1, Value: "b"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := s.Delete("drop"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	recs, err := s.All("drop")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected the deleted run to have no records, got %d", len(recs))
	}

	recs, err = s.All("keep")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected the untouched run to retain its record, got %d", len(recs))
	}
}
