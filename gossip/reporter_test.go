package gossip

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSnapshotJSONRoundTrip(t *testing.T) {
	s := Snapshot{RunID: "run-1", Completed: 10, NumParticles: 100, NormalizationConstant: -0.25}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != s {
		t.Fatalf("round-tripped snapshot mismatch: got %+v, want %+v", got, s)
	}
}

// A nil *Reporter is the documented no-op value so that cmd/asmcd can
// wire an optional reporter without guarding every call site.
func TestNilReporterIsANoOp(t *testing.T) {
	var r *Reporter

	r.Publish(Snapshot{RunID: "x"})

	if peers := r.Peers(); peers != nil {
		t.Fatalf("nil Reporter.Peers() should return nil, got %v", peers)
	}
	if err := r.Dial(context.Background(), "/ip4/127.0.0.1/tcp/4001"); err != nil {
		t.Fatalf("nil Reporter.Dial should be a no-op, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("nil Reporter.Close should be a no-op, got %v", err)
	}
}
