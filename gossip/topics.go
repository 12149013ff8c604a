// Package gossip optionally broadcasts anytime progress snapshots over
// libp2p pubsub so several cooperating workers contributing to the same
// aSMC budget can observe each other's progress. It never feeds
// anything back into the scheduler: purely a push-only observer, the
// same relationship net.P2PNode has to core.Chain.
package gossip

// ProgressTopic is the pubsub topic progress snapshots are published
// on, mirroring net.BlockTopic's naming.
const ProgressTopic = "asmc-progress"

// Snapshot is the wire shape of one progress announcement.
type Snapshot struct {
	RunID                 string  `json:"runId"`
	Completed             int     `json:"completed"`
	NumParticles          int     `json:"numParticles"`
	NormalizationConstant float64 `json:"normalizationConstant"`
}
