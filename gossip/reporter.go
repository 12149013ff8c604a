package gossip

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	mdns "github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/multiformats/go-multiaddr"
)

// Reporter wraps a libp2p host subscribed to ProgressTopic and is the
// direct counterpart of net.P2PNode, but for anytime-progress snapshots
// instead of blocks. A nil *Reporter is a valid no-op, so every method
// below tolerates a nil receiver: callers don't need to guard every
// call site behind an "if reporter != nil".
type Reporter struct {
	host   host.Host
	pubsub *pubsub.PubSub
	sub    *pubsub.Subscription
	runID  string

	mu    sync.RWMutex
	peers map[string]Snapshot
}

// NewReporter starts a libp2p node listening on listenPort, joins
// ProgressTopic, and enables mDNS discovery the same way
// net.NewP2PNode does for block gossip.
func NewReporter(ctx context.Context, listenPort int, runID string) (*Reporter, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(
		fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", listenPort),
	))
	if err != nil {
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, err
	}

	sub, err := ps.Subscribe(ProgressTopic)
	if err != nil {
		return nil, err
	}

	r := &Reporter{host: h, pubsub: ps, sub: sub, runID: runID, peers: make(map[string]Snapshot)}

	notifee := &discoveryNotifee{}
	if err := mdns.NewMdnsService(h, "asmc-mdns", notifee).Start(); err != nil {
		return nil, err
	}
	log.Printf("[GOSSIP] mDNS peer discovery enabled")

	go r.listen(ctx)
	return r, nil
}

// Dial connects this reporter's host to a known peer multiaddr, for
// deployments without mDNS (e.g. across machines/networks).
func (r *Reporter) Dial(ctx context.Context, addr string) error {
	if r == nil {
		return nil
	}
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return err
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return err
	}
	return r.host.Connect(ctx, *info)
}

// Publish announces a progress snapshot on ProgressTopic.
func (r *Reporter) Publish(s Snapshot) {
	if r == nil {
		return
	}
	s.RunID = r.runID
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("[GOSSIP] failed to marshal snapshot: %v", err)
		return
	}
	if err := r.pubsub.Publish(ProgressTopic, data); err != nil {
		log.Printf("[GOSSIP] publish failed: %v", err)
	}
}

// Peers returns the most recently observed snapshot from each peer run
// this reporter has heard from.
func (r *Reporter) Peers() map[string]Snapshot {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Snapshot, len(r.peers))
	for k, v := range r.peers {
		out[k] = v
	}
	return out
}

// listen consumes inbound snapshots until the subscription closes, the
// same loop shape as net.P2PNode.HandleBlockMessages.
func (r *Reporter) listen(ctx context.Context) {
	for {
		msg, err := r.sub.Next(ctx)
		if err != nil {
			log.Printf("[GOSSIP] subscription closed: %v", err)
			return
		}
		if msg.ReceivedFrom == r.host.ID() {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(msg.Data, &snap); err != nil {
			log.Printf("[GOSSIP] failed to decode snapshot: %v", err)
			continue
		}
		if snap.RunID == r.runID {
			continue
		}
		log.Printf("[GOSSIP] peer %s progress %d/%d logZ=%.4f",
			snap.RunID, snap.Completed, snap.NumParticles, snap.NormalizationConstant)

		r.mu.Lock()
		r.peers[snap.RunID] = snap
		r.mu.Unlock()
	}
}

// Close shuts down the underlying libp2p host.
func (r *Reporter) Close() error {
	if r == nil {
		return nil
	}
	return r.host.Close()
}

type discoveryNotifee struct{}

func (discoveryNotifee) HandlePeerFound(info peer.AddrInfo) {
	log.Printf("[GOSSIP] mDNS discovered peer: %s", info.ID.String())
}
