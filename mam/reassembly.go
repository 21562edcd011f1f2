package mam

import (
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iotaledger/iota.go/trinary"
)

// Fragment is one ledger transaction's share of a bundle payload.
type Fragment struct {
	// Bundle identifies the bundle this fragment belongs to.
	Bundle trinary.Hash

	// Index is the fragment's position within the bundle.
	Index uint64

	// LastIndex is the highest position in the bundle, so the bundle is
	// complete once LastIndex+1 distinct positions have been seen.
	LastIndex uint64

	// Content is the fragment's share of the payload.
	Content trinary.Trytes
}

// bundleBuffer accumulates the fragments of one in-flight bundle.
type bundleBuffer struct {
	parts     map[uint64]trinary.Trytes
	total     uint64
	firstSeen time.Time
}

func (b *bundleBuffer) assemble() trinary.Trytes {
	positions := make([]uint64, 0, len(b.parts))
	for pos := range b.parts {
		positions = append(positions, pos)
	}
	// Ascending numeric order; reconstruction depends on position, never
	// on arrival order.
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	var payload trinary.Trytes
	for _, pos := range positions {
		payload += b.parts[pos]
	}
	return payload
}

// ReassemblerConfig configures the bounded fragment cache.
type ReassemblerConfig struct {
	// Capacity bounds how many incomplete bundles are buffered at once.
	// The least recently touched bundle is abandoned when exceeded.
	Capacity int

	// MaxAge bounds how long an incomplete bundle may linger before a
	// Sweep abandons it. Zero disables age-based sweeping.
	MaxAge time.Duration

	// OnAbandon, if set, is invoked for every incomplete bundle dropped by
	// capacity eviction, Sweep or Abandon.
	OnAbandon func(bundle trinary.Hash)
}

// DefaultFragmentCapacity bounds concurrently incomplete bundles when the
// caller does not choose a capacity.
const DefaultFragmentCapacity = 256

// Reassembler reconstructs complete message payloads from unordered ledger
// transaction fragments. Fragments are grouped by bundle; a bundle is
// emitted the instant the number of distinct recorded positions equals its
// declared total, with fragments concatenated in ascending position order.
//
// Incomplete bundles are never emitted. They are retained in a bounded LRU
// cache rather than indefinitely, so an attacker or network flake cannot
// grow the buffer without bound.
type Reassembler struct {
	mu      sync.Mutex
	buffers *lru.Cache[trinary.Hash, *bundleBuffer]
	cfg     ReassemblerConfig

	// evicting suppresses the abandon callback while we remove a bundle
	// ourselves on completion.
	evicting bool
}

// NewReassembler creates a bounded fragment reassembler.
func NewReassembler(cfg ReassemblerConfig) (*Reassembler, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultFragmentCapacity
	}

	r := &Reassembler{cfg: cfg}
	buffers, err := lru.NewWithEvict[trinary.Hash, *bundleBuffer](cfg.Capacity, func(bundle trinary.Hash, _ *bundleBuffer) {
		if r.evicting {
			return
		}
		if cfg.OnAbandon != nil {
			cfg.OnAbandon(bundle)
		}
	})
	if err != nil {
		return nil, err
	}
	r.buffers = buffers
	return r, nil
}

// Ingest records fragments and returns the payloads of every bundle they
// complete. Arrival order is irrelevant: a duplicate position overwrites
// the earlier value without advancing the completion count, and completion
// triggers as soon as all declared positions are present.
func (r *Reassembler) Ingest(fragments ...Fragment) []trinary.Trytes {
	r.mu.Lock()
	defer r.mu.Unlock()

	var completed []trinary.Trytes
	for _, f := range fragments {
		buf, ok := r.buffers.Get(f.Bundle)
		if !ok {
			buf = &bundleBuffer{
				parts:     make(map[uint64]trinary.Trytes),
				total:     f.LastIndex + 1,
				firstSeen: time.Now(),
			}
			r.buffers.Add(f.Bundle, buf)
		}
		buf.parts[f.Index] = f.Content

		if uint64(len(buf.parts)) == buf.total {
			completed = append(completed, buf.assemble())
			r.remove(f.Bundle)
		}
	}
	return completed
}

// Abandon drops an incomplete bundle, reporting whether it was buffered.
func (r *Reassembler) Abandon(bundle trinary.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buffers.Peek(bundle); !ok {
		return false
	}
	r.remove(bundle)
	if r.cfg.OnAbandon != nil {
		r.cfg.OnAbandon(bundle)
	}
	return true
}

// Sweep abandons every incomplete bundle older than the configured MaxAge
// and returns how many were dropped. A no-op when MaxAge is zero.
func (r *Reassembler) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.MaxAge == 0 {
		return 0
	}

	var expired []trinary.Hash
	for _, bundle := range r.buffers.Keys() {
		if buf, ok := r.buffers.Peek(bundle); ok && now.Sub(buf.firstSeen) > r.cfg.MaxAge {
			expired = append(expired, bundle)
		}
	}
	for _, bundle := range expired {
		r.remove(bundle)
		if r.cfg.OnAbandon != nil {
			r.cfg.OnAbandon(bundle)
		}
	}
	return len(expired)
}

// IncompleteCount returns the number of buffered incomplete bundles.
func (r *Reassembler) IncompleteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffers.Len()
}

// remove drops a bundle without firing the eviction callback. Callers hold
// r.mu and report abandonment themselves when appropriate.
func (r *Reassembler) remove(bundle trinary.Hash) {
	r.evicting = true
	r.buffers.Remove(bundle)
	r.evicting = false
}
