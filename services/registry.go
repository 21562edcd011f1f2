package services

import (
	"fmt"
	"sync"

	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/mam"
)

// inboxLimit caps buffered messages per subscription; the oldest messages
// are dropped once a consumer stops draining.
const inboxLimit = 1024

// SubscriptionEntry pairs a subscription with its poll-loop stop handle and
// a bounded inbox of messages the listener has delivered.
type SubscriptionEntry struct {
	Sub *mam.Subscription

	mu    sync.Mutex
	inbox []trinary.Trytes
	stop  func()
}

// Append buffers delivered messages, dropping the oldest past inboxLimit.
func (e *SubscriptionEntry) Append(messages ...trinary.Trytes) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inbox = append(e.inbox, messages...)
	if over := len(e.inbox) - inboxLimit; over > 0 {
		e.inbox = e.inbox[over:]
	}
}

// Drain returns and clears the buffered messages.
func (e *SubscriptionEntry) Drain() []trinary.Trytes {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.inbox
	e.inbox = nil
	return out
}

// SetStop records the poll-loop cancellation handle.
func (e *SubscriptionEntry) SetStop(stop func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stop = stop
}

func (e *SubscriptionEntry) stopPolling() {
	e.mu.Lock()
	stop := e.stop
	e.stop = nil
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// SubscriptionRegistry tracks subscriptions keyed by their subscribe-time
// root. The key is stable even as the subscription's chain head advances.
type SubscriptionRegistry struct {
	mu   sync.RWMutex
	subs map[trinary.Hash]*SubscriptionEntry
}

// NewSubscriptionRegistry creates an empty registry.
func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{
		subs: make(map[trinary.Hash]*SubscriptionEntry),
	}
}

// Add registers a subscription under its starting root.
func (r *SubscriptionRegistry) Add(key trinary.Hash, sub *mam.Subscription) (*SubscriptionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subs[key]; exists {
		return nil, fmt.Errorf("subscription for root %s already registered", key)
	}
	entry := &SubscriptionEntry{Sub: sub}
	r.subs[key] = entry
	return entry, nil
}

// Get returns the entry registered under key.
func (r *SubscriptionRegistry) Get(key trinary.Hash) (*SubscriptionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.subs[key]
	return entry, ok
}

// Roots lists the registered subscription keys.
func (r *SubscriptionRegistry) Roots() []trinary.Hash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roots := make([]trinary.Hash, 0, len(r.subs))
	for key := range r.subs {
		roots = append(roots, key)
	}
	return roots
}

// Deactivate stops polling for a subscription and reports whether it was
// registered. The entry and its buffered messages stay retrievable until
// Remove.
func (r *SubscriptionRegistry) Deactivate(key trinary.Hash) bool {
	r.mu.RLock()
	entry, ok := r.subs[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	entry.Sub.Deactivate()
	entry.stopPolling()
	return true
}

// Remove deactivates and drops a subscription.
func (r *SubscriptionRegistry) Remove(key trinary.Hash) bool {
	if !r.Deactivate(key) {
		return false
	}
	r.mu.Lock()
	delete(r.subs, key)
	r.mu.Unlock()
	return true
}
