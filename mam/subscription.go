package mam

import (
	"sync"
	"time"

	"github.com/iotaledger/iota.go/trinary"
	"go.uber.org/atomic"
)

// Subscription is a consumer's handle on a channel: the current chain head,
// the key material to read it, and the poll interval. The head advances as
// messages are consumed; the subscription itself is never destroyed
// automatically, the owner deactivates it.
type Subscription struct {
	mu         sync.Mutex
	root       trinary.Hash
	mode       Mode
	channelKey trinary.Trytes
	interval   time.Duration

	active atomic.Bool

	// inFlight serializes polls: a poll that would overlap an unfinished
	// one for the same subscription is skipped, never run concurrently.
	inFlight atomic.Bool
}

// DefaultPollInterval is the poll cadence when the subscriber does not
// choose one.
const DefaultPollInterval = 5 * time.Second

// NewSubscription subscribes to the channel whose chain head is root.
func NewSubscription(root trinary.Hash, mode Mode, channelKey trinary.Trytes, interval time.Duration) *Subscription {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := &Subscription{
		root:       root,
		mode:       mode,
		channelKey: channelKey,
		interval:   interval,
	}
	s.active.Store(true)
	return s
}

// Root returns the current chain head, the next root a poll fetches from.
func (s *Subscription) Root() trinary.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// AdvanceTo moves the chain head after a successful fetch.
func (s *Subscription) AdvanceTo(root trinary.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

// Mode returns the visibility mode the channel is read under.
func (s *Subscription) Mode() Mode { return s.mode }

// ChannelKey returns the side key used for decoding, if any.
func (s *Subscription) ChannelKey() trinary.Trytes { return s.channelKey }

// Interval returns the inter-poll interval.
func (s *Subscription) Interval() time.Duration { return s.interval }

// Active reports whether the subscription should still be polled. It is
// advisory for the poll driver: it gates scheduling of the next poll, not
// an in-flight fetch.
func (s *Subscription) Active() bool { return s.active.Load() }

// Deactivate stops future polls from being scheduled.
func (s *Subscription) Deactivate() { s.active.Store(false) }

// TryBeginPoll claims the subscription's single poll slot. It returns
// false when a previous poll is still in flight; the caller skips this
// cycle instead of overlapping.
func (s *Subscription) TryBeginPoll() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

// EndPoll releases the poll slot claimed by TryBeginPoll.
func (s *Subscription) EndPoll() {
	s.inFlight.Store(false)
}
