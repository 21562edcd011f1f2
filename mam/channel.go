package mam

import (
	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
)

// ChannelState is the publisher's channel session: the secret seed, the
// visibility configuration and the merkle-tree cursor. It is owned
// exclusively by the publishing session and never transmitted.
//
// The cursor invariant 0 <= Index < Count holds at all times; each leaf
// index is consumed by at most one publication.
type ChannelState struct {
	// Seed is the secret tryte seed all signing material derives from.
	Seed trinary.Trytes

	// Security is the signature security level (1-3).
	Security consts.SecurityLevel

	// SideKey is the pre-shared key, padded to SideKeyLength trytes.
	// Required in restricted mode, optional in private, unused in public.
	SideKey trinary.Trytes

	// Mode is the channel visibility mode.
	Mode Mode

	// Start is the index of the first leaf of the active merkle subtree.
	// Monotonically non-decreasing.
	Start uint64

	// Count is the number of leaves in the active subtree.
	Count uint64

	// NextCount is the size reserved for the subtree that follows.
	NextCount uint64

	// Index is the cursor within [0, Count-1] marking the next unused leaf.
	Index uint64

	// NextRoot caches the most recently emitted successor pointer.
	// Informational only.
	NextRoot trinary.Hash
}

// NewChannelState creates a public channel session over seed with a
// single-leaf subtree window.
func NewChannelState(seed trinary.Trytes, security consts.SecurityLevel) ChannelState {
	return ChannelState{
		Seed:      seed,
		Security:  security,
		Mode:      ModePublic,
		Count:     1,
		NextCount: 1,
	}
}

// Advance moves the cursor past the leaf consumed by a publication and
// returns the successor state. When the active subtree is exhausted the
// window shifts to the next subtree and the cursor resets to its first
// leaf. Deterministic and total; callers invoke it exactly once per
// successful publication, never speculatively.
func (s ChannelState) Advance() ChannelState {
	if s.Index == s.Count-1 {
		s.Start += s.NextCount
		s.Index = 0
	} else {
		s.Index++
	}
	return s
}

// WithMode returns a copy of s switched to the given visibility mode with
// the side key padded to SideKeyLength. Restricted mode without a side key
// is a configuration error; s is returned unchanged alongside the error.
func (s ChannelState) WithMode(mode Mode, sideKey trinary.Trytes) (ChannelState, error) {
	if !mode.Valid() {
		return s, &ConfigurationError{Field: "mode", Reason: "not one of public, private, restricted"}
	}
	if mode == ModeRestricted && sideKey == "" {
		return s, &ConfigurationError{Field: "sideKey", Reason: "restricted mode requires a side key"}
	}
	padded, err := PadSideKey(sideKey)
	if err != nil {
		return s, err
	}
	s.Mode = mode
	s.SideKey = padded
	return s, nil
}
