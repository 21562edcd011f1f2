package mam

import (
	"context"

	"github.com/iotaledger/iota.go/trinary"
)

// MaskedPayload is the codec's output for one publication.
type MaskedPayload struct {
	// Payload is the masked, attachment-ready message.
	Payload trinary.Trytes

	// Root is the channel root the message is anchored at.
	Root trinary.Hash

	// NextRoot is the root of the following publication point.
	NextRoot trinary.Hash
}

// UnmaskedMessage is the codec's output for one decoded payload.
type UnmaskedMessage struct {
	// Message is the unmasked message content.
	Message trinary.Trytes

	// NextRoot is the successor pointer extracted from the payload.
	NextRoot trinary.Hash
}

// Codec is the masking/authentication black box that produces and parses
// message payloads. Implementations must be deterministic given identical
// state. This package only does the protocol bookkeeping around it.
type Codec interface {
	// CreateMessage masks a message for the channel position described by
	// state, returning the payload together with the current root and the
	// successor root it embeds. It must not mutate state.
	CreateMessage(seed trinary.Trytes, message trinary.Trytes, sideKey trinary.Trytes, state *ChannelState) (*MaskedPayload, error)

	// DecodeMessage unmasks a payload found at root using the channel key.
	DecodeMessage(payload trinary.Trytes, sideKey trinary.Trytes, root trinary.Hash) (*UnmaskedMessage, error)

	// Root projects the current seed and cursor into the channel root
	// without mutating state.
	Root(seed trinary.Trytes, state *ChannelState) (trinary.Hash, error)
}

// Message is one consumed channel message.
type Message struct {
	// Payload is the unmasked message content.
	Payload trinary.Trytes

	// Root is the address the message was found at.
	Root trinary.Hash

	// NextRoot is the address of the following message.
	NextRoot trinary.Hash
}

// Fetcher retrieves and decodes the message anchored at a single root.
// A (nil, nil) return means the root holds nothing decodable, which
// terminates a chain traversal.
type Fetcher interface {
	FetchRoot(ctx context.Context, root trinary.Hash) (*Message, error)
}
