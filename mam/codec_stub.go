package mam

import (
	"errors"
	"fmt"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/curl"
	"github.com/iotaledger/iota.go/trinary"
)

// stubMACLength is the authenticator length in trytes.
const stubMACLength = 9

// StubCodec is a deterministic stand-in for the masking codec, usable for
// development deployments and tests. Roots are Curl digests of the seed and
// tree position, payloads carry the successor root and a short keyed
// authenticator in the clear.
//
// It exercises the full codec contract (deterministic roots, nextRoot
// extraction, keyed decode failure) but provides none of the masking
// cryptography; do not publish sensitive content through it.
type StubCodec struct {
	// Rounds is the Curl round count, matching the address deriver's.
	Rounds curl.CurlRounds
}

// NewStubCodec creates a stub codec with the default Curl rounds.
func NewStubCodec() *StubCodec {
	return &StubCodec{Rounds: DefaultHashRounds}
}

// Root derives the channel root for the state's current tree position.
func (s *StubCodec) Root(seed trinary.Trytes, state *ChannelState) (trinary.Hash, error) {
	if len(seed) != consts.HashTrytesSize {
		return "", fmt.Errorf("stub codec: seed is %d trytes, want %d", len(seed), consts.HashTrytesSize)
	}
	seedTrits, err := trinary.TrytesToTrits(seed)
	if err != nil {
		return "", err
	}
	position := trinary.MustPadTrits(trinary.IntToTrits(int64(state.Start+state.Index)), consts.HashTrinarySize)

	c := curl.NewCurl(s.Rounds)
	if err := c.Absorb(seedTrits); err != nil {
		return "", err
	}
	if err := c.Absorb(position); err != nil {
		return "", err
	}
	digest, err := c.Squeeze(consts.HashTrinarySize)
	if err != nil {
		return "", err
	}
	return trinary.MustTritsToTrytes(digest), nil
}

// CreateMessage assembles a payload carrying the successor root, the
// message and a keyed authenticator. The key is the side key when present,
// the current root otherwise.
func (s *StubCodec) CreateMessage(seed trinary.Trytes, message trinary.Trytes, sideKey trinary.Trytes, state *ChannelState) (*MaskedPayload, error) {
	if err := trinary.ValidTrytes(message); err != nil {
		return nil, fmt.Errorf("stub codec: message is not trytes: %w", err)
	}

	root, err := s.Root(seed, state)
	if err != nil {
		return nil, err
	}
	next := state.Advance()
	nextRoot, err := s.Root(seed, &next)
	if err != nil {
		return nil, err
	}

	key := sideKey
	if key == "" {
		key = root
	}
	mac, err := s.authenticator(key, nextRoot, message)
	if err != nil {
		return nil, err
	}

	return &MaskedPayload{
		Payload:  nextRoot + message + mac,
		Root:     root,
		NextRoot: nextRoot,
	}, nil
}

// DecodeMessage splits a payload back into message and successor root,
// rejecting it when the authenticator does not match the key.
func (s *StubCodec) DecodeMessage(payload trinary.Trytes, sideKey trinary.Trytes, root trinary.Hash) (*UnmaskedMessage, error) {
	if len(payload) < consts.HashTrytesSize+stubMACLength {
		return nil, errors.New("stub codec: payload too short")
	}

	nextRoot := trinary.Hash(payload[:consts.HashTrytesSize])
	message := payload[consts.HashTrytesSize : len(payload)-stubMACLength]
	mac := payload[len(payload)-stubMACLength:]

	key := sideKey
	if key == "" {
		key = root
	}
	want, err := s.authenticator(key, nextRoot, message)
	if err != nil {
		return nil, err
	}
	if mac != want {
		return nil, errors.New("stub codec: authentication failed")
	}

	return &UnmaskedMessage{Message: message, NextRoot: nextRoot}, nil
}

// authenticator squeezes a short keyed digest over the payload contents.
func (s *StubCodec) authenticator(key trinary.Trytes, nextRoot trinary.Hash, message trinary.Trytes) (trinary.Trytes, error) {
	combined := key + nextRoot + message
	padded := trinary.MustPad(combined, ((len(combined)+consts.HashTrytesSize-1)/consts.HashTrytesSize)*consts.HashTrytesSize)

	trits, err := trinary.TrytesToTrits(padded)
	if err != nil {
		return "", err
	}
	c := curl.NewCurl(s.Rounds)
	if err := c.Absorb(trits); err != nil {
		return "", err
	}
	digest, err := c.Squeeze(consts.HashTrinarySize)
	if err != nil {
		return "", err
	}
	return trinary.MustTritsToTrytes(digest)[:stubMACLength], nil
}
