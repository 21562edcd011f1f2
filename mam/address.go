package mam

import (
	"fmt"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/curl"
	"github.com/iotaledger/iota.go/trinary"
)

// DefaultHashRounds is the Curl round count used for address derivation.
// It must match whatever the codec used when constructing the message, or
// lookups will silently miss.
const DefaultHashRounds = curl.CurlP81

// DeriveAddress maps a channel root to its ledger attachment address.
//
// In public mode the root already serves as the attachment point and is
// returned unchanged. In private and restricted modes the address is the
// Curl hash of the root, so the address reveals nothing about the root to
// anyone without the key material.
func DeriveAddress(root trinary.Hash, mode Mode, rounds ...curl.CurlRounds) (trinary.Hash, error) {
	if len(root) != consts.HashTrytesSize {
		return "", fmt.Errorf("%w: root is %d trytes, want %d", ErrInvalidAddress, len(root), consts.HashTrytesSize)
	}
	if err := trinary.ValidTrytes(root); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if mode == ModePublic {
		return root, nil
	}

	r := DefaultHashRounds
	if len(rounds) > 0 {
		r = rounds[0]
	}

	c := curl.NewCurl(r)
	if err := c.Absorb(trinary.MustTrytesToTrits(root)); err != nil {
		return "", err
	}
	digest, err := c.Squeeze(consts.HashTrinarySize)
	if err != nil {
		return "", err
	}
	return trinary.MustTritsToTrytes(digest), nil
}
