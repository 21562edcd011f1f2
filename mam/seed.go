package mam

import (
	"crypto/rand"
	"fmt"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
)

const tryteAlphabet = "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateSeed returns a cryptographically random 81-tryte seed. The seed
// is the source of all of a channel's signing material and must never be
// transmitted.
func GenerateSeed() (trinary.Trytes, error) {
	seed := make([]byte, consts.HashTrytesSize)
	buf := make([]byte, 1)
	for i := 0; i < len(seed); {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("seed generation: %w", err)
		}
		// Rejection sampling keeps the 27-letter alphabet uniform.
		if buf[0] >= 243 {
			continue
		}
		seed[i] = tryteAlphabet[int(buf[0])%len(tryteAlphabet)]
		i++
	}
	return trinary.Trytes(seed), nil
}

// ValidSecurity reports whether level is a valid signature security level.
func ValidSecurity(level consts.SecurityLevel) bool {
	return level >= consts.SecurityLevelLow && level <= consts.SecurityLevelHigh
}
