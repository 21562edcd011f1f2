package mam

import (
	"fmt"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
)

// Mode is the channel visibility mode. It governs whether a channel's
// attachment addresses are derivable from the root directly (public) or only
// via key material (private/restricted).
type Mode int

const (
	ModePublic Mode = iota
	ModePrivate
	ModeRestricted
)

// SideKeyLength is the fixed side-key length in trytes. Shorter keys are
// right-padded with '9'.
const SideKeyLength = consts.HashTrytesSize

// ParseMode converts a mode string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "public":
		return ModePublic, nil
	case "private":
		return ModePrivate, nil
	case "restricted":
		return ModeRestricted, nil
	}
	return 0, &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}

func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModePrivate:
		return "private"
	case ModeRestricted:
		return "restricted"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the three channel modes.
func (m Mode) Valid() bool {
	return m == ModePublic || m == ModePrivate || m == ModeRestricted
}

// PadSideKey validates a side key and right-pads it with '9' to
// SideKeyLength trytes. An empty key stays empty.
func PadSideKey(key trinary.Trytes) (trinary.Trytes, error) {
	if key == "" {
		return "", nil
	}
	if err := trinary.ValidTrytes(key); err != nil {
		return "", &ConfigurationError{Field: "sideKey", Reason: "not a tryte string"}
	}
	if len(key) > SideKeyLength {
		return "", &ConfigurationError{Field: "sideKey", Reason: fmt.Sprintf("longer than %d trytes", SideKeyLength)}
	}
	return trinary.MustPad(key, SideKeyLength), nil
}
