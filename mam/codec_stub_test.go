package mam

import (
	"strings"
	"testing"

	"github.com/iotaledger/iota.go/consts"
)

var stubSeed = trytesOfLen("STUBSEED", 81)

func TestStubCodecRootDeterministic(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)

	first, err := codec.Root(stubSeed, &state)
	if err != nil {
		t.Fatal(err)
	}
	second, err := codec.Root(stubSeed, &state)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("root derivation is not deterministic")
	}
	if len(first) != consts.HashTrytesSize {
		t.Errorf("expected %d-tryte root, got %d", consts.HashTrytesSize, len(first))
	}
}

func TestStubCodecRootDependsOnPosition(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)

	atLeaf0, err := codec.Root(stubSeed, &state)
	if err != nil {
		t.Fatal(err)
	}
	moved := state
	moved.Start = 5
	atLeaf5, err := codec.Root(stubSeed, &moved)
	if err != nil {
		t.Fatal(err)
	}
	if atLeaf0 == atLeaf5 {
		t.Error("different tree positions should yield different roots")
	}
}

func TestStubCodecRoundtrip(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)
	message := trytesOfLen("HELLO", 120)

	masked, err := codec.CreateMessage(stubSeed, message, "", &state)
	if err != nil {
		t.Fatal(err)
	}
	if masked.Root == masked.NextRoot {
		t.Error("successor root should differ from the current root")
	}
	if !strings.HasPrefix(string(masked.Payload), string(masked.NextRoot)) {
		t.Error("payload should carry the successor root")
	}

	unmasked, err := codec.DecodeMessage(masked.Payload, "", masked.Root)
	if err != nil {
		t.Fatal(err)
	}
	if unmasked.Message != message {
		t.Errorf("roundtrip lost the message: got %s", unmasked.Message)
	}
	if unmasked.NextRoot != masked.NextRoot {
		t.Errorf("roundtrip lost the successor root: got %s", unmasked.NextRoot)
	}
}

func TestStubCodecRoundtripWithSideKey(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)
	sideKey := trytesOfLen("SECRET", 81)
	message := trytesOfLen("PAYLOAD", 90)

	masked, err := codec.CreateMessage(stubSeed, message, sideKey, &state)
	if err != nil {
		t.Fatal(err)
	}

	unmasked, err := codec.DecodeMessage(masked.Payload, sideKey, masked.Root)
	if err != nil {
		t.Fatal(err)
	}
	if unmasked.Message != message {
		t.Errorf("roundtrip lost the message: got %s", unmasked.Message)
	}
}

func TestStubCodecWrongKeyFails(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)
	sideKey := trytesOfLen("SECRET", 81)

	masked, err := codec.CreateMessage(stubSeed, trytesOfLen("MSG", 30), sideKey, &state)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := codec.DecodeMessage(masked.Payload, trytesOfLen("WRONG", 81), masked.Root); err == nil {
		t.Error("decode with the wrong side key should fail")
	}
	if _, err := codec.DecodeMessage(masked.Payload, "", masked.Root); err == nil {
		t.Error("decode without the side key should fail")
	}
}

func TestStubCodecRejectsShortPayload(t *testing.T) {
	codec := NewStubCodec()
	if _, err := codec.DecodeMessage("TOOSHORT", "", testRoot); err == nil {
		t.Error("expected an error for an undersized payload")
	}
}

func TestStubCodecRejectsNonTryteMessage(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)
	if _, err := codec.CreateMessage(stubSeed, "not trytes!", "", &state); err == nil {
		t.Error("expected an error for a non-tryte message")
	}
}

func TestStubCodecChainLinks(t *testing.T) {
	codec := NewStubCodec()
	state := NewChannelState(stubSeed, consts.SecurityLevelMedium)

	first, err := codec.CreateMessage(stubSeed, trytesOfLen("FIRST", 30), "", &state)
	if err != nil {
		t.Fatal(err)
	}

	next := state.Advance()
	second, err := codec.CreateMessage(stubSeed, trytesOfLen("SECOND", 30), "", &next)
	if err != nil {
		t.Fatal(err)
	}

	// Message n's advertised successor is message n+1's root.
	if first.NextRoot != second.Root {
		t.Errorf("chain broken: nextRoot %s, successor root %s", first.NextRoot, second.Root)
	}
}
