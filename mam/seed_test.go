package mam

import (
	"testing"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
)

func TestGenerateSeed(t *testing.T) {
	first, err := GenerateSeed()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != consts.HashTrytesSize {
		t.Fatalf("expected %d trytes, got %d", consts.HashTrytesSize, len(first))
	}
	if err := trinary.ValidTrytes(first); err != nil {
		t.Fatalf("generated seed is not valid trytes: %v", err)
	}

	second, err := GenerateSeed()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two generated seeds collided")
	}
}

func TestValidSecurity(t *testing.T) {
	for _, level := range []consts.SecurityLevel{consts.SecurityLevelLow, consts.SecurityLevelMedium, consts.SecurityLevelHigh} {
		if !ValidSecurity(level) {
			t.Errorf("level %d should be valid", level)
		}
	}
	if ValidSecurity(0) {
		t.Error("level 0 should be invalid")
	}
	if ValidSecurity(4) {
		t.Error("level 4 should be invalid")
	}
}
