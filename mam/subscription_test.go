package mam

import (
	"sync"
	"testing"
	"time"
)

func TestSubscriptionDefaults(t *testing.T) {
	sub := NewSubscription(testRoot, ModePublic, "", 0)

	if !sub.Active() {
		t.Error("new subscriptions should be active")
	}
	if sub.Interval() != DefaultPollInterval {
		t.Errorf("expected default interval, got %v", sub.Interval())
	}
	if sub.Root() != testRoot {
		t.Errorf("expected root %s, got %s", testRoot, sub.Root())
	}
}

func TestSubscriptionAdvance(t *testing.T) {
	sub := NewSubscription(testRoot, ModePublic, "", time.Second)

	next := trytesOfLen("NEXT", 81)
	sub.AdvanceTo(next)

	if sub.Root() != next {
		t.Errorf("expected advanced root %s, got %s", next, sub.Root())
	}
}

func TestSubscriptionDeactivate(t *testing.T) {
	sub := NewSubscription(testRoot, ModeRestricted, trytesOfLen("KEY", 81), time.Second)

	sub.Deactivate()
	if sub.Active() {
		t.Error("deactivated subscription still reports active")
	}

	// Deactivation does not block an in-flight poll from finishing.
	if !sub.TryBeginPoll() {
		t.Error("poll slot should still be claimable")
	}
	sub.EndPoll()
}

func TestSubscriptionPollSlotExcludesOverlap(t *testing.T) {
	sub := NewSubscription(testRoot, ModePublic, "", time.Second)

	if !sub.TryBeginPoll() {
		t.Fatal("first claim should succeed")
	}
	if sub.TryBeginPoll() {
		t.Fatal("second claim should be rejected while the first is in flight")
	}
	sub.EndPoll()
	if !sub.TryBeginPoll() {
		t.Fatal("claim after release should succeed")
	}
	sub.EndPoll()
}

func TestSubscriptionPollSlotSingleWinner(t *testing.T) {
	sub := NewSubscription(testRoot, ModePublic, "", time.Second)

	const claimers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sub.TryBeginPoll() {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var total int
	for range wins {
		total++
	}
	if total != 1 {
		t.Errorf("expected exactly one winner, got %d", total)
	}
}
