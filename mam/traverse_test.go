package mam

import (
	"context"
	"errors"
	"testing"

	"github.com/iotaledger/iota.go/trinary"
)

// chainFetcher serves a scripted chain: each root maps to its message, and
// roots past the script yield nothing.
type chainFetcher struct {
	messages map[trinary.Hash]*Message
	calls    []trinary.Hash
	failAt   trinary.Hash
}

func (f *chainFetcher) FetchRoot(_ context.Context, root trinary.Hash) (*Message, error) {
	f.calls = append(f.calls, root)
	if root == f.failAt && f.failAt != "" {
		return nil, errors.New("node unreachable")
	}
	return f.messages[root], nil
}

// scriptChain wires n messages R0 -> R1 -> ... with payloads M0, M1, ...
// and returns the fetcher plus the root list (including the empty tail
// root Rn).
func scriptChain(n int) (*chainFetcher, []trinary.Hash) {
	roots := make([]trinary.Hash, n+1)
	for i := range roots {
		roots[i] = trytesOfLen("R"+string(rune('A'+i)), 81)
	}

	f := &chainFetcher{messages: make(map[trinary.Hash]*Message)}
	for i := 0; i < n; i++ {
		f.messages[roots[i]] = &Message{
			Payload:  trytesOfLen("M"+string(rune('A'+i)), 27),
			Root:     roots[i],
			NextRoot: roots[i+1],
		}
	}
	return f, roots
}

func TestTraverseDrainsChain(t *testing.T) {
	f, roots := scriptChain(3)

	result, err := Traverse(context.Background(), f, roots[0], TraverseOpts{})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(result.Messages))
	}
	for i, msg := range result.Messages {
		if msg != f.messages[roots[i]].Payload {
			t.Errorf("message %d out of order: %s", i, msg)
		}
	}
	if result.LastRoot != roots[3] {
		t.Errorf("expected resumption root %s, got %s", roots[3], result.LastRoot)
	}
}

func TestTraverseEmptyChain(t *testing.T) {
	f, roots := scriptChain(0)

	result, err := Traverse(context.Background(), f, roots[0], TraverseOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(result.Messages))
	}
	if result.LastRoot != roots[0] {
		t.Errorf("expected the start root back, got %s", result.LastRoot)
	}
}

func TestTraverseResumesFromLastRoot(t *testing.T) {
	f, roots := scriptChain(2)

	first, err := Traverse(context.Background(), f, roots[0], TraverseOpts{})
	if err != nil {
		t.Fatal(err)
	}

	// Publish one more message behind the resumption root.
	extra := trytesOfLen("EXTRA", 81)
	f.messages[first.LastRoot] = &Message{
		Payload:  "NEWPAYLOAD",
		Root:     first.LastRoot,
		NextRoot: extra,
	}

	second, err := Traverse(context.Background(), f, first.LastRoot, TraverseOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Messages) != 1 || second.Messages[0] != "NEWPAYLOAD" {
		t.Fatalf("expected only the new message, got %v", second.Messages)
	}
	if second.LastRoot != extra {
		t.Errorf("expected resumption root %s, got %s", extra, second.LastRoot)
	}
}

func TestTraversePartialResultOnFailure(t *testing.T) {
	f, roots := scriptChain(3)
	f.failAt = roots[2]

	result, err := Traverse(context.Background(), f, roots[0], TraverseOpts{})
	if err == nil {
		t.Fatal("expected a traversal error")
	}
	var travErr *TraversalError
	if !errors.As(err, &travErr) {
		t.Fatalf("expected *TraversalError, got %T", err)
	}
	if travErr.Root != roots[2] {
		t.Errorf("error should carry the failing root, got %s", travErr.Root)
	}

	// Everything before the failure is retained.
	if len(result.Messages) != 2 {
		t.Errorf("expected 2 messages before failure, got %d", len(result.Messages))
	}
	if result.LastRoot != roots[2] {
		t.Errorf("resumption root should be the failing root, got %s", result.LastRoot)
	}
}

func TestTraverseMaxMessages(t *testing.T) {
	f, roots := scriptChain(5)

	result, err := Traverse(context.Background(), f, roots[0], TraverseOpts{MaxMessages: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result.Messages))
	}
	if result.LastRoot != roots[2] {
		t.Errorf("expected resumption at %s, got %s", roots[2], result.LastRoot)
	}
	if len(f.calls) != 2 {
		t.Errorf("expected exactly 2 fetches, got %d", len(f.calls))
	}
}

func TestTraverseOnMessageCallback(t *testing.T) {
	f, roots := scriptChain(3)

	var streamed []trinary.Trytes
	result, err := Traverse(context.Background(), f, roots[0], TraverseOpts{
		OnMessage: func(payload trinary.Trytes) { streamed = append(streamed, payload) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(streamed) != len(result.Messages) {
		t.Fatalf("callback saw %d messages, result has %d", len(streamed), len(result.Messages))
	}
	for i := range streamed {
		if streamed[i] != result.Messages[i] {
			t.Errorf("callback order diverges at %d", i)
		}
	}
}

func TestTraverseCancelledContext(t *testing.T) {
	f, roots := scriptChain(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Traverse(ctx, f, roots[0], TraverseOpts{})
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in the chain, got %v", err)
	}
	if len(result.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(result.Messages))
	}
	if len(f.calls) != 0 {
		t.Errorf("cancelled traversal still fetched %d roots", len(f.calls))
	}
}

func TestTraverserSequentialFetches(t *testing.T) {
	f, roots := scriptChain(2)

	tr := NewTraverser(f, roots[0])
	for i := 0; i < 2; i++ {
		msg, err := tr.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if msg == nil {
			t.Fatalf("chain ended early at %d", i)
		}
		if msg.Root != roots[i] {
			t.Errorf("step %d fetched %s, want %s", i, msg.Root, roots[i])
		}
		// The successor is only known now.
		if tr.Root() != roots[i+1] {
			t.Errorf("step %d advanced to %s, want %s", i, tr.Root(), roots[i+1])
		}
	}

	msg, err := tr.Next(context.Background())
	if err != nil || msg != nil {
		t.Fatalf("expected clean end of chain, got %v, %v", msg, err)
	}
	// Exhausted iterators stay exhausted.
	msg, err = tr.Next(context.Background())
	if err != nil || msg != nil {
		t.Fatalf("expected exhausted iterator to stay nil, got %v, %v", msg, err)
	}
}
