package mam

import (
	"context"

	"github.com/iotaledger/iota.go/trinary"
)

// Traverser is a pull iterator over a message chain. Root n+1 is never
// known, and hence never fetched, until root n's message has been decoded,
// so consumption is strictly sequential by construction.
//
// Stopping iteration is the cancellation mechanism: a Traverser holds no
// resources between calls, and Root is always a valid resumption point for
// a later Traverser.
type Traverser struct {
	fetcher Fetcher
	root    trinary.Hash
	done    bool
}

// NewTraverser starts a traversal at the given chain head.
func NewTraverser(fetcher Fetcher, start trinary.Hash) *Traverser {
	return &Traverser{fetcher: fetcher, root: start}
}

// Next fetches and decodes the message at the current root and advances to
// its successor. It returns (nil, nil) once the chain is exhausted. A fetch
// failure is returned as a TraversalError and ends iteration; the caller
// must treat whatever it consumed so far as possibly partial.
func (t *Traverser) Next(ctx context.Context) (*Message, error) {
	if t.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &TraversalError{Root: t.root, Err: err}
	}

	msg, err := t.fetcher.FetchRoot(ctx, t.root)
	if err != nil {
		t.done = true
		return nil, &TraversalError{Root: t.root, Err: err}
	}
	if msg == nil {
		t.done = true
		return nil, nil
	}

	t.root = msg.NextRoot
	return msg, nil
}

// Root returns the next root to be fetched. After the chain is exhausted it
// is the resumption point for a subsequent traversal, e.g. for polling.
func (t *Traverser) Root() trinary.Hash {
	return t.root
}

// TraverseResult is the outcome of draining a chain.
type TraverseResult struct {
	// Messages holds the decoded payloads in chain order.
	Messages []trinary.Trytes

	// LastRoot is the first root that yielded nothing; fetching from it
	// later resumes the chain.
	LastRoot trinary.Hash
}

// TraverseOpts bounds a traversal.
type TraverseOpts struct {
	// MaxMessages stops the walk after this many messages when positive.
	// A chain is in principle unbounded (or even cyclic); this is the
	// caller's external bound.
	MaxMessages int

	// OnMessage, if set, is invoked synchronously with each decoded
	// payload as it is consumed.
	OnMessage func(trinary.Trytes)
}

// Traverse drains the chain starting at start and returns the decoded
// payloads together with the resumption root. On a fetch failure the
// accumulated partial result is returned alongside the TraversalError.
func Traverse(ctx context.Context, fetcher Fetcher, start trinary.Hash, opts TraverseOpts) (*TraverseResult, error) {
	t := NewTraverser(fetcher, start)
	result := &TraverseResult{LastRoot: start}

	for {
		msg, err := t.Next(ctx)
		if err != nil {
			result.LastRoot = t.Root()
			return result, err
		}
		if msg == nil {
			result.LastRoot = t.Root()
			return result, nil
		}

		result.Messages = append(result.Messages, msg.Payload)
		if opts.OnMessage != nil {
			opts.OnMessage(msg.Payload)
		}
		if opts.MaxMessages > 0 && len(result.Messages) >= opts.MaxMessages {
			result.LastRoot = t.Root()
			return result, nil
		}
	}
}
