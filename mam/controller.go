package mam

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/curl"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/ledger"
)

const (
	// DefaultDepth is the tip-selection depth for attach.
	DefaultDepth = 3

	// DefaultMinWeightMagnitude is the proof-of-work difficulty for attach.
	DefaultMinWeightMagnitude = 9
)

// nullSeed anchors zero-value bundles; it signs nothing.
var nullSeed = trinary.Trytes(strings.Repeat("9", consts.HashTrytesSize))

// attachTag marks mamgo attachments on the tangle.
var attachTag = trinary.MustPad("MAMGO", 27)

// ControllerConfig wires a Controller's collaborators. Codec and Ledger are
// injected here rather than read from process globals, so multiple
// independent channel sessions can coexist.
type ControllerConfig struct {
	// Codec is the masking/authentication black box.
	Codec Codec

	// Ledger is the tangle-node client.
	Ledger ledger.Client

	// Log receives structured diagnostics. Defaults to slog.Default().
	Log *slog.Logger

	// HashRounds is the Curl round count for address derivation. Must
	// match the codec's. Defaults to DefaultHashRounds.
	HashRounds curl.CurlRounds

	// Depth is the default tip-selection depth for Attach.
	Depth uint64

	// MinWeightMagnitude is the default proof-of-work difficulty for
	// Attach.
	MinWeightMagnitude uint64

	// Fragments configures the bounded fragment-reassembly cache.
	Fragments ReassemblerConfig
}

// Controller composes the channel state tracker, address deriver, fragment
// reassembler and chain traversal with the external codec and ledger
// client.
type Controller struct {
	codec  Codec
	ledger ledger.Client
	log    *slog.Logger
	rounds curl.CurlRounds
	depth  uint64
	mwm    uint64
	reasm  *Reassembler
}

// NewController creates a channel controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Codec == nil {
		return nil, errors.New("mam: controller requires a codec")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("mam: controller requires a ledger client")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.HashRounds == 0 {
		cfg.HashRounds = DefaultHashRounds
	}
	if cfg.Depth == 0 {
		cfg.Depth = DefaultDepth
	}
	if cfg.MinWeightMagnitude == 0 {
		cfg.MinWeightMagnitude = DefaultMinWeightMagnitude
	}

	reasm, err := NewReassembler(cfg.Fragments)
	if err != nil {
		return nil, err
	}

	return &Controller{
		codec:  cfg.Codec,
		ledger: cfg.Ledger,
		log:    cfg.Log,
		rounds: cfg.HashRounds,
		depth:  cfg.Depth,
		mwm:    cfg.MinWeightMagnitude,
		reasm:  reasm,
	}, nil
}

// CreateResult is the outcome of masking one message.
type CreateResult struct {
	// State is the successor channel state with the cursor advanced past
	// the consumed leaf.
	State ChannelState

	// Payload is the masked, attachment-ready message.
	Payload trinary.Trytes

	// Root is the pre-advance channel root the message is anchored at.
	Root trinary.Hash

	// Address is the ledger attachment address derived from Root under
	// the channel's visibility mode.
	Address trinary.Hash
}

// Create masks a message for the channel's current position and advances
// the cursor. The attachment address is derived from the pre-advance root;
// the returned state must replace the caller's copy so the consumed leaf is
// never reused.
func (c *Controller) Create(state ChannelState, message trinary.Trytes) (*CreateResult, error) {
	masked, err := c.codec.CreateMessage(state.Seed, message, state.SideKey, &state)
	if err != nil {
		return nil, err
	}

	address, err := DeriveAddress(masked.Root, state.Mode, c.rounds)
	if err != nil {
		return nil, err
	}

	next := state.Advance()
	next.NextRoot = masked.NextRoot

	return &CreateResult{
		State:   next,
		Payload: masked.Payload,
		Root:    masked.Root,
		Address: address,
	}, nil
}

// Root projects the channel state into its current root without mutation.
func (c *Controller) Root(state *ChannelState) (trinary.Hash, error) {
	return c.codec.Root(state.Seed, state)
}

// Decode unmasks a single payload found at root.
func (c *Controller) Decode(payload trinary.Trytes, sideKey trinary.Trytes, root trinary.Hash) (*UnmaskedMessage, error) {
	msg, err := c.codec.DecodeMessage(payload, sideKey, root)
	if err != nil {
		return nil, &DecodeError{Root: root, Err: err}
	}
	return msg, nil
}

// Attach submits a masked payload to the tangle as a zero-value transfer at
// the given address. Zero depth or mwm fall back to the controller
// defaults. Submission failures are fatal and wrapped as SubmissionError.
func (c *Controller) Attach(ctx context.Context, payload trinary.Trytes, address trinary.Hash, depth, mwm uint64) error {
	if depth == 0 {
		depth = c.depth
	}
	if mwm == 0 {
		mwm = c.mwm
	}

	transfers := []ledger.Transfer{{
		Address: address,
		Value:   0,
		Message: payload,
		Tag:     attachTag,
	}}

	raw, err := c.ledger.PrepareTransfers(ctx, nullSeed, transfers, ledger.PrepareTransfersOptions{
		Security: consts.SecurityLevelMedium,
	})
	if err != nil {
		return &SubmissionError{Op: "prepareTransfers", Err: err}
	}

	txs, err := c.ledger.SendTrytes(ctx, raw, depth, mwm)
	if err != nil {
		return &SubmissionError{Op: "sendTrytes", Err: err}
	}

	c.log.Info("attached payload", "address", address, "transactions", len(txs))
	return nil
}

// Fetcher returns a Fetcher reading the channel under the given visibility
// mode and key. The fetcher shares the controller's bounded fragment cache,
// so fragments that straggle across polls still complete.
func (c *Controller) Fetcher(mode Mode, sideKey trinary.Trytes) Fetcher {
	return &channelFetcher{c: c, mode: mode, sideKey: sideKey}
}

// Fetch drains the message chain starting at root. Decoded payloads are
// returned in chain order; onMessage, when non-nil, streams them as they
// arrive. The result's LastRoot resumes the chain on a later call.
func (c *Controller) Fetch(ctx context.Context, root trinary.Hash, mode Mode, sideKey trinary.Trytes, onMessage func(trinary.Trytes)) (*TraverseResult, error) {
	return Traverse(ctx, c.Fetcher(mode, sideKey), root, TraverseOpts{OnMessage: onMessage})
}

// FetchSingle retrieves exactly one message at root without following the
// chain. A (nil, nil) return means the root holds nothing decodable.
func (c *Controller) FetchSingle(ctx context.Context, root trinary.Hash, mode Mode, sideKey trinary.Trytes) (*Message, error) {
	return c.Fetcher(mode, sideKey).FetchRoot(ctx, root)
}

// SweepFragments abandons incomplete bundles older than the configured
// fragment max age and returns how many were dropped.
func (c *Controller) SweepFragments(now time.Time) int {
	return c.reasm.Sweep(now)
}

// IncompleteBundles returns the number of buffered incomplete bundles.
func (c *Controller) IncompleteBundles() int {
	return c.reasm.IncompleteCount()
}

type channelFetcher struct {
	c       *Controller
	mode    Mode
	sideKey trinary.Trytes
}

// FetchRoot retrieves and decodes the message anchored at a single root.
// Undecodable bundles are logged and skipped; only a ledger failure is an
// error.
func (f *channelFetcher) FetchRoot(ctx context.Context, root trinary.Hash) (*Message, error) {
	c := f.c

	address, err := DeriveAddress(root, f.mode, c.rounds)
	if err != nil {
		return nil, err
	}

	hashes, err := c.ledger.FindTransactions(ctx, []trinary.Hash{address})
	if err != nil {
		return nil, err
	}
	if len(hashes) == 0 {
		return nil, nil
	}

	txs, err := c.ledger.GetTransactionObjects(ctx, hashes...)
	if err != nil {
		return nil, err
	}

	fragments := make([]Fragment, 0, len(txs))
	for _, tx := range txs {
		fragments = append(fragments, Fragment{
			Bundle:    tx.Bundle,
			Index:     tx.CurrentIndex,
			LastIndex: tx.LastIndex,
			Content:   tx.SignatureMessageFragment,
		})
	}

	for _, payload := range c.reasm.Ingest(fragments...) {
		unmasked, err := c.codec.DecodeMessage(payload, f.sideKey, root)
		if err != nil {
			c.log.Debug("skipping undecodable bundle", "root", root, "err", err)
			continue
		}
		return &Message{
			Payload:  unmasked.Message,
			Root:     root,
			NextRoot: unmasked.NextRoot,
		}, nil
	}
	return nil, nil
}
