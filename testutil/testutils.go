package testutil

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/ledger"
	"github.com/tanglekit/mamgo/mam"
)

const tryteAlphabet = "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// fragmentSize is the payload share per scripted transaction. Small on
// purpose so every test message spans several fragments.
const fragmentSize = 81

// RandomTrytes returns n random trytes.
func RandomTrytes(n int) trinary.Trytes {
	buf := make([]byte, n)
	rand.Read(buf)
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = tryteAlphabet[int(b)%len(tryteAlphabet)]
	}
	return trinary.Trytes(out)
}

// RandomHash returns a random 81-tryte hash.
func RandomHash() trinary.Hash {
	return RandomTrytes(consts.HashTrytesSize)
}

// StateOption mutates a test channel state.
type StateOption func(*mam.ChannelState)

// WithSubtree positions the merkle cursor.
func WithSubtree(start, count, index uint64) StateOption {
	return func(s *mam.ChannelState) {
		s.Start = start
		s.Count = count
		s.Index = index
	}
}

// WithNextCount sets the size reserved for the following subtree.
func WithNextCount(n uint64) StateOption {
	return func(s *mam.ChannelState) {
		s.NextCount = n
	}
}

// TestChannelState builds a public channel state over a random seed.
func TestChannelState(options ...StateOption) mam.ChannelState {
	state := mam.NewChannelState(RandomTrytes(consts.HashTrytesSize), consts.SecurityLevelMedium)
	for _, opt := range options {
		opt(&state)
	}
	return state
}

// ScriptedTangle is an in-memory tangle pre-populated with a message chain
// published through the stub codec. Its Client serves the chain through
// the ledger mock, so controller fetch paths run end to end without a
// node.
type ScriptedTangle struct {
	// Roots holds the chain roots in publication order; Roots[len-1] is
	// the first unpublished root.
	Roots []trinary.Hash

	// Messages holds the published message contents in chain order.
	Messages []trinary.Trytes

	txsByAddress map[trinary.Hash][]ledger.Transaction
	txByHash     map[trinary.Hash]ledger.Transaction
}

// PublishChain publishes n messages on a fresh channel and returns the
// scripted tangle serving them.
func PublishChain(codec *mam.StubCodec, mode mam.Mode, sideKey trinary.Trytes, n int) (*ScriptedTangle, error) {
	st := &ScriptedTangle{
		txsByAddress: make(map[trinary.Hash][]ledger.Transaction),
		txByHash:     make(map[trinary.Hash]ledger.Transaction),
	}

	state := TestChannelState()
	state, err := state.WithMode(mode, sideKey)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		message := RandomTrytes(200)
		masked, err := codec.CreateMessage(state.Seed, message, state.SideKey, &state)
		if err != nil {
			return nil, err
		}
		address, err := mam.DeriveAddress(masked.Root, mode)
		if err != nil {
			return nil, err
		}

		st.Roots = append(st.Roots, masked.Root)
		st.Messages = append(st.Messages, message)
		st.addBundle(address, masked.Payload)

		state = state.Advance()
		state.NextRoot = masked.NextRoot
	}

	// The resumption point after draining the chain.
	root, err := codec.Root(state.Seed, &state)
	if err != nil {
		return nil, err
	}
	st.Roots = append(st.Roots, root)
	return st, nil
}

// addBundle splits a payload into fragment transactions under one bundle.
func (st *ScriptedTangle) addBundle(address trinary.Hash, payload trinary.Trytes) {
	bundle := RandomHash()
	var parts []trinary.Trytes
	for len(payload) > fragmentSize {
		parts = append(parts, payload[:fragmentSize])
		payload = payload[fragmentSize:]
	}
	parts = append(parts, payload)

	for i, part := range parts {
		tx := ledger.Transaction{
			Hash:                     RandomHash(),
			Address:                  address,
			Bundle:                   bundle,
			SignatureMessageFragment: part,
			CurrentIndex:             uint64(i),
			LastIndex:                uint64(len(parts) - 1),
		}
		st.txsByAddress[address] = append(st.txsByAddress[address], tx)
		st.txByHash[tx.Hash] = tx
	}
}

// Client returns a mock ledger client serving the scripted tangle.
func (st *ScriptedTangle) Client() *ledger.MockClient {
	mock := ledger.NewMockClient()
	mock.FindTransactionsFunc = func(_ context.Context, addresses []trinary.Hash) ([]trinary.Hash, error) {
		var hashes []trinary.Hash
		for _, addr := range addresses {
			for _, tx := range st.txsByAddress[addr] {
				hashes = append(hashes, tx.Hash)
			}
		}
		return hashes, nil
	}
	mock.GetTransactionObjectsFunc = func(_ context.Context, hashes ...trinary.Hash) ([]ledger.Transaction, error) {
		txs := make([]ledger.Transaction, 0, len(hashes))
		for _, h := range hashes {
			tx, ok := st.txByHash[h]
			if !ok {
				return nil, fmt.Errorf("unknown transaction %s", h)
			}
			txs = append(txs, tx)
		}
		return txs, nil
	}
	return mock
}
