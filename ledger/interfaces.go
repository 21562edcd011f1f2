package ledger

import (
	"context"

	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"
)

// Transaction is the slice of a ledger transaction the channel core
// consumes.
type Transaction struct {
	// Hash is the transaction hash.
	Hash trinary.Hash

	// Address is the attachment address the transaction was found at.
	Address trinary.Hash

	// Bundle groups the transactions whose fragments together
	// reconstitute one logical payload.
	Bundle trinary.Hash

	// SignatureMessageFragment carries this transaction's payload share.
	SignatureMessageFragment trinary.Trytes

	// CurrentIndex is the fragment position within the bundle.
	CurrentIndex uint64

	// LastIndex is the highest fragment position in the bundle.
	LastIndex uint64
}

// Transfer describes one output of a zero-value bundle.
type Transfer struct {
	Address trinary.Hash
	Value   uint64
	Message trinary.Trytes
	Tag     trinary.Trytes
}

// PrepareTransfersOptions tunes bundle construction.
type PrepareTransfersOptions struct {
	Security consts.SecurityLevel
}

// Client is the tangle-node contract required by the channel core. All
// calls are network bound; deadlines are inherited from the context and
// whatever timeout policy the underlying node client carries.
type Client interface {
	// FindTransactions returns the hashes of transactions attached at any
	// of the given addresses.
	FindTransactions(ctx context.Context, addresses []trinary.Hash) ([]trinary.Hash, error)

	// GetTransactionObjects resolves transaction hashes into objects.
	GetTransactionObjects(ctx context.Context, hashes ...trinary.Hash) ([]Transaction, error)

	// PrepareTransfers builds the raw transaction trytes for a bundle of
	// transfers signed (or, for zero-value bundles, merely anchored) by
	// seed.
	PrepareTransfers(ctx context.Context, seed trinary.Trytes, transfers []Transfer, opts PrepareTransfersOptions) ([]trinary.Trytes, error)

	// SendTrytes performs tip selection and proof of work on the raw
	// trytes and broadcasts them, returning the attached transactions.
	SendTrytes(ctx context.Context, trytes []trinary.Trytes, depth uint64, mwm uint64) ([]Transaction, error)
}
