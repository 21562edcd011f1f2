package ledger

import (
	"context"

	"github.com/iotaledger/iota.go/api"
	"github.com/iotaledger/iota.go/bundle"
	"github.com/iotaledger/iota.go/transaction"
	"github.com/iotaledger/iota.go/trinary"
)

// IotaClient implements Client over the iota.go node API.
type IotaClient struct {
	api *api.API
}

// NewIotaClient connects to a node at the given URI.
func NewIotaClient(uri string) (*IotaClient, error) {
	a, err := api.ComposeAPI(api.HTTPClientSettings{URI: uri})
	if err != nil {
		return nil, err
	}
	return &IotaClient{api: a}, nil
}

// FindTransactions returns the hashes of transactions attached at any of
// the given addresses.
func (c *IotaClient) FindTransactions(ctx context.Context, addresses []trinary.Hash) ([]trinary.Hash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hashes, err := c.api.FindTransactions(api.FindTransactionsQuery{Addresses: addresses})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// GetTransactionObjects resolves transaction hashes into objects.
func (c *IotaClient) GetTransactionObjects(ctx context.Context, hashes ...trinary.Hash) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txs, err := c.api.GetTransactionObjects(hashes...)
	if err != nil {
		return nil, err
	}
	return fromTransactions(txs), nil
}

// PrepareTransfers builds raw bundle trytes for the given transfers.
func (c *IotaClient) PrepareTransfers(ctx context.Context, seed trinary.Trytes, transfers []Transfer, opts PrepareTransfersOptions) ([]trinary.Trytes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bundleTransfers := make(bundle.Transfers, len(transfers))
	for i, t := range transfers {
		bundleTransfers[i] = bundle.Transfer{
			Address: t.Address,
			Value:   t.Value,
			Message: t.Message,
			Tag:     t.Tag,
		}
	}
	return c.api.PrepareTransfers(seed, bundleTransfers, api.PrepareTransfersOptions{
		Security: opts.Security,
	})
}

// SendTrytes attaches raw trytes to the tangle.
func (c *IotaClient) SendTrytes(ctx context.Context, trytes []trinary.Trytes, depth uint64, mwm uint64) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txs, err := c.api.SendTrytes(trytes, depth, mwm)
	if err != nil {
		return nil, err
	}
	return fromTransactions(txs), nil
}

func fromTransactions(txs []transaction.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = Transaction{
			Hash:                     tx.Hash,
			Address:                  tx.Address,
			Bundle:                   tx.Bundle,
			SignatureMessageFragment: tx.SignatureMessageFragment,
			CurrentIndex:             tx.CurrentIndex,
			LastIndex:                tx.LastIndex,
		}
	}
	return out
}
