package ledger

import (
	"context"

	"github.com/iotaledger/iota.go/trinary"
)

// MockClient implements the Client interface for testing purposes. It
// allows customization of behavior by setting function implementations.
type MockClient struct {
	FindTransactionsFunc      func(ctx context.Context, addresses []trinary.Hash) ([]trinary.Hash, error)
	GetTransactionObjectsFunc func(ctx context.Context, hashes ...trinary.Hash) ([]Transaction, error)
	PrepareTransfersFunc      func(ctx context.Context, seed trinary.Trytes, transfers []Transfer, opts PrepareTransfersOptions) ([]trinary.Trytes, error)
	SendTrytesFunc            func(ctx context.Context, trytes []trinary.Trytes, depth uint64, mwm uint64) ([]Transaction, error)
}

// NewMockClient creates a mock client whose defaults behave like an empty
// tangle: no transactions found, submissions accepted.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// FindTransactions implements the Client interface.
func (m *MockClient) FindTransactions(ctx context.Context, addresses []trinary.Hash) ([]trinary.Hash, error) {
	if m.FindTransactionsFunc != nil {
		return m.FindTransactionsFunc(ctx, addresses)
	}
	return nil, nil
}

// GetTransactionObjects implements the Client interface.
func (m *MockClient) GetTransactionObjects(ctx context.Context, hashes ...trinary.Hash) ([]Transaction, error) {
	if m.GetTransactionObjectsFunc != nil {
		return m.GetTransactionObjectsFunc(ctx, hashes...)
	}
	return nil, nil
}

// PrepareTransfers implements the Client interface.
func (m *MockClient) PrepareTransfers(ctx context.Context, seed trinary.Trytes, transfers []Transfer, opts PrepareTransfersOptions) ([]trinary.Trytes, error) {
	if m.PrepareTransfersFunc != nil {
		return m.PrepareTransfersFunc(ctx, seed, transfers, opts)
	}
	raw := make([]trinary.Trytes, 0, len(transfers))
	for _, t := range transfers {
		raw = append(raw, t.Message)
	}
	return raw, nil
}

// SendTrytes implements the Client interface.
func (m *MockClient) SendTrytes(ctx context.Context, trytes []trinary.Trytes, depth uint64, mwm uint64) ([]Transaction, error) {
	if m.SendTrytesFunc != nil {
		return m.SendTrytesFunc(ctx, trytes, depth, mwm)
	}
	return nil, nil
}
