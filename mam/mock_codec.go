package mam

import (
	"github.com/iotaledger/iota.go/trinary"
)

// MockCodec implements the Codec interface for testing purposes. Behavior
// is customized by setting function implementations; unset functions fall
// back to a StubCodec.
type MockCodec struct {
	CreateMessageFunc func(seed trinary.Trytes, message trinary.Trytes, sideKey trinary.Trytes, state *ChannelState) (*MaskedPayload, error)
	DecodeMessageFunc func(payload trinary.Trytes, sideKey trinary.Trytes, root trinary.Hash) (*UnmaskedMessage, error)
	RootFunc          func(seed trinary.Trytes, state *ChannelState) (trinary.Hash, error)

	stub *StubCodec
}

// NewMockCodec creates a mock codec with stub-backed defaults.
func NewMockCodec() *MockCodec {
	return &MockCodec{stub: NewStubCodec()}
}

// CreateMessage implements the Codec interface.
func (m *MockCodec) CreateMessage(seed trinary.Trytes, message trinary.Trytes, sideKey trinary.Trytes, state *ChannelState) (*MaskedPayload, error) {
	if m.CreateMessageFunc != nil {
		return m.CreateMessageFunc(seed, message, sideKey, state)
	}
	return m.stub.CreateMessage(seed, message, sideKey, state)
}

// DecodeMessage implements the Codec interface.
func (m *MockCodec) DecodeMessage(payload trinary.Trytes, sideKey trinary.Trytes, root trinary.Hash) (*UnmaskedMessage, error) {
	if m.DecodeMessageFunc != nil {
		return m.DecodeMessageFunc(payload, sideKey, root)
	}
	return m.stub.DecodeMessage(payload, sideKey, root)
}

// Root implements the Codec interface.
func (m *MockCodec) Root(seed trinary.Trytes, state *ChannelState) (trinary.Hash, error) {
	if m.RootFunc != nil {
		return m.RootFunc(seed, state)
	}
	return m.stub.Root(seed, state)
}
