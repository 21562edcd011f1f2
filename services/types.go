package services

import (
	"encoding/json"
	"net/http"
)

// CreateChannelRequest opens a publisher channel session. An empty seed
// asks the gateway to generate one.
type CreateChannelRequest struct {
	Seed     string `json:"seed,omitempty"`
	Mode     string `json:"mode"`
	SideKey  string `json:"side_key,omitempty"`
	Security int    `json:"security,omitempty"`
}

// CreateChannelResponse returns the session handle and its first root.
type CreateChannelResponse struct {
	ChannelID string `json:"channel_id"`
	Root      string `json:"root"`
	Mode      string `json:"mode"`
}

// PublishRequest masks and attaches one message on a channel session.
type PublishRequest struct {
	Message string `json:"message"`

	// Depth and MinWeightMagnitude override the node defaults when
	// non-zero.
	Depth              uint64 `json:"depth,omitempty"`
	MinWeightMagnitude uint64 `json:"mwm,omitempty"`
}

// PublishResponse reports where the message was anchored.
type PublishResponse struct {
	Root    string `json:"root"`
	Address string `json:"address"`
	Payload string `json:"payload"`
}

// FetchResponse carries a drained message chain.
type FetchResponse struct {
	Messages []string `json:"messages"`
	LastRoot string   `json:"last_root"`
}

// SubscribeRequest registers a consumer subscription.
type SubscribeRequest struct {
	Root       string `json:"root"`
	Mode       string `json:"mode"`
	ChannelKey string `json:"channel_key,omitempty"`
	TimeoutMS  int64  `json:"timeout_ms,omitempty"`
}

// SubscribeResponse confirms the registered subscription.
type SubscribeResponse struct {
	Root   string `json:"root"`
	Active bool   `json:"active"`
}

// SubscriptionMessagesResponse drains a subscription's buffered messages.
type SubscriptionMessagesResponse struct {
	Messages []string `json:"messages"`
	Root     string   `json:"root"`
}

// ErrorResponse is the uniform error body for gateway endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, &ErrorResponse{Error: err.Error()})
}
