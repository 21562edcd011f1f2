package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iotaledger/iota.go/consts"
	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/mam"
	"github.com/tanglekit/mamgo/metrics"
)

// GatewayConfig wires the gateway's collaborators.
type GatewayConfig struct {
	Controller *mam.Controller
	Listener   *Listener
	Registry   *SubscriptionRegistry

	// BaseContext bounds the lifetime of subscription poll loops.
	// Defaults to context.Background().
	BaseContext context.Context

	Log *slog.Logger
}

// channelSession is a publisher session held by the gateway. The mutex
// serializes publications so the cursor advances exactly once per one.
type channelSession struct {
	mu    sync.Mutex
	state mam.ChannelState
}

// Gateway exposes the channel operations over HTTP. It implements the
// httpserver RouteRegistrar interface.
type Gateway struct {
	ctrl     *mam.Controller
	listener *Listener
	registry *SubscriptionRegistry
	baseCtx  context.Context
	log      *slog.Logger

	mu       sync.RWMutex
	channels map[string]*channelSession
}

// NewGateway creates the HTTP gateway.
func NewGateway(cfg *GatewayConfig) (*Gateway, error) {
	if cfg.Controller == nil {
		return nil, errors.New("gateway requires a controller")
	}
	if cfg.Listener == nil {
		return nil, errors.New("gateway requires a listener")
	}
	if cfg.Registry == nil {
		cfg.Registry = NewSubscriptionRegistry()
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Gateway{
		ctrl:     cfg.Controller,
		listener: cfg.Listener,
		registry: cfg.Registry,
		baseCtx:  cfg.BaseContext,
		log:      cfg.Log,
		channels: make(map[string]*channelSession),
	}, nil
}

// RegisterRoutes registers the gateway endpoints with the router.
func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Post("/v1/channels", g.handleCreateChannel)
	r.Post("/v1/channels/{channelID}/messages", g.handlePublish)
	r.Get("/v1/messages/{root}", g.handleFetch)
	r.Post("/v1/subscriptions", g.handleSubscribe)
	r.Get("/v1/subscriptions/{root}/messages", g.handleSubscriptionMessages)
	r.Delete("/v1/subscriptions/{root}", g.handleUnsubscribe)
}

// Shutdown deactivates every subscription poll loop.
func (g *Gateway) Shutdown() {
	for _, root := range g.registry.Roots() {
		g.registry.Deactivate(root)
	}
}

func (g *Gateway) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	seed := trinary.Trytes(req.Seed)
	if seed == "" {
		generated, err := mam.GenerateSeed()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		seed = generated
	}

	security := consts.SecurityLevel(req.Security)
	if security == 0 {
		security = consts.SecurityLevelMedium
	}
	if !mam.ValidSecurity(security) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid security level %d", req.Security))
		return
	}

	mode := mam.ModePublic
	if req.Mode != "" {
		parsed, err := mam.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		mode = parsed
	}

	state := mam.NewChannelState(seed, security)
	state, err := state.WithMode(mode, trinary.Trytes(req.SideKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	root, err := g.ctrl.Root(&state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	id := channelID(root)
	g.mu.Lock()
	g.channels[id] = &channelSession{state: state}
	g.mu.Unlock()

	g.log.Info("channel session created", "channel", id, "mode", mode.String())
	writeJSON(w, http.StatusOK, &CreateChannelResponse{
		ChannelID: id,
		Root:      string(root),
		Mode:      mode.String(),
	})
}

func (g *Gateway) handlePublish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "channelID")
	g.mu.RLock()
	session, ok := g.channels[id]
	g.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown channel %s", id))
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	result, err := g.ctrl.Create(session.state, trinary.Trytes(req.Message))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := g.ctrl.Attach(r.Context(), result.Payload, result.Address, req.Depth, req.MinWeightMagnitude); err != nil {
		// The leaf was not consumed: the cursor only advances on a
		// successful publication.
		metrics.SubmissionErrors.Inc()
		writeError(w, http.StatusBadGateway, err)
		return
	}

	session.state = result.State
	metrics.MessagesPublished.Inc()

	writeJSON(w, http.StatusOK, &PublishResponse{
		Root:    string(result.Root),
		Address: string(result.Address),
		Payload: string(result.Payload),
	})
}

func (g *Gateway) handleFetch(w http.ResponseWriter, r *http.Request) {
	root := trinary.Hash(chi.URLParam(r, "root"))

	mode := mam.ModePublic
	if s := r.URL.Query().Get("mode"); s != "" {
		parsed, err := mam.ParseMode(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		mode = parsed
	}
	sideKey := trinary.Trytes(r.URL.Query().Get("side_key"))

	result, err := g.ctrl.Fetch(r.Context(), root, mode, sideKey, nil)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	metrics.MessagesFetched.Add(float64(len(result.Messages)))
	writeJSON(w, http.StatusOK, &FetchResponse{
		Messages: trytesToStrings(result.Messages),
		LastRoot: string(result.LastRoot),
	})
}

func (g *Gateway) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Root == "" {
		writeError(w, http.StatusBadRequest, errors.New("root is required"))
		return
	}

	mode := mam.ModePublic
	if req.Mode != "" {
		parsed, err := mam.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		mode = parsed
	}

	root := trinary.Hash(req.Root)
	sub := mam.NewSubscription(root, mode, trinary.Trytes(req.ChannelKey), time.Duration(req.TimeoutMS)*time.Millisecond)

	entry, err := g.registry.Add(root, sub)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	stop := g.listener.Listen(g.baseCtx, sub, func(msg trinary.Trytes) {
		entry.Append(msg)
	})
	entry.SetStop(stop)

	g.log.Info("subscription registered", "root", root, "mode", mode.String())
	writeJSON(w, http.StatusOK, &SubscribeResponse{Root: req.Root, Active: true})
}

func (g *Gateway) handleSubscriptionMessages(w http.ResponseWriter, r *http.Request) {
	root := trinary.Hash(chi.URLParam(r, "root"))
	entry, ok := g.registry.Get(root)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no subscription for root %s", root))
		return
	}

	writeJSON(w, http.StatusOK, &SubscriptionMessagesResponse{
		Messages: trytesToStrings(entry.Drain()),
		Root:     string(entry.Sub.Root()),
	})
}

func (g *Gateway) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	root := trinary.Hash(chi.URLParam(r, "root"))
	if !g.registry.Remove(root) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no subscription for root %s", root))
		return
	}
	writeJSON(w, http.StatusOK, &SubscribeResponse{Root: string(root), Active: false})
}

// channelID derives a short stable handle from a channel root.
func channelID(root trinary.Hash) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:8])
}

func trytesToStrings(in []trinary.Trytes) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
