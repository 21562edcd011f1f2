package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iotaledger/iota.go/trinary"
	"github.com/stretchr/testify/require"

	"github.com/tanglekit/mamgo/ledger"
	"github.com/tanglekit/mamgo/testutil"
)

// recordingTangle is an in-memory tangle that accepts attachments and
// serves them back, so the publish and fetch paths run against the same
// store.
type recordingTangle struct {
	mu           sync.Mutex
	txsByAddress map[trinary.Hash][]ledger.Transaction
	txByHash     map[trinary.Hash]ledger.Transaction

	// failAttach makes the next submission fail once.
	failAttach bool
}

func newRecordingTangle() *recordingTangle {
	return &recordingTangle{
		txsByAddress: make(map[trinary.Hash][]ledger.Transaction),
		txByHash:     make(map[trinary.Hash]ledger.Transaction),
	}
}

func (rt *recordingTangle) client() *ledger.MockClient {
	mock := ledger.NewMockClient()
	mock.PrepareTransfersFunc = func(_ context.Context, _ trinary.Trytes, transfers []ledger.Transfer, _ ledger.PrepareTransfersOptions) ([]trinary.Trytes, error) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		if rt.failAttach {
			rt.failAttach = false
			return nil, errors.New("node rejected bundle")
		}
		for _, tr := range transfers {
			tx := ledger.Transaction{
				Hash:                     testutil.RandomHash(),
				Address:                  tr.Address,
				Bundle:                   testutil.RandomHash(),
				SignatureMessageFragment: tr.Message,
				CurrentIndex:             0,
				LastIndex:                0,
			}
			rt.txsByAddress[tr.Address] = append(rt.txsByAddress[tr.Address], tx)
			rt.txByHash[tx.Hash] = tx
		}
		return []trinary.Trytes{"RAW"}, nil
	}
	mock.FindTransactionsFunc = func(_ context.Context, addresses []trinary.Hash) ([]trinary.Hash, error) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		var hashes []trinary.Hash
		for _, addr := range addresses {
			for _, tx := range rt.txsByAddress[addr] {
				hashes = append(hashes, tx.Hash)
			}
		}
		return hashes, nil
	}
	mock.GetTransactionObjectsFunc = func(_ context.Context, hashes ...trinary.Hash) ([]ledger.Transaction, error) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		txs := make([]ledger.Transaction, 0, len(hashes))
		for _, h := range hashes {
			tx, ok := rt.txByHash[h]
			if !ok {
				return nil, fmt.Errorf("unknown transaction %s", h)
			}
			txs = append(txs, tx)
		}
		return txs, nil
	}
	return mock
}

func newTestGateway(t *testing.T, rt *recordingTangle) (*Gateway, *httptest.Server) {
	t.Helper()

	ctrl := newChainController(t, rt.client())
	gw, err := NewGateway(&GatewayConfig{
		Controller: ctrl,
		Listener:   NewListener(ctrl, quietLogger()),
		Registry:   NewSubscriptionRegistry(),
		Log:        quietLogger(),
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	gw.RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(gw.Shutdown)
	return gw, srv
}

func postJSON(t *testing.T, url string, body, out any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGatewayCreateChannel(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	var created CreateChannelResponse
	status := postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{}, &created)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, created.Root, 81, "a generated-seed channel still has a proper root")
	require.NotEmpty(t, created.ChannelID)
	require.Equal(t, "public", created.Mode)
}

func TestGatewayCreateChannelRejectsBadMode(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	status := postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{Mode: "hidden"}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestGatewayCreateChannelRestrictedNeedsKey(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	status := postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{Mode: "restricted"}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestGatewayPublishAndFetch(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	var created CreateChannelResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{}, &created))

	messages := []string{
		string(testutil.RandomTrytes(40)),
		string(testutil.RandomTrytes(40)),
	}
	for i, msg := range messages {
		var published PublishResponse
		status := postJSON(t, srv.URL+"/v1/channels/"+created.ChannelID+"/messages", &PublishRequest{Message: msg}, &published)
		require.Equal(t, http.StatusOK, status)
		if i == 0 {
			// Public mode: the first anchor is the channel root itself.
			require.Equal(t, created.Root, published.Root)
			require.Equal(t, created.Root, published.Address)
		}
	}

	var fetched FetchResponse
	status := getJSON(t, srv.URL+"/v1/messages/"+created.Root, &fetched)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, messages, fetched.Messages)
	require.NotEmpty(t, fetched.LastRoot)
	require.NotEqual(t, created.Root, fetched.LastRoot)
}

func TestGatewayPublishUnknownChannel(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	status := postJSON(t, srv.URL+"/v1/channels/deadbeef/messages", &PublishRequest{Message: "AAA"}, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestGatewayPublishFailureKeepsCursor(t *testing.T) {
	rt := newRecordingTangle()
	_, srv := newTestGateway(t, rt)

	var created CreateChannelResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{}, &created))

	rt.mu.Lock()
	rt.failAttach = true
	rt.mu.Unlock()

	status := postJSON(t, srv.URL+"/v1/channels/"+created.ChannelID+"/messages", &PublishRequest{Message: "AAA"}, nil)
	require.Equal(t, http.StatusBadGateway, status)

	// The leaf was not consumed: a retry anchors at the same root.
	var published PublishResponse
	status = postJSON(t, srv.URL+"/v1/channels/"+created.ChannelID+"/messages", &PublishRequest{Message: "AAA"}, &published)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, created.Root, published.Root)
}

func TestGatewayFetchEmptyRoot(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	root := string(testutil.RandomHash())
	var fetched FetchResponse
	status := getJSON(t, srv.URL+"/v1/messages/"+root, &fetched)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, fetched.Messages)
	require.Equal(t, root, fetched.LastRoot)
}

func TestGatewaySubscriptionLifecycle(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	var created CreateChannelResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/v1/channels", &CreateChannelRequest{}, &created))

	message := string(testutil.RandomTrytes(30))
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/v1/channels/"+created.ChannelID+"/messages", &PublishRequest{Message: message}, nil))

	var subscribed SubscribeResponse
	status := postJSON(t, srv.URL+"/v1/subscriptions", &SubscribeRequest{Root: created.Root, TimeoutMS: 10}, &subscribed)
	require.Equal(t, http.StatusOK, status)
	require.True(t, subscribed.Active)

	// Duplicate subscriptions on the same root are rejected.
	status = postJSON(t, srv.URL+"/v1/subscriptions", &SubscribeRequest{Root: created.Root}, nil)
	require.Equal(t, http.StatusConflict, status)

	var drained SubscriptionMessagesResponse
	require.Eventually(t, func() bool {
		if getJSON(t, srv.URL+"/v1/subscriptions/"+created.Root+"/messages", &drained) != http.StatusOK {
			return false
		}
		return len(drained.Messages) > 0
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{message}, drained.Messages)

	// The head advances after delivery; give the poll cycle time to finish.
	require.Eventually(t, func() bool {
		var state SubscriptionMessagesResponse
		if getJSON(t, srv.URL+"/v1/subscriptions/"+created.Root+"/messages", &state) != http.StatusOK {
			return false
		}
		return state.Root != created.Root
	}, time.Second, 10*time.Millisecond)

	status = getJSON(t, srv.URL+"/v1/subscriptions/"+created.Root+"/messages", &drained)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, drained.Messages, "draining is destructive")

	var unsubscribed SubscribeResponse
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/subscriptions/"+created.Root, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&unsubscribed))
	require.False(t, unsubscribed.Active)

	status = getJSON(t, srv.URL+"/v1/subscriptions/"+created.Root+"/messages", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestGatewaySubscribeRequiresRoot(t *testing.T) {
	_, srv := newTestGateway(t, newRecordingTangle())

	status := postJSON(t, srv.URL+"/v1/subscriptions", &SubscribeRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}
