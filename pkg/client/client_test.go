package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	gwerrors "github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/kvstore"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gatewayServer answers probes (ranged requests) after probeDelay with
// probeStatus and plain GETs with fetchStatus and body.
func gatewayServer(t *testing.T, probeDelay time.Duration, probeStatus, fetchStatus int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			time.Sleep(probeDelay)
			w.WriteHeader(probeStatus)
			return
		}
		w.WriteHeader(fetchStatus)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, store kvstore.Store, defaults ...string) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Gateways.Defaults = defaults
	cfg.Ranking.RetryDelay = 10 * time.Millisecond
	cfg.Settings.Timeout = time.Second

	c, err := NewClient(context.Background(), &ClientConfig{
		Config: cfg,
		Store:  store,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCheckGatewaysOrdersByLatency(t *testing.T) {
	slow := gatewayServer(t, 150*time.Millisecond, http.StatusPartialContent, http.StatusOK, "")
	fast := gatewayServer(t, 0, http.StatusPartialContent, http.StatusOK, "")
	c := newTestClient(t, kvstore.NewMemoryStore(), slow.URL, fast.URL)
	ctx := context.Background()

	var starts, successes int
	opts := c.DefaultRankOptions()
	opts.Observer = ranking.ObserverFuncs{
		Start:   func() { starts++ },
		Success: func(ranking.ProbeResult) { successes++ },
	}

	ranked, err := c.CheckGateways(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{fast.URL, slow.URL}, ranked.URLs())
	assert.Equal(t, fast.URL, c.PickedGateway(ctx))
	assert.Equal(t, ranked.URLs(), c.SortedGateways().URLs())
	assert.Equal(t, 1, starts)
	assert.Equal(t, 2, successes)
	assert.Len(t, c.Results(), 2)
}

func TestCheckGatewaysAllFail(t *testing.T) {
	a := gatewayServer(t, 0, http.StatusInternalServerError, http.StatusInternalServerError, "")
	b := gatewayServer(t, 0, http.StatusNotFound, http.StatusNotFound, "")
	c := newTestClient(t, kvstore.NewMemoryStore(), a.URL, b.URL)
	ctx := context.Background()
	require.NoError(t, c.SetPickedGateway(ctx, "https://prior.example"))

	var retries []int
	opts := c.DefaultRankOptions()
	opts.RetryCount = 2
	opts.Observer = ranking.ObserverFuncs{
		Retry: func(attempt int, _ time.Duration) { retries = append(retries, attempt) },
	}

	ranked, err := c.CheckGateways(ctx, opts)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Equal(t, []int{2, 3}, retries)
	assert.Equal(t, "https://prior.example", c.PickedGateway(ctx))
	for _, r := range c.Results() {
		assert.Equal(t, ranking.StatusUnreachable, r.Status)
	}
}

func TestCheckGatewaysProbeTimeout(t *testing.T) {
	hung := gatewayServer(t, 500*time.Millisecond, http.StatusPartialContent, http.StatusOK, "")
	fast := gatewayServer(t, 0, http.StatusPartialContent, http.StatusOK, "")
	c := newTestClient(t, kvstore.NewMemoryStore(), hung.URL, fast.URL)

	timeout := 100 * time.Millisecond
	c.Configure(config.SettingsPatch{Timeout: &timeout})

	ranked, err := c.CheckGateways(context.Background(), c.DefaultRankOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{fast.URL}, ranked.URLs())
}

func TestUserGatewaysCapacity(t *testing.T) {
	c := newTestClient(t, kvstore.NewMemoryStore(), "https://ipfs.io")
	ctx := context.Background()

	urls := make([]string, 16)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://gw%d.example", i)
	}

	err := c.SetUserGateways(ctx, urls)
	require.Error(t, err)
	assert.True(t, gwerrors.IsCapacityExceeded(err))
	assert.Empty(t, c.UserGateways(ctx))
	assert.Equal(t, []string{"https://ipfs.io"}, c.AllGateways())
}

func TestUserGatewaysAddRemove(t *testing.T) {
	c := newTestClient(t, kvstore.NewMemoryStore(), "https://ipfs.io")
	ctx := context.Background()

	require.NoError(t, c.SetUserGateways(ctx, []string{"dweb.link/", "ipfs.io", "https://w3s.link/ipfs"}))
	assert.Equal(t, []string{"https://dweb.link", "https://w3s.link"}, c.UserGateways(ctx))
	assert.Equal(t, []string{"https://ipfs.io", "https://dweb.link", "https://w3s.link"}, c.AllGateways())

	require.NoError(t, c.RemoveUserGateways(ctx, []string{"https://dweb.link/"}))
	assert.Equal(t, []string{"https://w3s.link"}, c.UserGateways(ctx))
}

func TestFetchWithFallback(t *testing.T) {
	g1 := gatewayServer(t, 0, http.StatusPartialContent, http.StatusInternalServerError, "")
	g2 := gatewayServer(t, 30*time.Millisecond, http.StatusPartialContent, http.StatusOK, "x")
	c := newTestClient(t, kvstore.NewMemoryStore(), g1.URL, g2.URL)
	ctx := context.Background()

	ranked, err := c.CheckGateways(ctx, c.DefaultRankOptions())
	require.NoError(t, err)
	require.Equal(t, []string{g1.URL, g2.URL}, ranked.URLs())

	v, ok := c.FetchWithFallback(ctx, config.DefaultCID, decoder.FormatText)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = c.FetchFromPicked(ctx, config.DefaultCID, decoder.FormatText)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestFetchJSON(t *testing.T) {
	g := gatewayServer(t, 0, http.StatusPartialContent, http.StatusOK, `{"name":"smart","n":3}`)
	c := newTestClient(t, kvstore.NewMemoryStore(), g.URL)
	ctx := context.Background()
	require.NoError(t, c.SetPickedGateway(ctx, g.URL))

	v, ok := c.FetchFromPicked(ctx, config.DefaultCID, decoder.FormatJSON)
	require.True(t, ok)
	obj, isMap := v.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "smart", obj["name"])
}

func TestStatePersistsAcrossClients(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	first := newTestClient(t, store, "https://ipfs.io")
	require.NoError(t, first.SetUserGateways(ctx, []string{"dweb.link"}))
	require.NoError(t, first.SetPickedGateway(ctx, "https://dweb.link"))

	second := newTestClient(t, store, "https://ipfs.io")
	assert.Equal(t, []string{"https://dweb.link"}, second.UserGateways(ctx))
	assert.Equal(t, "https://dweb.link", second.PickedGateway(ctx))
	assert.Equal(t, []string{"https://ipfs.io", "https://dweb.link"}, second.AllGateways())
}

func TestPersistenceDisabled(t *testing.T) {
	store := kvstore.NewMemoryStore()
	c := newTestClient(t, store, "https://ipfs.io")
	ctx := context.Background()

	persist := false
	s := c.Configure(config.SettingsPatch{PersistStorage: &persist})
	assert.False(t, s.PersistStorage)
	assert.Equal(t, time.Second, s.Timeout, "unpatched fields keep their values")

	require.NoError(t, c.SetUserGateways(ctx, []string{"dweb.link"}))
	assert.Equal(t, []string{"https://dweb.link"}, c.UserGateways(ctx))

	_, ok, err := store.Get(ctx, config.DefaultStoragePrefix+"user-gateways")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, kvstore.NewMemoryStore(), "https://ipfs.io")

	h := c.Health(context.Background())
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "ok", h.Checks["store"])
	assert.Equal(t, "1 known", h.Checks["gateways"])
}

func TestClosedClient(t *testing.T) {
	c := newTestClient(t, nil, "https://ipfs.io")
	ctx := context.Background()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.SetUserGateways(ctx, []string{"dweb.link"}), ErrClosed)
	_, err := c.CheckGateways(ctx, c.DefaultRankOptions())
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := c.FetchWithFallback(ctx, config.DefaultCID, decoder.FormatText)
	assert.False(t, ok)
	assert.Equal(t, "unhealthy", c.Health(ctx).Status)
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ranking.Mode = "parallel"

	_, err := NewClient(context.Background(), &ClientConfig{Config: cfg, Logger: zap.NewNop()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
