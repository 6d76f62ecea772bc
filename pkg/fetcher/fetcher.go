// Package fetcher retrieves content by CID, trying ranked gateways first and
// then the remaining known gateways in random order.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/gatewayurl"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Ranker exposes the latest ranking round.
type Ranker interface {
	Sorted() ranking.RankedList
	Picked(ctx context.Context) string
}

// GatewaySource lists every known gateway.
type GatewaySource interface {
	AllGateways() []string
}

// Config holds configuration for a Fetcher.
type Config struct {
	// CacheSize is the number of CIDs kept in the content cache.
	// Zero disables caching.
	CacheSize int
}

type cachedContent struct {
	data        []byte
	contentType string
}

// Fetcher is safe for concurrent use. Each fetch is strictly sequential
// across its candidates.
type Fetcher struct {
	ranker    Ranker
	gateways  GatewaySource
	transport transport.Transport
	decoders  *decoder.Registry
	cache     *lru.Cache[string, cachedContent]
	metrics   *metrics.Metrics
	logger    *zap.Logger

	// shuffle reorders the untested gateways; replaced in tests.
	shuffle func(n int, swap func(i, j int))
}

// New creates a Fetcher. decoders may be nil to use the built-in formats.
func New(cfg Config, ranker Ranker, gateways GatewaySource, t transport.Transport, decoders *decoder.Registry, m *metrics.Metrics, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if decoders == nil {
		decoders = decoder.NewRegistry()
	}

	f := &Fetcher{
		ranker:    ranker,
		gateways:  gateways,
		transport: t,
		decoders:  decoders,
		metrics:   m,
		logger:    logger,
		shuffle:   rand.Shuffle,
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, cachedContent](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create content cache: %w", err)
		}
		f.cache = cache
	}
	return f, nil
}

// Candidates returns the try-order for a fallback fetch: the ranked gateways
// best first, then every other known gateway shuffled.
func (f *Fetcher) Candidates() []string {
	order := f.ranker.Sorted().URLs()

	var untested []string
	for _, g := range f.gateways.AllGateways() {
		if !gatewayurl.Contains(order, g) && !gatewayurl.Contains(untested, g) {
			untested = append(untested, g)
		}
	}
	f.shuffle(len(untested), func(i, j int) {
		untested[i], untested[j] = untested[j], untested[i]
	})

	return append(order, untested...)
}

// FetchWithFallback returns the first successfully decoded response for
// cidPath across Candidates. Every failure moves on to the next gateway;
// if all fail it returns (nil, false).
func (f *Fetcher) FetchWithFallback(ctx context.Context, cidPath string, format decoder.Format) (any, bool) {
	if err := ranking.ValidateCID(cidPath); err != nil {
		f.logger.Debug("Refusing fetch of invalid CID", zap.String("cid", cidPath), zap.Error(err))
		f.metrics.ObserveFetch("fallback", false)
		return nil, false
	}

	if v, ok := f.fromCache(cidPath, format); ok {
		f.metrics.ObserveFetch("fallback", true)
		return v, true
	}

	candidates := f.Candidates()
	for i, gw := range candidates {
		if ctx.Err() != nil {
			break
		}
		v, err := f.fetch(ctx, gw, cidPath, format)
		if err != nil {
			f.logger.Debug("Gateway fetch failed, trying next",
				zap.String("gateway", gw),
				zap.Int("position", i),
				zap.Error(err))
			continue
		}
		f.logger.Debug("Content fetched", zap.String("gateway", gw), zap.String("cid", cidPath))
		f.metrics.ObserveFetch("fallback", true)
		return v, true
	}

	f.logger.Warn("No gateway served content",
		zap.String("cid", cidPath),
		zap.Int("candidates", len(candidates)))
	f.metrics.ObserveFetch("fallback", false)
	return nil, false
}

// FetchFromPicked tries only the picked gateway. Without one it returns
// (nil, false) immediately.
func (f *Fetcher) FetchFromPicked(ctx context.Context, cidPath string, format decoder.Format) (any, bool) {
	picked := f.ranker.Picked(ctx)
	if picked == "" {
		f.metrics.ObserveFetch("picked", false)
		return nil, false
	}
	if err := ranking.ValidateCID(cidPath); err != nil {
		f.metrics.ObserveFetch("picked", false)
		return nil, false
	}

	if v, ok := f.fromCache(cidPath, format); ok {
		f.metrics.ObserveFetch("picked", true)
		return v, true
	}

	v, err := f.fetch(ctx, picked, cidPath, format)
	if err != nil {
		f.logger.Debug("Picked gateway fetch failed", zap.String("gateway", picked), zap.Error(err))
		f.metrics.ObserveFetch("picked", false)
		return nil, false
	}
	f.metrics.ObserveFetch("picked", true)
	return v, true
}

func (f *Fetcher) fromCache(cidPath string, format decoder.Format) (any, bool) {
	if f.cache == nil {
		return nil, false
	}
	entry, ok := f.cache.Get(cacheKey(cidPath))
	if !ok {
		return nil, false
	}
	v, err := f.decoders.Decode(entry.contentType, entry.data, format)
	if err != nil {
		return nil, false
	}
	f.metrics.ObserveCacheHit()
	return v, true
}

func (f *Fetcher) fetch(ctx context.Context, gateway, cidPath string, format decoder.Format) (any, error) {
	resp, err := f.transport.Do(ctx, &transport.Request{URL: gatewayurl.ContentURL(gateway, cidPath)})
	if err != nil {
		f.metrics.ObserveFetchAttempt("unreachable")
		return nil, errors.NewUnreachableError(gateway, 0, err)
	}
	defer resp.Body.Close()

	if !resp.OK() {
		f.metrics.ObserveFetchAttempt("status")
		return nil, errors.NewUnreachableError(gateway, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.metrics.ObserveFetchAttempt("unreachable")
		return nil, errors.NewUnreachableError(gateway, resp.StatusCode, err)
	}

	contentType := resp.Header.Get("Content-Type")
	v, err := f.decoders.Decode(contentType, body, format)
	if err != nil {
		f.metrics.ObserveFetchAttempt("decode")
		return nil, err
	}

	if f.cache != nil {
		f.cache.Add(cacheKey(cidPath), cachedContent{data: body, contentType: contentType})
	}
	f.metrics.ObserveFetchAttempt("ok")
	return v, nil
}

func cacheKey(cidPath string) string {
	return strings.TrimLeft(cidPath, "/")
}
