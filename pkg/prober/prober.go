// Package prober measures how quickly a single gateway starts serving a CID.
package prober

import (
	"context"
	"io"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/gatewayurl"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	"go.uber.org/zap"
)

// firstByte asks the gateway for one byte so a probe costs almost no bandwidth
// while still proving the content is retrievable.
var firstByte = transport.ByteRange{Start: 0, End: 0}

// Prober issues bounded-time probes through a Transport.
type Prober struct {
	transport transport.Transport
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Prober.
func New(t transport.Transport, m *metrics.Metrics, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{transport: t, metrics: m, logger: logger, now: time.Now}
}

// Measure probes {gateway}/ipfs/{cid} with a ranged GET. It returns the time
// until response headers arrived and true, or (0, false) if the request
// failed, returned a non-2xx status, or did not answer within timeout.
func (p *Prober) Measure(ctx context.Context, gateway, cid string, timeout time.Duration) (time.Duration, bool) {
	elapsed, err := p.measure(ctx, gateway, cid, timeout)
	if err != nil {
		p.metrics.ObserveProbe(false, 0)
		p.logger.Debug("Gateway probe failed",
			zap.String("gateway", gateway),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return 0, false
	}

	p.metrics.ObserveProbe(true, elapsed)
	p.logger.Debug("Gateway probe succeeded",
		zap.String("gateway", gateway),
		zap.Duration("elapsed", elapsed))
	return elapsed, true
}

func (p *Prober) measure(ctx context.Context, gateway, cid string, timeout time.Duration) (time.Duration, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := p.now()
	resp, err := p.transport.Do(ctx, &transport.Request{
		URL:   gatewayurl.ContentURL(gateway, cid),
		Range: &firstByte,
	})
	if err != nil {
		return 0, errors.NewUnreachableError(gateway, 0, err)
	}
	elapsed := p.now().Sub(start)

	// Drain at most the requested byte so the connection can be reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 1)
	resp.Body.Close()

	if !resp.OK() {
		return 0, errors.NewUnreachableError(gateway, resp.StatusCode, nil)
	}
	if ctx.Err() != nil {
		// headers raced the deadline
		return 0, errors.NewUnreachableError(gateway, 0, ctx.Err())
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, nil
}
