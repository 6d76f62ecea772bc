// Package transport issues HTTP requests against gateways.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ByteRange selects bytes [Start, End] inclusive. End < 0 means open-ended.
type ByteRange struct {
	Start int64
	End   int64
}

// Header returns the value of a Range request header.
func (r ByteRange) Header() string {
	if r.End < 0 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Request describes one gateway request.
type Request struct {
	Method string // defaults to GET
	URL    string
	Header http.Header
	Range  *ByteRange
}

// Response is what came back. The caller must close Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs gateway requests. Cancelling ctx aborts the request.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Config holds configuration for HTTPTransport.
type Config struct {
	// UserAgent is sent with every request.
	// If empty, defaults to "smart-gateway/1.0"
	UserAgent string

	// Client overrides the underlying HTTP client.
	// If nil, a client with connection pooling and no overall timeout is used;
	// deadlines come from the request context.
	Client *http.Client
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// NewHTTPTransport creates a Transport backed by net/http.
func NewHTTPTransport(cfg Config, logger *zap.Logger) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "smart-gateway/1.0"
	}

	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &HTTPTransport{
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Do sends req. Non-2xx statuses are returned as a Response, not an error.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	if req.Range != nil {
		httpReq.Header.Set("Range", req.Range.Header())
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.Debug("Gateway request failed", zap.String("url", req.URL), zap.Error(err))
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
