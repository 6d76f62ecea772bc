package gateway

import "time"

// Config holds configuration for the gateway server
type Config struct {
	ListenAddr string

	// EnableMetrics exposes /metrics from MetricsGatherer.
	EnableMetrics bool

	// RequestTimeout bounds non-streaming requests.
	// If zero, defaults to 60s
	RequestTimeout time.Duration

	// WSBuffer is the event buffer of a /v1/rank/ws stream.
	// If zero, defaults to 64
	WSBuffer int
}
