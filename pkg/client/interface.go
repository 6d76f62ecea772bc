package client

import (
	"context"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
)

// SmartGateway provides the main interface for applications that pick and
// fetch through IPFS gateways.
type SmartGateway interface {
	// Settings
	Configure(patch config.SettingsPatch) config.Settings
	Settings() config.Settings

	// Gateway lists
	SetDefaultGateways(urls []string)
	DefaultGateways() []string
	SetUserGateways(ctx context.Context, urls []string) error
	RemoveUserGateways(ctx context.Context, urls []string) error
	UserGateways(ctx context.Context) []string
	AllGateways() []string

	// Ranking
	DefaultRankOptions() ranking.Options
	CheckGateways(ctx context.Context, opts ranking.Options) (ranking.RankedList, error)
	SortedGateways() ranking.RankedList
	Results() []ranking.ProbeResult
	PickedGateway(ctx context.Context) string
	SetPickedGateway(ctx context.Context, url string) error

	// Content
	FetchWithFallback(ctx context.Context, cid string, format decoder.Format) (any, bool)
	FetchFromPicked(ctx context.Context, cid string, format decoder.Format) (any, bool)

	// Lifecycle
	Reload(ctx context.Context)
	Health(ctx context.Context) *HealthStatus
	Close() error
}

// HealthStatus contains health check information
type HealthStatus struct {
	Status       string            `json:"status"` // "healthy", "degraded", "unhealthy"
	Checks       map[string]string `json:"checks"`
	LastUpdated  time.Time         `json:"last_updated"`
	ResponseTime time.Duration     `json:"response_time"`
}
