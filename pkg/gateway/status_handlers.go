package gateway

import (
	"net/http"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/httputil"
)

// healthResponse is the JSON structure used by healthHandler
type healthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	clientHealth := g.client.Health(r.Context())

	code := http.StatusOK
	if clientHealth.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, code, struct {
		Status string               `json:"status"`
		Server healthResponse       `json:"server"`
		Client *client.HealthStatus `json:"client"`
	}{
		Status: clientHealth.Status,
		Server: healthResponse{
			Status:    "ok",
			StartedAt: g.startedAt,
			Uptime:    time.Since(g.startedAt).String(),
		},
		Client: clientHealth,
	})
}
