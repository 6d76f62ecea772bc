package gateway

import (
	"net/http"

	"github.com/DeBrosOfficial/smart-gateway/pkg/httputil"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"go.uber.org/zap"
)

type urlsRequest struct {
	URLs []string `json:"urls"`
}

type pickedRequest struct {
	URL string `json:"url"`
}

type gatewaysResponse struct {
	Defaults []string `json:"defaults"`
	User     []string `json:"user"`
	All      []string `json:"all"`
}

func (g *Gateway) gatewaysResponse(r *http.Request) gatewaysResponse {
	return gatewaysResponse{
		Defaults: nonNil(g.client.DefaultGateways()),
		User:     nonNil(g.client.UserGateways(r.Context())),
		All:      nonNil(g.client.AllGateways()),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeURLs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req urlsRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body")
		return nil, false
	}
	if !httputil.RequireURLs(w, req.URLs) {
		return nil, false
	}
	return req.URLs, true
}

func (g *Gateway) listGatewaysHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, g.gatewaysResponse(r))
}

func (g *Gateway) setDefaultsHandler(w http.ResponseWriter, r *http.Request) {
	var req urlsRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	g.client.SetDefaultGateways(req.URLs)
	httputil.WriteJSON(w, http.StatusOK, g.gatewaysResponse(r))
}

func (g *Gateway) addUserGatewaysHandler(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r)
	if !ok {
		return
	}
	if err := g.client.SetUserGateways(r.Context(), urls); err != nil {
		g.logger.ComponentWarn(logging.ComponentGateway, "user gateways rejected", zap.Error(err))
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g.gatewaysResponse(r))
}

func (g *Gateway) removeUserGatewaysHandler(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r)
	if !ok {
		return
	}
	if err := g.client.RemoveUserGateways(r.Context(), urls); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g.gatewaysResponse(r))
}

func (g *Gateway) sortedHandler(w http.ResponseWriter, r *http.Request) {
	sorted := g.client.SortedGateways()
	if sorted == nil {
		sorted = ranking.RankedList{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"gateways": sorted})
}

func (g *Gateway) resultsHandler(w http.ResponseWriter, r *http.Request) {
	results := g.client.Results()
	if results == nil {
		results = []ranking.ProbeResult{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (g *Gateway) getPickedHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"picked": g.client.PickedGateway(r.Context())})
}

func (g *Gateway) setPickedHandler(w http.ResponseWriter, r *http.Request) {
	var req pickedRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !httputil.RequireNotEmpty(w, req.URL, "url") {
		return
	}
	if err := g.client.SetPickedGateway(r.Context(), req.URL); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteSuccessWithData(w, map[string]any{"picked": g.client.PickedGateway(r.Context())})
}
