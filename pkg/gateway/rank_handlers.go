package gateway

import (
	"context"
	"net/http"
	"time"

	gwerrors "github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/httputil"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type rankRequest struct {
	CID          string `json:"cid"`
	RetryCount   *int   `json:"retry_count"`
	RetryDelayMS *int64 `json:"retry_delay_ms"`
	Mode         string `json:"mode"`
	OnlyNew      bool   `json:"only_new"`
}

type rankResponse struct {
	Gateways ranking.RankedList `json:"gateways"`
	Picked   string             `json:"picked"`
}

// options overlays req on the configured defaults.
func (req rankRequest) options(base ranking.Options) (ranking.Options, error) {
	opts := base
	if req.CID != "" {
		opts.CID = req.CID
	}
	if req.RetryCount != nil {
		opts.RetryCount = *req.RetryCount
	}
	if req.RetryDelayMS != nil {
		d, err := httputil.ParseMillis(*req.RetryDelayMS)
		if err != nil {
			return opts, gwerrors.NewValidationError("retry_delay_ms", err.Error(), *req.RetryDelayMS)
		}
		opts.RetryDelay = d
	}
	if req.Mode != "" {
		mode, err := ranking.ParseMode(req.Mode)
		if err != nil {
			return opts, gwerrors.NewValidationError("mode", err.Error(), req.Mode)
		}
		opts.Mode = mode
	}
	opts.OnlyNew = req.OnlyNew
	return opts, nil
}

func (g *Gateway) rankHandler(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	opts, err := req.options(g.client.DefaultRankOptions())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	ranked, err := g.client.CheckGateways(r.Context(), opts)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if ranked == nil {
		ranked = ranking.RankedList{}
	}
	httputil.WriteJSON(w, http.StatusOK, rankResponse{
		Gateways: ranked,
		Picked:   g.client.PickedGateway(r.Context()),
	})
}

// rankQuery reads rank options from the websocket URL query.
func rankQuery(r *http.Request) rankRequest {
	req := rankRequest{
		CID:     httputil.QueryParam(r, "cid", ""),
		Mode:    httputil.QueryParam(r, "mode", ""),
		OnlyNew: httputil.QueryParamBool(r, "only_new", false),
	}
	if v := httputil.QueryParamInt(r, "retry_count", -1); v >= 0 {
		req.RetryCount = &v
	}
	if v := httputil.QueryParamInt(r, "retry_delay_ms", -1); v >= 0 {
		ms := int64(v)
		req.RetryDelayMS = &ms
	}
	return req
}

type wsDone struct {
	Type     string             `json:"type"`
	Gateways ranking.RankedList `json:"gateways"`
	Picked   string             `json:"picked,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// rankWebsocketHandler upgrades to WS, runs one ranking round and streams
// its events, ending with a "done" message. Closing the socket cancels the round.
func (g *Gateway) rankWebsocketHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := rankQuery(r).options(g.client.DefaultRankOptions())
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.ComponentWarn(logging.ComponentGateway, "rank ws: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader loop: any read error means the peer went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	obs := ranking.NewChannelObserver(ctx, g.cfg.WSBuffer)
	opts.Observer = obs

	type outcome struct {
		ranked ranking.RankedList
		err    error
	}
	finished := make(chan outcome, 1)
	go func() {
		ranked, err := g.client.CheckGateways(ctx, opts)
		obs.Close()
		finished <- outcome{ranked, err}
	}()

	writeOK := true
	for ev := range obs.Events() {
		if !writeOK {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			g.logger.ComponentDebug(logging.ComponentGateway, "rank ws: write failed", zap.Error(err))
			writeOK = false
			cancel()
		}
	}

	res := <-finished
	if !writeOK {
		return
	}

	done := wsDone{Type: "done", Gateways: res.ranked}
	if done.Gateways == nil {
		done.Gateways = ranking.RankedList{}
	}
	if res.err != nil {
		done.Error = res.err.Error()
	} else {
		done.Picked = g.client.PickedGateway(ctx)
	}
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	_ = conn.WriteJSON(done)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(5*time.Second))
}
