package gateway

import (
	"net/http"

	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	gwerrors "github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/httputil"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/go-chi/chi/v5"
)

// contentHandler serves GET /ipfs/{cid}[/path] through the fallback chain,
// or only the picked gateway with ?picked=true.
func (g *Gateway) contentHandler(w http.ResponseWriter, r *http.Request) {
	cidPath := chi.URLParam(r, "*")
	if err := ranking.ValidateCID(cidPath); err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	format := decoder.ParseFormat(httputil.QueryParam(r, "format", string(decoder.FormatText)))

	var (
		v  any
		ok bool
	)
	if httputil.QueryParamBool(r, "picked", false) {
		v, ok = g.client.FetchFromPicked(r.Context(), cidPath, format)
	} else {
		v, ok = g.client.FetchWithFallback(r.Context(), cidPath, format)
	}
	if !ok {
		httputil.WriteErr(w, r, gwerrors.NewNotFoundError("content", cidPath))
		return
	}

	switch body := v.(type) {
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	case decoder.Blob:
		contentType := body.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body.Data)
	default:
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}
