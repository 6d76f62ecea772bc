package gateway

import (
	"net/http"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	gwerrors "github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/httputil"
)

type settingsResponse struct {
	StopOnFirstSuccess bool  `json:"stop_on_first_success"`
	PersistStorage     bool  `json:"persist_storage"`
	TimeoutMS          int64 `json:"timeout_ms"`
}

type settingsPatchRequest struct {
	StopOnFirstSuccess *bool  `json:"stop_on_first_success"`
	PersistStorage     *bool  `json:"persist_storage"`
	TimeoutMS          *int64 `json:"timeout_ms"`
}

func toSettingsResponse(s config.Settings) settingsResponse {
	return settingsResponse{
		StopOnFirstSuccess: s.StopOnFirstSuccess,
		PersistStorage:     s.PersistStorage,
		TimeoutMS:          s.Timeout.Milliseconds(),
	}
}

func (g *Gateway) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(g.client.Settings()))
}

func (g *Gateway) patchSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req settingsPatchRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	patch := config.SettingsPatch{
		StopOnFirstSuccess: req.StopOnFirstSuccess,
		PersistStorage:     req.PersistStorage,
	}
	if req.TimeoutMS != nil {
		if *req.TimeoutMS <= 0 {
			httputil.WriteErr(w, r, gwerrors.NewValidationError("timeout_ms", "must be positive", *req.TimeoutMS))
			return
		}
		timeout := time.Duration(*req.TimeoutMS) * time.Millisecond
		patch.Timeout = &timeout
	}

	httputil.WriteJSON(w, http.StatusOK, toSettingsResponse(g.client.Configure(patch)))
}
