package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/api/transport"
	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/pkg/httpcontext"
	settingsStore "github.com/tasklight/backend/usecase/settings"
)

type SettingsHandler struct {
	baseHandler
	store *settingsStore.Store
}

func NewSettingsHandler(store *settingsStore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary Get settings
// @Tags settings
// @Router /api/v1/settings [get]
func (h *SettingsHandler) GetSettings(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.Get())
}

// @Summary Replace settings
// @Tags settings
// @Router /api/v1/settings [put]
func (h *SettingsHandler) UpdateSettings(ctx *fasthttp.RequestCtx) {
	var req transport.SettingsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	updated := h.store.Update(domain.Settings{
		Notifications:      req.Notifications,
		EmailNotifications: req.EmailNotifications,
		DarkMode:           req.DarkMode,
	})
	h.respondSuccess(ctx, http.StatusOK, updated)
}
