// internal/app/features/settings/handler.go
package settings

import (
	"net/http"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the admin site settings. The settings live in one
// database document, never in process memory, so every instance sees an
// update on its next read.
type Handler struct {
	Settings *settingsstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(settings *settingsstore.Store, audits *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Settings: settings, Audit: audits, Log: logger}
}

// ServeGet handles GET /admin/settings.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "settings: load", err)
		return
	}
	httpjson.Write(w, http.StatusOK, site)
}

// Update handles PUT /admin/settings with a full settings document.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	var req models.SiteSettings
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SiteName) == "" {
		httpjson.Error(w, http.StatusBadRequest, "site_name is required")
		return
	}
	if req.MaxUploadSizeMB <= 0 || req.MaxUploadSizeMB > 100 {
		httpjson.Error(w, http.StatusBadRequest, "max_upload_size_mb must be between 1 and 100")
		return
	}
	if req.MaxUsersPerTeacher < 0 {
		httpjson.Error(w, http.StatusBadRequest, "max_users_per_teacher must not be negative")
		return
	}

	if err := h.Settings.Save(r.Context(), req, su.UID, su.Name); err != nil {
		httpjson.InternalError(w, h.Log, "settings: save", err)
		return
	}

	h.Audit.AdminEvent(r.Context(), r, audit.EventSettingsUpdated, "", su.UID, "")
	h.Log.Info("site settings updated", zap.String("actor", su.UID))

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "settings: reload", err)
		return
	}
	httpjson.Write(w, http.StatusOK, site)
}

// Reset handles POST /admin/settings/reset and restores factory defaults.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	site, err := h.Settings.Reset(r.Context(), su.UID, su.Name)
	if err != nil {
		httpjson.InternalError(w, h.Log, "settings: reset", err)
		return
	}
	h.Audit.AdminEvent(r.Context(), r, audit.EventSettingsReset, "", su.UID, "")
	httpjson.Write(w, http.StatusOK, site)
}
