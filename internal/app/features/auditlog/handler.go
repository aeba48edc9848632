// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const pageSize = 50

// Handler exposes the audit trail to admins.
type Handler struct {
	Audits *audit.Store
	Log    *zap.Logger
}

func NewHandler(audits *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Audits: audits, Log: logger}
}

// ServeList handles GET /admin/audit with optional category, event_type,
// user_uid, start_date, end_date, and page filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{
		UserUID:   strings.TrimSpace(query.Get(r, "user_uid")),
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		Limit:     pageSize,
	}

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}
	filter.Offset = int64(page-1) * pageSize

	if start := query.Get(r, "start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			filter.StartTime = &t
		}
	}
	if end := query.Get(r, "end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Audits.Query(r.Context(), filter)
	if err != nil {
		httpjson.InternalError(w, h.Log, "audit: query events", err)
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"events": events,
		"page":   page,
	})
}
