// internal/app/features/exams/handler.go
package exams

import (
	"errors"
	"net/http"
	"strings"
	"time"

	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves exam tracking. Every route works on the signed-in user's
// own exams; there is no cross-user access, not even for admins.
type Handler struct {
	Exams    *examstore.Store
	Users    *userstore.Store
	Settings *settingsstore.Store
	Log      *zap.Logger
}

func NewHandler(exams *examstore.Store, users *userstore.Store, settings *settingsstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Exams: exams, Users: users, Settings: settings, Log: logger}
}

type examRequest struct {
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Subjects  []models.Subject `json:"subjects,omitempty"`
}

func (req *examRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if !models.IsValidExamType(req.Type) {
		return "unknown exam type"
	}
	if req.StartDate.IsZero() {
		return "start_date is required"
	}
	if !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return "end_date must not be before start_date"
	}
	return ""
}

// Create handles POST /exams. Creating an exam also bumps the owner's
// cumulative exam counter, which feeds the automatic role upgrade.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "exams: load settings", err)
		return
	}
	if !site.Features.ExamTracking {
		httpjson.Error(w, http.StatusForbidden, "exam tracking is disabled")
		return
	}

	var req examRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	exam, err := h.Exams.Create(r.Context(), models.Exam{
		UserUID:   su.UID,
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Subjects:  req.Subjects,
	})
	if err != nil {
		httpjson.InternalError(w, h.Log, "exams: create", err)
		return
	}

	if err := h.Users.IncExamTotals(r.Context(), su.UID, 1, 0); err != nil {
		h.Log.Warn("exams: bump total counter", zap.String("uid", su.UID), zap.Error(err))
	}
	if err := h.Users.TouchStudyStreak(r.Context(), su.UID); err != nil {
		h.Log.Warn("exams: touch streak", zap.String("uid", su.UID), zap.Error(err))
	}

	httpjson.Write(w, http.StatusCreated, exam)
}

// ServeList handles GET /exams.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	exams, err := h.Exams.ListForOwner(r.Context(), su.UID)
	if err != nil {
		httpjson.InternalError(w, h.Log, "exams: list", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"exams": exams, "count": len(exams)})
}

// ServeOne handles GET /exams/{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exam id")
		return
	}
	exam, err := h.Exams.GetForOwner(r.Context(), su.UID, id)
	if err != nil {
		if errors.Is(err, examstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "exam not found")
			return
		}
		httpjson.InternalError(w, h.Log, "exams: load", err)
		return
	}
	httpjson.Write(w, http.StatusOK, exam)
}

// Update handles PUT /exams/{id}. Marking todos done moves the subject and
// overall progress; completing every subject counts the exam as completed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	var req examRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	before, err := h.Exams.GetForOwner(r.Context(), su.UID, id)
	if err != nil {
		if errors.Is(err, examstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "exam not found")
			return
		}
		httpjson.InternalError(w, h.Log, "exams: load for update", err)
		return
	}

	updated, err := h.Exams.Update(r.Context(), su.UID, id, models.Exam{
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Subjects:  req.Subjects,
	})
	if err != nil {
		if errors.Is(err, examstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "exam not found")
			return
		}
		httpjson.InternalError(w, h.Log, "exams: update", err)
		return
	}

	if before.OverallProgress < 100 && updated.OverallProgress == 100 {
		if err := h.Users.IncExamTotals(r.Context(), su.UID, 0, 1); err != nil {
			h.Log.Warn("exams: bump completed counter", zap.String("uid", su.UID), zap.Error(err))
		}
	}
	if err := h.Users.TouchStudyStreak(r.Context(), su.UID); err != nil {
		h.Log.Warn("exams: touch streak", zap.String("uid", su.UID), zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, updated)
}

// Delete handles DELETE /exams/{id}. The cumulative total is not
// decremented: past tracking still counts toward the upgrade thresholds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid exam id")
		return
	}
	if err := h.Exams.Delete(r.Context(), su.UID, id); err != nil {
		if errors.Is(err, examstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "exam not found")
			return
		}
		httpjson.InternalError(w, h.Log, "exams: delete", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
