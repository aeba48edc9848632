// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/authz"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the signed-in landing data, dispatched by role: students
// get their study picture, teachers their connected students, admins a
// site summary.
type Handler struct {
	Users  *userstore.Store
	Exams  *examstore.Store
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, exams *examstore.Store, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Exams: exams, Logins: logins, Log: logger}
}

// Serve handles GET /dashboard.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}
	user, err := h.Users.GetByUID(r.Context(), su.UID)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "account no longer exists")
			return
		}
		httpjson.InternalError(w, h.Log, "dashboard: load user", err)
		return
	}

	switch {
	case authz.IsAdmin(r):
		h.serveAdmin(w, r, user)
	case authz.IsTeacher(r):
		h.serveTeacher(w, r, user)
	default:
		h.serveStudent(w, r, user)
	}
}

type studentDashboard struct {
	Role          string              `json:"role"`
	DisplayName   string              `json:"display_name"`
	LoginCount    int                 `json:"login_count"`
	ExamProgress  models.ExamProgress `json:"exam_progress"`
	StudyStreak   models.StudyStreak  `json:"study_streak"`
	UpcomingExams []models.Exam       `json:"upcoming_exams"`
	UnreadCount   int                 `json:"unread_count"`
	// Progress toward the automatic advanced upgrade.
	LoginsToAdvanced int `json:"logins_to_advanced"`
	ExamsToAdvanced  int `json:"exams_to_advanced"`
}

func (h *Handler) serveStudent(w http.ResponseWriter, r *http.Request, user *models.User) {
	upcoming, err := h.Exams.UpcomingForOwner(r.Context(), user.UID, 5)
	if err != nil {
		httpjson.InternalError(w, h.Log, "dashboard: upcoming exams", err)
		return
	}
	unread, err := h.Users.UnreadCount(r.Context(), user.UID)
	if err != nil {
		httpjson.InternalError(w, h.Log, "dashboard: unread count", err)
		return
	}

	resp := studentDashboard{
		Role:          user.Role,
		DisplayName:   user.DisplayName,
		LoginCount:    user.LoginCount,
		ExamProgress:  user.ExamProgress,
		StudyStreak:   user.StudyStreak,
		UpcomingExams: upcoming,
		UnreadCount:   unread,
	}
	if user.Role == rolepolicy.RoleStudent {
		resp.LoginsToAdvanced = max(0, 10-user.LoginCount)
		resp.ExamsToAdvanced = max(0, 5-user.ExamProgress.TotalExams)
	}
	httpjson.Write(w, http.StatusOK, resp)
}

type connectedStudent struct {
	UID          string              `json:"uid"`
	DisplayName  string              `json:"display_name"`
	Status       string              `json:"status"`
	ExamProgress models.ExamProgress `json:"exam_progress"`
	StudyStreak  models.StudyStreak  `json:"study_streak"`
}

func (h *Handler) serveTeacher(w http.ResponseWriter, r *http.Request, user *models.User) {
	students := make([]connectedStudent, 0, len(user.Connections))
	for _, conn := range user.Connections {
		peer, err := h.Users.GetByUID(r.Context(), conn.UID)
		if err != nil {
			continue // removed accounts drop out of the view
		}
		students = append(students, connectedStudent{
			UID:          peer.UID,
			DisplayName:  peer.DisplayName,
			Status:       conn.Status,
			ExamProgress: peer.ExamProgress,
			StudyStreak:  peer.StudyStreak,
		})
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"role":         user.Role,
		"display_name": user.DisplayName,
		"students":     students,
	})
}

func (h *Handler) serveAdmin(w http.ResponseWriter, r *http.Request, user *models.User) {
	byRole, err := h.Users.CountByRole(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "dashboard: count users", err)
		return
	}
	total, err := h.Exams.Count(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "dashboard: count exams", err)
		return
	}
	activeWeek, err := h.Logins.ActiveUsersSince(r.Context(), time.Now().AddDate(0, 0, -7))
	if err != nil {
		httpjson.InternalError(w, h.Log, "dashboard: active users", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"role":                     user.Role,
		"display_name":             user.DisplayName,
		"users_by_role":            byRole,
		"total_exams":              total,
		"active_users_last_7_days": activeWeek,
	})
}
