// internal/app/features/analytics/handler.go
package analytics

import (
	"net/http"
	"time"

	blogstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/blogs"
	bookstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/books"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler serves the admin analytics overview.
type Handler struct {
	Users  *userstore.Store
	Exams  *examstore.Store
	Blogs  *blogstore.Store
	Books  *bookstore.Store
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, exams *examstore.Store, blogs *blogstore.Store, books *bookstore.Store, logins *loginstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Exams: exams, Blogs: blogs, Books: books, Logins: logins, Log: logger}
}

type overview struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	TotalUsers       int64            `json:"total_users"`
	TotalExams       int64            `json:"total_exams"`
	TotalBlogs       int64            `json:"total_blogs"`
	TotalBooks       int64            `json:"total_books"`
	LoginsLast7Days  int64            `json:"logins_last_7_days"`
	LoginsLast30Days int64            `json:"logins_last_30_days"`
	ActiveLast7Days  int64            `json:"active_users_last_7_days"`
}

// ServeOverview handles GET /admin/analytics.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byRole, err := h.Users.CountByRole(ctx)
	if err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count users", err)
		return
	}
	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}

	resp := overview{UsersByRole: byRole, TotalUsers: totalUsers}

	if resp.TotalExams, err = h.Exams.Count(ctx); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count exams", err)
		return
	}
	if resp.TotalBlogs, err = h.Blogs.Count(ctx); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count blogs", err)
		return
	}
	if resp.TotalBooks, err = h.Books.Count(ctx); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count books", err)
		return
	}

	now := time.Now().UTC()
	if resp.LoginsLast7Days, err = h.Logins.CountSince(ctx, now.AddDate(0, 0, -7)); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count recent logins", err)
		return
	}
	if resp.LoginsLast30Days, err = h.Logins.CountSince(ctx, now.AddDate(0, 0, -30)); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count monthly logins", err)
		return
	}
	if resp.ActiveLast7Days, err = h.Logins.ActiveUsersSince(ctx, now.AddDate(0, 0, -7)); err != nil {
		httpjson.InternalError(w, h.Log, "analytics: count active users", err)
		return
	}

	httpjson.Write(w, http.StatusOK, resp)
}
