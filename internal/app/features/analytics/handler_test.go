package analytics_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/analytics"
	blogstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/blogs"
	bookstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/books"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.uber.org/zap"
)

func TestOverviewCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	s1 := fx.CreateStudent(ctx, "S1", "s1@example.com")
	fx.CreateStudent(ctx, "S2", "s2@example.com")
	fx.CreateTeacher(ctx, "T1", "t1@example.com")
	fx.CreateExam(ctx, s1.UID, "Prep", "Custom")
	fx.CreateBlog(ctx, s1.UID, s1.DisplayName, "Post")
	fx.CreateBook(ctx, "Book", "Science", "9th")

	logins := loginstore.New(db)
	if err := logins.Record(ctx, models.LoginRecord{UserUID: s1.UID, Provider: "password"}); err != nil {
		t.Fatalf("record login: %v", err)
	}

	h := analytics.NewHandler(
		userstore.New(db),
		examstore.New(db),
		blogstore.New(db),
		bookstore.New(db),
		logins,
		zap.NewNop(),
	)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/analytics", testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeOverview(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		UsersByRole     map[string]int64 `json:"users_by_role"`
		TotalUsers      int64            `json:"total_users"`
		TotalExams      int64            `json:"total_exams"`
		TotalBlogs      int64            `json:"total_blogs"`
		TotalBooks      int64            `json:"total_books"`
		LoginsLast7Days int64            `json:"logins_last_7_days"`
		ActiveLast7Days int64            `json:"active_users_last_7_days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.TotalUsers != 3 {
		t.Errorf("total users: got %d, want 3", resp.TotalUsers)
	}
	if resp.UsersByRole["student"] != 2 {
		t.Errorf("students: got %d, want 2", resp.UsersByRole["student"])
	}
	if resp.TotalExams != 1 || resp.TotalBlogs != 1 || resp.TotalBooks != 1 {
		t.Errorf("content counts: got exams=%d blogs=%d books=%d, want 1 each",
			resp.TotalExams, resp.TotalBlogs, resp.TotalBooks)
	}
	if resp.LoginsLast7Days != 1 || resp.ActiveLast7Days != 1 {
		t.Errorf("login counts: got logins=%d active=%d, want 1 each",
			resp.LoginsLast7Days, resp.ActiveLast7Days)
	}
}
