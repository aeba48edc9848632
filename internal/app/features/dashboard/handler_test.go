package dashboard_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/dashboard"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	loginstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/logins"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *dashboard.Handler {
	return dashboard.NewHandler(userstore.New(db), examstore.New(db), loginstore.New(db), zap.NewNop())
}

func TestStudentDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	student := fx.CreateUserWithCounters(ctx, "Rafi", "rafi@example.com", 7, 3)
	teacher := fx.CreateTeacher(ctx, "Mr. Karim", "karim@example.com")
	fx.CreateExam(ctx, student.UID, "SSC Math", "SSC")

	users := userstore.New(db)
	if err := users.PushMessage(ctx, student.UID, models.Message{
		FromUID: teacher.UID, FromName: teacher.DisplayName,
		Body: "keep going", Type: "teacher_to_student",
	}); err != nil {
		t.Fatalf("push message: %v", err)
	}

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.TestUser{
		UID: student.UID, Name: student.DisplayName, Email: student.Email, Role: student.Role,
	})
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Role             string        `json:"role"`
		LoginCount       int           `json:"login_count"`
		UpcomingExams    []models.Exam `json:"upcoming_exams"`
		UnreadCount      int           `json:"unread_count"`
		LoginsToAdvanced int           `json:"logins_to_advanced"`
		ExamsToAdvanced  int           `json:"exams_to_advanced"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "student" {
		t.Errorf("role = %q, want %q", resp.Role, "student")
	}
	if resp.LoginCount != 7 {
		t.Errorf("login_count = %d, want 7", resp.LoginCount)
	}
	if len(resp.UpcomingExams) != 1 {
		t.Fatalf("upcoming_exams len = %d, want 1", len(resp.UpcomingExams))
	}
	if resp.UnreadCount != 1 {
		t.Errorf("unread_count = %d, want 1", resp.UnreadCount)
	}
	if resp.LoginsToAdvanced != 3 {
		t.Errorf("logins_to_advanced = %d, want 3", resp.LoginsToAdvanced)
	}
	if resp.ExamsToAdvanced != 2 {
		t.Errorf("exams_to_advanced = %d, want 2", resp.ExamsToAdvanced)
	}
}

func TestTeacherDashboardListsConnectedStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	teacher := fx.CreateTeacher(ctx, "Ms. Nahar", "nahar@example.com")
	student := fx.CreateUserWithCounters(ctx, "Mitu", "mitu@example.com", 4, 2)

	users := userstore.New(db)
	if err := users.AddConnection(ctx, teacher.UID, student.UID); err != nil {
		t.Fatalf("add connection: %v", err)
	}

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.TestUser{
		UID: teacher.UID, Name: teacher.DisplayName, Email: teacher.Email, Role: teacher.Role,
	})
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Role     string `json:"role"`
		Students []struct {
			UID          string              `json:"uid"`
			Status       string              `json:"status"`
			ExamProgress models.ExamProgress `json:"exam_progress"`
		} `json:"students"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "teacher" {
		t.Errorf("role = %q, want %q", resp.Role, "teacher")
	}
	if len(resp.Students) != 1 {
		t.Fatalf("students len = %d, want 1", len(resp.Students))
	}
	if resp.Students[0].UID != student.UID {
		t.Errorf("student uid = %q, want %q", resp.Students[0].UID, student.UID)
	}
	if resp.Students[0].ExamProgress.TotalExams != 2 {
		t.Errorf("total_exams = %d, want 2", resp.Students[0].ExamProgress.TotalExams)
	}
}

func TestAdminDashboardSummarizesSite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateAdmin(ctx, "Root", "root@example.com")
	s := fx.CreateStudent(ctx, "Sabbir", "sabbir@example.com")
	fx.CreateExam(ctx, s.UID, "HSC Physics", "HSC")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.TestUser{
		UID: admin.UID, Name: admin.DisplayName, Email: admin.Email, Role: admin.Role,
	})
	rec := testutil.NewRecorder()
	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Role        string           `json:"role"`
		UsersByRole map[string]int64 `json:"users_by_role"`
		TotalExams  int64            `json:"total_exams"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "admin" {
		t.Errorf("role = %q, want %q", resp.Role, "admin")
	}
	if resp.UsersByRole["student"] != 1 {
		t.Errorf("students = %d, want 1", resp.UsersByRole["student"])
	}
	if resp.TotalExams != 1 {
		t.Errorf("total_exams = %d, want 1", resp.TotalExams)
	}
}
