package exams_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/exams"
	examstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/exams"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *exams.Handler {
	return exams.NewHandler(examstore.New(db), userstore.New(db), settingsstore.New(db), zap.NewNop())
}

func TestCreateBumpsTotalExams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateStudent(ctx, "Owner", "owner@example.com")
	actor := testutil.TestUser{UID: owner.UID, Name: owner.DisplayName, Role: owner.Role}

	start := time.Now().UTC().AddDate(0, 0, 30).Format(time.RFC3339)
	req := testutil.NewJSONRequest("POST", "/exams",
		`{"name":"SSC Final Prep","type":"SSC Final Exam","start_date":"`+start+`"}`)
	req = testutil.WithUser(req, actor)
	rec := testutil.NewRecorder()
	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	user, err := userstore.New(db).GetByUID(ctx, owner.UID)
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if user.ExamProgress.TotalExams != 1 {
		t.Errorf("total exams: got %d, want 1", user.ExamProgress.TotalExams)
	}
	if user.StudyStreak.CurrentStreak != 1 {
		t.Errorf("streak: got %d, want 1", user.StudyStreak.CurrentStreak)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateStudent(ctx, "Owner", "owner2@example.com")
	actor := testutil.TestUser{UID: owner.UID, Role: owner.Role}

	start := time.Now().UTC().AddDate(0, 0, 30).Format(time.RFC3339)
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"type":"Custom","start_date":"` + start + `"}`},
		{"unknown type", `{"name":"X","type":"Weekly Quiz","start_date":"` + start + `"}`},
		{"missing start date", `{"name":"X","type":"Custom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest("POST", "/exams", tt.body)
			req = testutil.WithUser(req, actor)
			rec := testutil.NewRecorder()
			h.Create(rec, req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestCompletionBumpsCompletedCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateStudent(ctx, "Owner", "owner3@example.com")
	actor := testutil.TestUser{UID: owner.UID, Role: owner.Role}
	exam := fx.CreateExam(ctx, owner.UID, "Half Yearly Prep", "Half Yearly")

	start := exam.StartDate.Format(time.RFC3339)
	body := `{"name":"Half Yearly Prep","type":"Half Yearly","start_date":"` + start + `",` +
		`"subjects":[{"name":"Math","todos":[{"title":"Algebra","is_completed":true}]}]}`

	req := testutil.NewJSONRequest("PUT", "/exams/"+exam.ID.Hex(), body)
	req = testutil.WithUser(req, actor)
	req = testutil.WithChiURLParam(req, "id", exam.ID.Hex())
	rec := testutil.NewRecorder()
	h.Update(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		OverallProgress int `json:"overall_progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.OverallProgress != 100 {
		t.Fatalf("overall progress: got %d, want 100", resp.OverallProgress)
	}

	user, _ := userstore.New(db).GetByUID(ctx, owner.UID)
	if user.ExamProgress.CompletedExams != 1 {
		t.Errorf("completed exams: got %d, want 1", user.ExamProgress.CompletedExams)
	}
}

func TestExamAccessIsOwnerScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateStudent(ctx, "Owner", "owner4@example.com")
	other := fx.CreateStudent(ctx, "Other", "other4@example.com")
	exam := fx.CreateExam(ctx, owner.UID, "Private", "Custom")

	req := testutil.NewAuthenticatedRequest("GET", "/exams/"+exam.ID.Hex(),
		testutil.TestUser{UID: other.UID, Role: other.Role})
	req = testutil.WithChiURLParam(req, "id", exam.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeOne(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}
