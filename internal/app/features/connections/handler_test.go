package connections_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/connections"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *connections.Handler {
	audits := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	return connections.NewHandler(userstore.New(db), settingsstore.New(db), audits, zap.NewNop())
}

func TestConnectTeacherToStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	teacher := fx.CreateTeacher(ctx, "Teacher", "t@example.com")
	student := fx.CreateStudent(ctx, "Student", "s@example.com")

	req := testutil.NewJSONRequest("POST", "/connections", `{"student_uid":"`+student.UID+`"}`)
	req = testutil.WithUser(req, testutil.TestUser{UID: teacher.UID, Name: teacher.DisplayName, Role: teacher.Role})
	rec := testutil.NewRecorder()
	h.Connect(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	// The link is on both accounts.
	users := userstore.New(db)
	tDoc, _ := users.GetByUID(ctx, teacher.UID)
	sDoc, _ := users.GetByUID(ctx, student.UID)
	if len(tDoc.Connections) != 1 || tDoc.Connections[0].UID != student.UID {
		t.Errorf("teacher side: got %+v", tDoc.Connections)
	}
	if len(sDoc.Connections) != 1 || sDoc.Connections[0].UID != teacher.UID {
		t.Errorf("student side: got %+v", sDoc.Connections)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	teacher := fx.CreateTeacher(ctx, "Teacher", "t2@example.com")
	student := fx.CreateStudent(ctx, "Student", "s2@example.com")
	actor := testutil.TestUser{UID: teacher.UID, Name: teacher.DisplayName, Role: teacher.Role}

	for i := 0; i < 2; i++ {
		req := testutil.NewJSONRequest("POST", "/connections", `{"student_uid":"`+student.UID+`"}`)
		req = testutil.WithUser(req, actor)
		rec := testutil.NewRecorder()
		h.Connect(rec, req)

		if i == 0 {
			rec.AssertStatus(t, http.StatusCreated)
		} else {
			rec.AssertStatus(t, http.StatusOK)
			var resp struct {
				AlreadyConnected bool `json:"already_connected"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("parse response: %v", err)
			}
			if !resp.AlreadyConnected {
				t.Error("repeat connect must report already_connected")
			}
		}
	}

	tDoc, _ := userstore.New(db).GetByUID(ctx, teacher.UID)
	if len(tDoc.Connections) != 1 {
		t.Errorf("connections: got %d entries, want 1", len(tDoc.Connections))
	}
}

func TestConnectRoleChecks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	tests := []struct {
		name        string
		teacherRole string
		studentRole string
	}{
		{"student cannot act as teacher side", "student", "student"},
		{"advanced cannot act as teacher side", "advanced", "student"},
		{"teacher cannot be the student side", "teacher", "teacher"},
		{"admin cannot be the student side", "teacher", "admin"},
		{"guest cannot be connected", "teacher", "guest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teacher := fx.CreateUser(ctx, "T", "t-"+tt.name+"@example.com", tt.teacherRole)
			student := fx.CreateUser(ctx, "S", "s-"+tt.name+"@example.com", tt.studentRole)

			req := testutil.NewJSONRequest("POST", "/connections", `{"student_uid":"`+student.UID+`"}`)
			req = testutil.WithUser(req, testutil.TestUser{UID: teacher.UID, Role: teacher.Role})
			rec := testutil.NewRecorder()
			h.Connect(rec, req)

			rec.AssertStatus(t, http.StatusForbidden)
		})
	}
}

func TestConnectChecksStoredRoleNotSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := newHandler(db)
	fx := testutil.NewFixtures(t, db)

	// The session claims teacher but the stored account is a student: the
	// database wins.
	demoted := fx.CreateStudent(ctx, "Demoted", "demoted@example.com")
	student := fx.CreateStudent(ctx, "Student", "s3@example.com")

	req := testutil.NewJSONRequest("POST", "/connections", `{"student_uid":"`+student.UID+`"}`)
	req = testutil.WithUser(req, testutil.TestUser{UID: demoted.UID, Role: "teacher"})
	rec := testutil.NewRecorder()
	h.Connect(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}
