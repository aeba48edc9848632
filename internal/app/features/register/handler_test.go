package register_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/features/register"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	userstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/users"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/indexes"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/ratelimit"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *register.Handler {
	t.Helper()
	sessions, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "examtrack_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	audits := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	return register.NewHandler(
		userstore.New(db),
		settingsstore.New(db),
		sessions,
		audits,
		ratelimit.New(100, time.Minute),
		zap.NewNop(),
	)
}

func TestRegisterCreatesStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewJSONRequest("POST", "/auth/register",
		`{"email":"New.User@Example.com","password":"hunter2hunter2","display_name":"New User"}`)
	rec := testutil.NewRecorder()
	h.Register(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		UID     string `json:"uid"`
		Email   string `json:"email"`
		Role    string `json:"role"`
		IsAdmin bool   `json:"is_admin"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "student" {
		t.Errorf("role = %q, want %q", resp.Role, "student")
	}
	if resp.Email != "new.user@example.com" {
		t.Errorf("email = %q, want normalized lowercase", resp.Email)
	}
	if resp.IsAdmin {
		t.Error("is_admin = true, want false")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie on successful registration")
	}
}

func TestRegisterWithTeacherCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewJSONRequest("POST", "/auth/register",
		`{"email":"teach@example.com","password":"hunter2hunter2","display_name":"Teach","teacher_code":"TEACHER2024"}`)
	rec := testutil.NewRecorder()
	h.Register(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"role":"teacher"`)

	// Wrong code never falls back to student silently.
	req = testutil.NewJSONRequest("POST", "/auth/register",
		`{"email":"other@example.com","password":"hunter2hunter2","display_name":"Other","teacher_code":"WRONG"}`)
	rec = testutil.NewRecorder()
	h.Register(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if err := indexes.EnsureAll(testutil.TestContext(t), db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	h := newHandler(t, db)

	body := `{"email":"dup@example.com","password":"hunter2hunter2","display_name":"Dup"}`

	rec := testutil.NewRecorder()
	h.Register(rec, testutil.NewJSONRequest("POST", "/auth/register", body))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	h.Register(rec, testutil.NewJSONRequest("POST", "/auth/register", body))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestRegisterValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"hunter2hunter2","display_name":"X"}`},
		{"bad email", `{"email":"not-an-email","password":"hunter2hunter2","display_name":"X"}`},
		{"short password", `{"email":"x@example.com","password":"short","display_name":"X"}`},
		{"missing name", `{"email":"x@example.com","password":"hunter2hunter2"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.Register(rec, testutil.NewJSONRequest("POST", "/auth/register", tc.body))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}
