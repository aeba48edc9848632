package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-0123456789ABCDEFGHIJ", "examtrack-test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "sess", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestCurrentUser_NotSignedIn(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user on a bare request")
	}
}

func TestSignInThenLoad(t *testing.T) {
	sm := newManager(t)

	// Sign in and capture the cookie.
	signInReq := httptest.NewRequest("POST", "/login", nil)
	signInRec := httptest.NewRecorder()
	err := sm.SignIn(signInRec, signInReq, &auth.SessionUser{
		UID:  "user_abc",
		Name: "Test Student",
		Role: "student",
	})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := signInRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie after sign in")
	}

	// Replay the cookie through LoadSessionUser.
	var got *auth.SessionUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	sm.LoadSessionUser(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context after LoadSessionUser")
	}
	if got.UID != "user_abc" {
		t.Errorf("uid: got %q, want %q", got.UID, "user_abc")
	}
	if got.Role != "student" {
		t.Errorf("role: got %q, want %q", got.Role, "student")
	}
}

func TestRequireSignedIn_Blocks(t *testing.T) {
	sm := newManager(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	})

	rec := httptest.NewRecorder()
	sm.RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest("GET", "/exams", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	sm := newManager(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	mw := sm.RequireRole("teacher", "admin")(next)

	// Wrong role → 403.
	req := httptest.NewRequest("GET", "/teacher", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{UID: "u1", Role: "student"})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler ran for forbidden role")
	}

	// Allowed role → handler runs.
	req = httptest.NewRequest("GET", "/teacher", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{UID: "u2", Role: "teacher"})
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if !called {
		t.Error("handler did not run for allowed role")
	}

	// Anonymous → 401.
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest("GET", "/teacher", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
