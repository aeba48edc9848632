package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/google/uuid"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	UID   string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{
		UID:   "user_" + uuid.NewString(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// TeacherUser returns a TestUser with the teacher role.
func TeacherUser() TestUser {
	return TestUser{
		UID:   "user_" + uuid.NewString(),
		Name:  "Test Teacher",
		Email: "teacher@test.com",
		Role:  "teacher",
	}
}

// StudentUser returns a TestUser with the student role.
func StudentUser() TestUser {
	return TestUser{
		UID:   "user_" + uuid.NewString(),
		Name:  "Test Student",
		Email: "student@test.com",
		Role:  "student",
	}
}

// AdvancedUser returns a TestUser with the advanced student role.
func AdvancedUser() TestUser {
	return TestUser{
		UID:   "user_" + uuid.NewString(),
		Name:  "Test Advanced",
		Email: "advanced@test.com",
		Role:  "advanced",
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user
// directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		UID:     user.UID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		IsAdmin: user.Role == "admin",
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
