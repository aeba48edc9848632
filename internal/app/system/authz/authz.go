// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
)

// UserCtx returns the current user's role (lowercased), name, uid, and a
// found flag. When no user is present it returns the guest role with
// ok=false, so callers can trust that ok=true means an authenticated user.
func UserCtx(r *http.Request) (role string, name string, uid string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return rolepolicy.RoleGuest, "", "", false
	}
	return strings.ToLower(u.Role), u.Name, u.UID, true
}

// Role returns the current user's role (lowercased) and whether a user is
// present. Anonymous requests report the guest role.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// Can reports whether the current request's user (or guest, if anonymous)
// holds the named capability per the rolepolicy access table.
func Can(r *http.Request, capability string) bool {
	role, _, _, _ := UserCtx(r)
	return rolepolicy.CanAccess(role, capability)
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == rolepolicy.RoleAdmin
}

// IsTeacher reports whether the current request's user is a teacher.
func IsTeacher(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == rolepolicy.RoleTeacher
}

// IsAdvanced reports whether the current request's user is an advanced student.
func IsAdvanced(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == rolepolicy.RoleAdvanced
}

// IsStudent reports whether the current request's user is a (basic) student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == rolepolicy.RoleStudent
}

// HasAnyRole reports whether the current request's user has any of the given
// roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	cur, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
