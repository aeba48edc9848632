// Package gates provides handler-level authorization checks.
//
// Route-level middleware (auth.RequireSignedIn, auth.RequireRole) covers
// routes where every endpoint shares the same role requirement. Gates are
// for handlers that need a different check than their route group, or need
// the user context alongside the decision. Capability checks that depend on
// the accounts involved (e.g. connecting a teacher to a student) live in
// the rolepolicy package instead.
package gates

import (
	"net/http"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/authz"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
)

// Result contains the outcome of an authorization gate check.
type Result struct {
	Role string
	Name string
	UID  string
	OK   bool
}

// RequireAuth ensures a user is authenticated. If not, it writes a 401 and
// returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UID: uid, OK: true}
}

// RequireCapability ensures the user (or guest) holds the named capability
// from the rolepolicy access table. Anonymous users are evaluated as guest,
// so unlisted capabilities stay public.
func RequireCapability(w http.ResponseWriter, r *http.Request, capability string) Result {
	role, name, uid, signed := authz.UserCtx(r)
	if !rolepolicy.CanAccess(role, capability) {
		if !signed {
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		} else {
			httpjson.Error(w, http.StatusForbidden, "forbidden")
		}
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UID: uid, OK: true}
}

// RequireAdmin ensures the user is authenticated and is an admin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	if res.Role != rolepolicy.RoleAdmin {
		httpjson.Error(w, http.StatusForbidden, "admin access required")
		return Result{OK: false}
	}
	return res
}

// RequireTeacherOrAdmin ensures the user is authenticated as a teacher or admin.
func RequireTeacherOrAdmin(w http.ResponseWriter, r *http.Request) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	if res.Role != rolepolicy.RoleTeacher && res.Role != rolepolicy.RoleAdmin {
		httpjson.Error(w, http.StatusForbidden, "teacher access required")
		return Result{OK: false}
	}
	return res
}

// RequireAnyRole ensures the user is authenticated with one of the given roles.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, allowedRoles ...string) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	for _, allowed := range allowedRoles {
		if res.Role == allowed {
			return res
		}
	}
	httpjson.Error(w, http.StatusForbidden, "forbidden")
	return Result{OK: false}
}
