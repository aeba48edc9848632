// Package rolepolicy owns the role lifecycle and permission decisions for
// user accounts.
//
// Role rules:
//   - Roles are a fixed set: guest, student, advanced, teacher, admin.
//   - student → advanced is the only automatic upgrade, earned by accumulated
//     logins and exam activity (EvaluateUpgrade).
//   - advanced → admin and any move into or out of teacher are administrative
//     actions; ValidUpgrade bounds what an admin-initiated upgrade may do.
//   - Nothing in this package ever lowers a role.
//
// Every function here is a pure function of its arguments: no storage, no
// request context, no internal state. Callers persist the outcome through a
// single atomic update (see userstore.ApplyUpgrade).
package rolepolicy

import "fmt"

// The fixed role set.
const (
	RoleGuest    = "guest"
	RoleStudent  = "student"
	RoleAdvanced = "advanced"
	RoleTeacher  = "teacher"
	RoleAdmin    = "admin"
)

// Roles lists every valid role value.
var Roles = []string{RoleGuest, RoleStudent, RoleAdvanced, RoleTeacher, RoleAdmin}

// IsValidRole reports whether role is one of the five fixed values.
func IsValidRole(role string) bool {
	switch role {
	case RoleGuest, RoleStudent, RoleAdvanced, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether a role carries the admin flag. The user
// document's is_admin field must always equal IsPrivileged(role); stores
// recompute it inside the same update that changes the role.
func IsPrivileged(role string) bool {
	return role == RoleAdmin
}

// Account is the snapshot of a user the engine decides over. It is a plain
// value: handlers build it from a user document, the engine never touches
// storage itself.
type Account struct {
	UID        string
	Role       string
	LoginCount int
	TotalExams int
}

// PermissionError reports which party of an operation failed a role
// precondition. It is an authorization failure and is never retried.
type PermissionError struct {
	Side string // "teacher" or "student"
	Role string // the role that failed the check
	Want string // description of the accepted roles
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s role %q not permitted: want %s", e.Side, e.Role, e.Want)
}

// ConnectDecision checks the role preconditions for linking a teacher account
// to a student account. The teacher side must be a teacher or admin; the
// student side must be a student or advanced student. A nil result means the
// link may be created.
func ConnectDecision(teacherRole, studentRole string) error {
	if teacherRole != RoleTeacher && teacherRole != RoleAdmin {
		return &PermissionError{Side: "teacher", Role: teacherRole, Want: "teacher or admin"}
	}
	if studentRole != RoleStudent && studentRole != RoleAdvanced {
		return &PermissionError{Side: "student", Role: studentRole, Want: "student or advanced"}
	}
	return nil
}

// validUpgrades bounds admin-sanctioned forward transitions. There is no
// path into or out of teacher or guest, and no path lowers privilege.
var validUpgrades = map[string][]string{
	RoleStudent:  {RoleAdvanced},
	RoleAdvanced: {RoleAdmin},
	RoleAdmin:    {},
}

// ValidUpgrade reports whether moving an account from one role to another is
// a sanctioned forward transition (student→advanced, advanced→admin).
func ValidUpgrade(from, to string) bool {
	for _, r := range validUpgrades[from] {
		if r == to {
			return true
		}
	}
	return false
}
