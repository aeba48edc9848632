// internal/app/policy/rolepolicy/upgrade.go
package rolepolicy

// Upgrade thresholds for the automatic student → advanced promotion.
const (
	UpgradeMinLogins = 10
	UpgradeMinExams  = 5
)

// UpgradeResult reports whether an account earned an automatic upgrade.
// When Upgraded is false, NewRole equals PreviousRole.
type UpgradeResult struct {
	Upgraded     bool   `json:"upgraded"`
	PreviousRole string `json:"previous_role"`
	NewRole      string `json:"new_role"`
}

// EvaluateUpgrade decides whether an account is due its automatic role
// upgrade. The only rule: a student with at least UpgradeMinLogins logins
// and UpgradeMinExams tracked exams becomes advanced. Any other role is
// never upgraded automatically (advanced → admin is admin-only).
//
// The function is total and idempotent: it never errors, and once an
// account has been promoted the role guard makes further calls no-ops.
func EvaluateUpgrade(a Account) UpgradeResult {
	res := UpgradeResult{PreviousRole: a.Role, NewRole: a.Role}
	if a.Role == RoleStudent && a.LoginCount >= UpgradeMinLogins && a.TotalExams >= UpgradeMinExams {
		res.Upgraded = true
		res.NewRole = RoleAdvanced
	}
	return res
}
