// internal/app/policy/rolepolicy/capabilities.go
package rolepolicy

// Capability keys checked by handlers. A capability is a named permission
// gate, independent of any specific HTTP route.
const (
	CapAccessStudentArea  = "access_student_area"
	CapAccessAdvancedArea = "access_advanced_area"
	CapAccessTeacherArea  = "access_teacher_area"
	CapAccessAdminArea    = "access_admin_area"
	CapManageUsers        = "manage_users"
	CapModerateContent    = "moderate_content"
	CapConnectStudents    = "connect_students"
	CapSendDirectMessages = "send_direct_messages"
)

// capabilityRoles is the fixed access table: capability → roles permitted.
var capabilityRoles = map[string][]string{
	CapAccessStudentArea:  {RoleStudent, RoleAdvanced, RoleTeacher, RoleAdmin},
	CapAccessAdvancedArea: {RoleAdvanced, RoleTeacher, RoleAdmin},
	CapAccessTeacherArea:  {RoleTeacher, RoleAdmin},
	CapAccessAdminArea:    {RoleAdmin},
	CapManageUsers:        {RoleAdmin},
	CapModerateContent:    {RoleTeacher, RoleAdmin},
	CapConnectStudents:    {RoleTeacher, RoleAdmin},
	CapSendDirectMessages: {RoleTeacher, RoleAdmin},
}

// CanAccess reports whether a role grants the named capability.
//
// Capabilities not present in the table are allowed for every role,
// matching the long-standing route behavior where unlisted routes are
// public. Flag any new capability for explicit review instead of relying
// on this fallback.
func CanAccess(role, capability string) bool {
	allowed, known := capabilityRoles[capability]
	if !known {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
