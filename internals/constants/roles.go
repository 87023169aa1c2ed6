package constants

import "fmt"

// Role yang dibaca dari claim "role" token staf (lowercase).
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess  = "❌ Hanya petugas yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess = "❌ Hanya admin yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	StaffAndAbove = []string{
		RoleAdmin,
		RoleStaff,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
