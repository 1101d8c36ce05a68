package auth

// Role identifies what a user is allowed to do. Seniors own their care data;
// family and caregivers act on seniors they are linked to.
type Role string

const (
	RoleSenior    Role = "senior"
	RoleFamily    Role = "family"
	RoleCaregiver Role = "caregiver"
	RoleAdmin     Role = "admin"
)

func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSenior, RoleFamily, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

// CanEditCareData reports whether the role may create or modify medications,
// appointments and emergency contacts on behalf of a linked senior. Family
// members have read-write access; caregivers are read-only viewers.
func CanEditCareData(r Role) bool {
	switch r {
	case RoleSenior, RoleFamily, RoleAdmin:
		return true
	}
	return false
}

// CanViewLinkedSenior reports whether the role may read a linked senior's
// care data and notification feed.
func CanViewLinkedSenior(r Role) bool {
	switch r {
	case RoleFamily, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}
