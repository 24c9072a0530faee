package enums

import "fmt"

// MemberRole represents a studio-level permissions role.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleMember,
}

// ManagerRoles returns the roles allowed to administer a studio.
func ManagerRoles() []MemberRole {
	return []MemberRole{MemberRoleOwner, MemberRoleAdmin}
}

// AllMemberRoles returns every role that grants studio membership.
func AllMemberRoles() []MemberRole {
	return append([]MemberRole(nil), validMemberRoles...)
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsManager reports whether the role carries studio management capability.
func (m MemberRole) IsManager() bool {
	return m == MemberRoleOwner || m == MemberRoleAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
