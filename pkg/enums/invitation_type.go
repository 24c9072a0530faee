package enums

import "fmt"

// InvitationType distinguishes the two admission flows into a studio.
type InvitationType string

const (
	InvitationTypeStudioMember InvitationType = "studio_member"
	InvitationTypeStudioClient InvitationType = "studio_client"
)

var validInvitationTypes = []InvitationType{
	InvitationTypeStudioMember,
	InvitationTypeStudioClient,
}

// String implements fmt.Stringer.
func (i InvitationType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvitationType.
func (i InvitationType) IsValid() bool {
	for _, candidate := range validInvitationTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvitationType converts raw input into an InvitationType.
func ParseInvitationType(value string) (InvitationType, error) {
	for _, candidate := range validInvitationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invitation type %q", value)
}
