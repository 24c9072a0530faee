package enums

import "fmt"

// UserType is the global, advisory kind of an account. Per-studio capability
// comes from StudioMembership roles, never from this value.
type UserType string

const (
	UserTypeAdmin        UserType = "admin"
	UserTypePhotographer UserType = "photographer"
	UserTypeClient       UserType = "client"
)

var validUserTypes = []UserType{
	UserTypeAdmin,
	UserTypePhotographer,
	UserTypeClient,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the account is a platform administrator.
func (u UserType) IsAdmin() bool {
	return u == UserTypeAdmin
}

// IsPhotographer reports whether the account is a photographer.
func (u UserType) IsPhotographer() bool {
	return u == UserTypePhotographer
}

// IsClient reports whether the account is a viewing client.
func (u UserType) IsClient() bool {
	return u == UserTypeClient
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(value string) (UserType, error) {
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
