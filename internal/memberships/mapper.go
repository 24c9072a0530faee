package memberships

import (
	"time"

	"github.com/framewell/framewell-backend/pkg/db/models"
)

type membershipWithStudioRow struct {
	models.StudioMembership
	StudioName string `gorm:"column:studio_name"`
}

func membershipWithStudioFromRow(row membershipWithStudioRow) MembershipWithStudio {
	return MembershipWithStudio{
		MembershipID:    row.ID,
		StudioID:        row.StudioID,
		UserID:          row.UserID,
		StudioName:      row.StudioName,
		Role:            row.Role,
		InvitedByUserID: copyUUIDPointer(row.InvitedByUserID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithStudioRow) []MembershipWithStudio {
	out := make([]MembershipWithStudio, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithStudioFromRow(row))
	}
	return out
}

type studioUserRow struct {
	models.StudioMembership
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func studioUsersFromRows(rows []studioUserRow) []StudioUserDTO {
	out := make([]StudioUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StudioUserDTO{
			MembershipID: row.ID,
			StudioID:     row.StudioID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
