//go:build db
// +build db

package memberships

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("FRAMEWELL_DB_DSN")
	if dsn == "" {
		t.Skip("FRAMEWELL_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func TestRepositoryMembershipFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("fw_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Member",
		UserType:     enums.UserTypePhotographer,
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	studio := &models.Studio{
		ID:          uuid.New(),
		Name:        "Repo Studio",
		CreatedByID: user.ID,
	}
	if err := tx.Create(studio).Error; err != nil {
		t.Fatalf("create studio: %v", err)
	}

	membership, err := repo.CreateMembership(ctx, studio.ID, user.ID, enums.MemberRoleOwner, nil)
	if err != nil {
		t.Fatalf("create membership: %v", err)
	}

	list, err := repo.ListUserStudios(ctx, user.ID)
	if err != nil {
		t.Fatalf("list user studios: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 studio, got %d", len(list))
	}
	if list[0].StudioName != studio.Name {
		t.Fatalf("expected studio name %s, got %s", studio.Name, list[0].StudioName)
	}
	if list[0].Role != enums.MemberRoleOwner {
		t.Fatalf("unexpected role %s", list[0].Role)
	}

	exists, err := repo.UserHasRole(ctx, user.ID, studio.ID, enums.MemberRoleOwner)
	if err != nil {
		t.Fatalf("check role: %v", err)
	}
	if !exists {
		t.Fatalf("expected user to have role owner")
	}

	other, err := repo.UserHasRole(ctx, user.ID, studio.ID, enums.MemberRoleAdmin)
	if err != nil {
		t.Fatalf("check other role: %v", err)
	}
	if other {
		t.Fatal("expected user to not have admin role")
	}

	fetched, err := repo.GetMembership(ctx, user.ID, studio.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if fetched.ID != membership.ID {
		t.Fatalf("expected membership id %s, got %s", membership.ID, fetched.ID)
	}

	owned, err := repo.FindOwnedStudio(ctx, user.ID)
	if err != nil {
		t.Fatalf("find owned studio: %v", err)
	}
	if owned.StudioID != studio.ID {
		t.Fatalf("expected owned studio %s, got %s", studio.ID, owned.StudioID)
	}

	if _, err := repo.CreateMembership(ctx, studio.ID, user.ID, enums.MemberRoleAdmin, nil); err == nil {
		t.Fatal("expected duplicate membership to fail")
	}
}
