package studios

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/clients"
	"github.com/framewell/framewell-backend/internal/memberships"
	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/outbox"
)

type stubStudioRepo struct {
	studio     *models.Studio
	objectKeys []string
	cascaded   bool
}

func (s *stubStudioRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Studio, error) {
	if s.studio == nil || s.studio.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.studio, nil
}

func (s *stubStudioRepo) Update(ctx context.Context, studio *models.Studio) error {
	s.studio = studio
	return nil
}

func (s *stubStudioRepo) CreateTx(tx *gorm.DB, studio *models.Studio) error {
	studio.ID = uuid.New()
	s.studio = studio
	return nil
}

func (s *stubStudioRepo) ListPhotoObjectKeysTx(tx *gorm.DB, studioID uuid.UUID) ([]string, error) {
	return s.objectKeys, nil
}

func (s *stubStudioRepo) DeleteCascadeTx(tx *gorm.DB, studioID uuid.UUID) error {
	s.cascaded = true
	return nil
}

type stubMemberships struct {
	rows            map[uuid.UUID]*models.StudioMembership
	membershipCount int64
	created         []enums.MemberRole
	deleted         []uuid.UUID
}

func (s *stubMemberships) GetMembership(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioMembership, error) {
	if m, ok := s.rows[userID]; ok && m.StudioID == studioID {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberships) CreateMembershipTx(tx *gorm.DB, studioID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.StudioMembership, error) {
	s.created = append(s.created, role)
	return &models.StudioMembership{ID: uuid.New(), StudioID: studioID, UserID: userID, Role: role}, nil
}

func (s *stubMemberships) DeleteMembership(ctx context.Context, studioID, userID uuid.UUID) error {
	s.deleted = append(s.deleted, userID)
	return nil
}

func (s *stubMemberships) UserHasRole(ctx context.Context, userID, studioID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	m, ok := s.rows[userID]
	if !ok || m.StudioID != studioID {
		return false, nil
	}
	for _, role := range roles {
		if m.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubMemberships) CountUserMemberships(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.membershipCount, nil
}

func (s *stubMemberships) ListStudioUsers(ctx context.Context, studioID uuid.UUID) ([]memberships.StudioUserDTO, error) {
	return nil, nil
}

type stubClients struct {
	client        *models.StudioClient
	grantsDeleted bool
	clientDeleted bool
}

func (s *stubClients) GetClient(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioClient, error) {
	if s.client == nil || s.client.UserID != userID || s.client.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

func (s *stubClients) ListStudioClients(ctx context.Context, studioID uuid.UUID) ([]clients.StudioClientDTO, error) {
	return nil, nil
}

func (s *stubClients) DeleteClientTx(tx *gorm.DB, studioID, userID uuid.UUID) error {
	s.clientDeleted = true
	return nil
}

func (s *stubClients) DeleteGrantsForClientTx(tx *gorm.DB, studioClientID uuid.UUID) error {
	s.grantsDeleted = true
	return nil
}

type passGuard struct{}

func (passGuard) Authorize(ctx context.Context, actor tenant.Actor, resourceStudioID uuid.UUID, level tenant.AccessLevel) error {
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	svc     Service
	repo    *stubStudioRepo
	members *stubMemberships
	clients *stubClients
	outbox  *stubOutbox
}

func newFixture(t *testing.T, repo *stubStudioRepo, members *stubMemberships, clientsRepo *stubClients) fixture {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Memberships: members,
		Clients:     clientsRepo,
		Guard:       passGuard{},
		Tx:          stubTxRunner{},
		Outbox:      ob,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return fixture{svc: svc, repo: repo, members: members, clients: clientsRepo, outbox: ob}
}

func actorFor(userID, studioID uuid.UUID) tenant.Actor {
	return tenant.Actor{
		UserID:         &userID,
		UserType:       enums.UserTypePhotographer,
		ActiveStudioID: &studioID,
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestServiceCreateGrantsOwnerMembership(t *testing.T) {
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	ownerID := uuid.New()
	dto, err := f.svc.Create(context.Background(), ownerID, CreateStudioInput{Name: "North Light"})
	if err != nil {
		t.Fatalf("create studio: %v", err)
	}
	if dto.Name != "North Light" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
	if len(members.created) != 1 || members.created[0] != enums.MemberRoleOwner {
		t.Fatalf("expected one owner membership, got %v", members.created)
	}
}

func TestServiceCreateRequiresName(t *testing.T) {
	f := newFixture(t, &stubStudioRepo{}, &stubMemberships{}, &stubClients{})

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateStudioInput{Name: "  "})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceRemoveUserOwnerNeverRemovable(t *testing.T) {
	studioID := uuid.New()
	actorID := uuid.New()
	ownerID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		actorID: {StudioID: studioID, UserID: actorID, Role: enums.MemberRoleAdmin},
		ownerID: {StudioID: studioID, UserID: ownerID, Role: enums.MemberRoleOwner},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	err := f.svc.RemoveUser(context.Background(), actorFor(actorID, studioID), studioID, ownerID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if len(members.deleted) != 0 {
		t.Fatalf("owner membership must not be deleted")
	}
}

func TestServiceRemoveUserSelfRemovalDisallowed(t *testing.T) {
	studioID := uuid.New()
	actorID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		actorID: {StudioID: studioID, UserID: actorID, Role: enums.MemberRoleAdmin},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	err := f.svc.RemoveUser(context.Background(), actorFor(actorID, studioID), studioID, actorID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceRemoveUserAdminCannotRemoveAdmin(t *testing.T) {
	studioID := uuid.New()
	actorID := uuid.New()
	targetID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		actorID:  {StudioID: studioID, UserID: actorID, Role: enums.MemberRoleAdmin},
		targetID: {StudioID: studioID, UserID: targetID, Role: enums.MemberRoleAdmin},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	err := f.svc.RemoveUser(context.Background(), actorFor(actorID, studioID), studioID, targetID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceRemoveUserOwnerRemovesAdmin(t *testing.T) {
	studioID := uuid.New()
	actorID := uuid.New()
	targetID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		actorID:  {StudioID: studioID, UserID: actorID, Role: enums.MemberRoleOwner},
		targetID: {StudioID: studioID, UserID: targetID, Role: enums.MemberRoleAdmin},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	if err := f.svc.RemoveUser(context.Background(), actorFor(actorID, studioID), studioID, targetID); err != nil {
		t.Fatalf("owner removing admin: %v", err)
	}
	if len(members.deleted) != 1 || members.deleted[0] != targetID {
		t.Fatalf("expected target membership deleted, got %v", members.deleted)
	}
}

func TestServiceRemoveUserMissingMembership(t *testing.T) {
	studioID := uuid.New()
	actorID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		actorID: {StudioID: studioID, UserID: actorID, Role: enums.MemberRoleOwner},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	err := f.svc.RemoveUser(context.Background(), actorFor(actorID, studioID), studioID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceDeleteOnlyStudioRejected(t *testing.T) {
	studioID := uuid.New()
	ownerID := uuid.New()
	repo := &stubStudioRepo{studio: &models.Studio{ID: studioID, Name: "Solo", CreatedByID: ownerID}}
	members := &stubMemberships{
		rows: map[uuid.UUID]*models.StudioMembership{
			ownerID: {StudioID: studioID, UserID: ownerID, Role: enums.MemberRoleOwner},
		},
		membershipCount: 1,
	}
	f := newFixture(t, repo, members, &stubClients{})

	err := f.svc.Delete(context.Background(), actorFor(ownerID, studioID), studioID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if repo.cascaded {
		t.Fatal("cascade must not run for the only studio")
	}
}

func TestServiceDeleteRequiresOwner(t *testing.T) {
	studioID := uuid.New()
	adminID := uuid.New()
	repo := &stubStudioRepo{studio: &models.Studio{ID: studioID, Name: "Shared"}}
	members := &stubMemberships{
		rows: map[uuid.UUID]*models.StudioMembership{
			adminID: {StudioID: studioID, UserID: adminID, Role: enums.MemberRoleAdmin},
		},
		membershipCount: 2,
	}
	f := newFixture(t, repo, members, &stubClients{})

	err := f.svc.Delete(context.Background(), actorFor(adminID, studioID), studioID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestServiceDeleteEmitsCleanupEvent(t *testing.T) {
	studioID := uuid.New()
	ownerID := uuid.New()
	keys := []string{
		"studios/" + studioID.String() + "/albums/a1/one.jpg",
		"studios/" + studioID.String() + "/albums/a1/two.jpg",
	}
	repo := &stubStudioRepo{
		studio:     &models.Studio{ID: studioID, Name: "Archive", CreatedByID: ownerID},
		objectKeys: keys,
	}
	members := &stubMemberships{
		rows: map[uuid.UUID]*models.StudioMembership{
			ownerID: {StudioID: studioID, UserID: ownerID, Role: enums.MemberRoleOwner},
		},
		membershipCount: 2,
	}
	f := newFixture(t, repo, members, &stubClients{})

	if err := f.svc.Delete(context.Background(), actorFor(ownerID, studioID), studioID); err != nil {
		t.Fatalf("delete studio: %v", err)
	}
	if !repo.cascaded {
		t.Fatal("expected cascade delete")
	}
	if len(f.outbox.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(f.outbox.events))
	}
	event := f.outbox.events[0]
	if event.EventType != enums.EventStudioDeleted {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.AggregateID != studioID {
		t.Fatalf("unexpected aggregate id %s", event.AggregateID)
	}
}

func TestServiceRemoveClientDropsGrants(t *testing.T) {
	studioID := uuid.New()
	managerID := uuid.New()
	clientUserID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		managerID: {StudioID: studioID, UserID: managerID, Role: enums.MemberRoleAdmin},
	}}
	clientsRepo := &stubClients{client: &models.StudioClient{
		ID:       uuid.New(),
		StudioID: studioID,
		UserID:   clientUserID,
	}}
	f := newFixture(t, &stubStudioRepo{}, members, clientsRepo)

	if err := f.svc.RemoveClient(context.Background(), actorFor(managerID, studioID), studioID, clientUserID); err != nil {
		t.Fatalf("remove client: %v", err)
	}
	if !clientsRepo.grantsDeleted || !clientsRepo.clientDeleted {
		t.Fatal("expected grants and client row deleted")
	}
}

func TestServiceRemoveClientMissing(t *testing.T) {
	studioID := uuid.New()
	managerID := uuid.New()
	members := &stubMemberships{rows: map[uuid.UUID]*models.StudioMembership{
		managerID: {StudioID: studioID, UserID: managerID, Role: enums.MemberRoleOwner},
	}}
	f := newFixture(t, &stubStudioRepo{}, members, &stubClients{})

	err := f.svc.RemoveClient(context.Background(), actorFor(managerID, studioID), studioID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
