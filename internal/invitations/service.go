package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/pkg/config"
	dbpkg "github.com/framewell/framewell-backend/pkg/db"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/email"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
)

// redemptionMessage is the single public message for every lookup failure so
// probing cannot distinguish wrong email from wrong type or expiry.
const redemptionMessage = "invalid or expired invitation"

const (
	membershipConstraint = "ux_studio_memberships_studio_user"
	clientConstraint     = "ux_studio_clients_studio_user"
)

type invitationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*models.Invitation, error)
	CreateTx(tx *gorm.DB, invitation *models.Invitation) error
	ListStudioInvitations(ctx context.Context, studioID uuid.UUID) ([]models.Invitation, error)
	MarkAcceptedTx(tx *gorm.DB, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type membershipsRepository interface {
	GetMembershipTx(tx *gorm.DB, userID, studioID uuid.UUID) (*models.StudioMembership, error)
	CreateMembershipTx(tx *gorm.DB, studioID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.StudioMembership, error)
}

type clientsRepository interface {
	GetClientTx(tx *gorm.DB, userID, studioID uuid.UUID) (*models.StudioClient, error)
	CreateClientTx(tx *gorm.DB, studioID, userID uuid.UUID, invitedBy *uuid.UUID) (*models.StudioClient, error)
}

type studiosRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Studio, error)
}

type authorizer interface {
	Authorize(ctx context.Context, actor tenant.Actor, resourceStudioID uuid.UUID, level tenant.AccessLevel) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Identity is the authenticated user redeeming an invitation.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Service exposes the invitation lifecycle.
type Service interface {
	Create(ctx context.Context, actor tenant.Actor, input CreateInvitationInput) (*InvitationDTO, error)
	LookupRedeemable(ctx context.Context, invitationID uuid.UUID, emailAddr string, expectedType enums.InvitationType) (*InvitationDTO, error)
	Accept(ctx context.Context, identity Identity, invitationID uuid.UUID, expectedType enums.InvitationType) (*AcceptResult, error)
	AcceptInTx(ctx context.Context, tx *gorm.DB, identity Identity, invitationID uuid.UUID, expectedType enums.InvitationType) (*AcceptResult, error)
	ListStudio(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]InvitationDTO, error)
	Revoke(ctx context.Context, actor tenant.Actor, invitationID uuid.UUID) error
}

type service struct {
	repo        invitationRepository
	memberships membershipsRepository
	clients     clientsRepository
	studios     studiosRepository
	guard       authorizer
	tx          txRunner
	outbox      outboxEmitter
	sender      email.Sender
	cfg         config.InvitationsConfig
	now         func() time.Time
}

// ServiceParams wires the invitation service dependencies.
type ServiceParams struct {
	Repo        invitationRepository
	Memberships membershipsRepository
	Clients     clientsRepository
	Studios     studiosRepository
	Guard       authorizer
	Tx          txRunner
	Outbox      outboxEmitter
	Sender      email.Sender
	Config      config.InvitationsConfig
}

// NewService builds an invitation service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("invitation repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if params.Studios == nil {
		return nil, fmt.Errorf("studios repository required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("guard required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	return &service{
		repo:        params.Repo,
		memberships: params.Memberships,
		clients:     params.Clients,
		studios:     params.Studios,
		guard:       params.Guard,
		tx:          params.Tx,
		outbox:      params.Outbox,
		sender:      params.Sender,
		cfg:         params.Config,
		now:         time.Now,
	}, nil
}

// Create issues a pending invitation and delivers the email after the row
// commits, so the invitee never receives a link to a row that does not
// exist. Delivery failure removes the row and fails the call. Duplicate
// outstanding invitations for the same email are allowed.
func (s *service) Create(ctx context.Context, actor tenant.Actor, input CreateInvitationInput) (*InvitationDTO, error) {
	if err := s.guard.Authorize(ctx, actor, input.StudioID, tenant.AccessManager); err != nil {
		return nil, err
	}

	emailAddr := strings.TrimSpace(input.Email)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitation type")
	}

	role := input.Role
	switch input.Type {
	case enums.InvitationTypeStudioMember:
		if role == "" {
			role = enums.MemberRoleMember
		}
		if !role.IsValid() || role == enums.MemberRoleOwner {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitation role")
		}
	case enums.InvitationTypeStudioClient:
		role = enums.MemberRoleMember
	}

	studio, err := s.studios.FindByID(ctx, input.StudioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "studio not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load studio")
	}

	invitation := &models.Invitation{
		StudioID:        input.StudioID,
		Email:           emailAddr,
		Type:            input.Type,
		Role:            role,
		Status:          enums.InvitationStatusPending,
		InvitedByUserID: *actor.UserID,
		ExpiresAt:       s.now().Add(s.ttlFor(input.Type)).UTC(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, invitation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, s.invitationMessage(studio.Name, invitation)); err != nil {
		// The link was never delivered, so the row is useless. If the delete
		// also fails, the leftover pending row is unredeemable by anyone who
		// was not invited and the retention sweep removes it after expiry.
		_ = s.repo.Delete(ctx, invitation.ID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send invitation email")
	}
	return FromModel(invitation), nil
}

// LookupRedeemable fetches the invitation the given identity may still
// redeem. Every mismatch collapses into the same not-found answer.
func (s *service) LookupRedeemable(ctx context.Context, invitationID uuid.UUID, emailAddr string, expectedType enums.InvitationType) (*InvitationDTO, error) {
	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if err := s.validateRedeemable(invitation, emailAddr, expectedType); err != nil {
		return nil, err
	}
	return FromModel(invitation), nil
}

// Accept redeems the invitation for an existing account in one transaction.
func (s *service) Accept(ctx context.Context, identity Identity, invitationID uuid.UUID, expectedType enums.InvitationType) (*AcceptResult, error) {
	var result *AcceptResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := s.AcceptInTx(ctx, tx, identity, invitationID, expectedType)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptInTx performs the acceptance inside the caller's transaction so
// registration can create the user in the same commit. The unique constraint,
// not the pre-check, decides concurrent double-accepts.
func (s *service) AcceptInTx(ctx context.Context, tx *gorm.DB, identity Identity, invitationID uuid.UUID, expectedType enums.InvitationType) (*AcceptResult, error) {
	invitation, err := s.repo.FindByIDForUpdateTx(tx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if err := s.validateRedeemable(invitation, identity.Email, expectedType); err != nil {
		return nil, err
	}

	result := &AcceptResult{
		InvitationID: invitation.ID,
		StudioID:     invitation.StudioID,
		Type:         invitation.Type,
	}

	switch invitation.Type {
	case enums.InvitationTypeStudioMember:
		if _, err := s.memberships.GetMembershipTx(tx, identity.UserID, invitation.StudioID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a member of this studio")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
		}
		invitedBy := invitation.InvitedByUserID
		if _, err := s.memberships.CreateMembershipTx(tx, invitation.StudioID, identity.UserID, invitation.Role, &invitedBy); err != nil {
			if dbpkg.IsUniqueViolation(err, membershipConstraint) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a member of this studio")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
		}
		role := invitation.Role
		result.Role = &role
	case enums.InvitationTypeStudioClient:
		if _, err := s.clients.GetClientTx(tx, identity.UserID, invitation.StudioID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a client of this studio")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check client")
		}
		invitedBy := invitation.InvitedByUserID
		if _, err := s.clients.CreateClientTx(tx, invitation.StudioID, identity.UserID, &invitedBy); err != nil {
			if dbpkg.IsUniqueViolation(err, clientConstraint) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a client of this studio")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
	}

	acceptedAt := s.now().UTC()
	if err := s.repo.MarkAcceptedTx(tx, invitation.ID, acceptedAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invitation accepted")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventInvitationAccepted,
		AggregateType: enums.AggregateInvitation,
		AggregateID:   invitation.ID,
		Actor:         &outbox.ActorRef{UserID: identity.UserID, StudioID: &invitation.StudioID},
		Data: payloads.InvitationAcceptedEvent{
			InvitationID: invitation.ID,
			StudioID:     invitation.StudioID,
			UserID:       identity.UserID,
			Type:         invitation.Type,
			Role:         result.Role,
			AcceptedAt:   acceptedAt,
		},
		Version: 1,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit invitation accepted event")
	}

	return result, nil
}

func (s *service) ListStudio(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]InvitationDTO, error) {
	if err := s.guard.Authorize(ctx, actor, studioID, tenant.AccessManager); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListStudioInvitations(ctx, studioID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}
	out := make([]InvitationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Revoke withdraws a pending invitation. Accepted rows are immutable.
func (s *service) Revoke(ctx context.Context, actor tenant.Actor, invitationID uuid.UUID) error {
	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if err := s.guard.Authorize(ctx, actor, invitation.StudioID, tenant.AccessManager); err != nil {
		return err
	}
	if invitation.Status != enums.InvitationStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation already accepted")
	}
	if err := s.repo.Delete(ctx, invitationID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete invitation")
	}
	return nil
}

func (s *service) validateRedeemable(invitation *models.Invitation, emailAddr string, expectedType enums.InvitationType) error {
	if invitation.Status != enums.InvitationStatusPending {
		return pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
	}
	if invitation.Type != expectedType {
		return pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
	}
	if !s.emailsMatch(invitation.Email, emailAddr) {
		return pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
	}
	if !s.now().Before(invitation.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeNotFound, redemptionMessage)
	}
	return nil
}

func (s *service) emailsMatch(invited, submitted string) bool {
	if s.cfg.NormalizeEmail {
		return strings.EqualFold(strings.TrimSpace(invited), strings.TrimSpace(submitted))
	}
	return invited == submitted
}

func (s *service) ttlFor(invitationType enums.InvitationType) time.Duration {
	switch invitationType {
	case enums.InvitationTypeStudioClient:
		if s.cfg.ClientTTL > 0 {
			return s.cfg.ClientTTL
		}
		return 30 * 24 * time.Hour
	default:
		if s.cfg.MemberTTL > 0 {
			return s.cfg.MemberTTL
		}
		return 7 * 24 * time.Hour
	}
}

func (s *service) invitationMessage(studioName string, invitation *models.Invitation) email.Message {
	link := strings.TrimRight(s.cfg.RedeemBaseURL, "/") + "/" + invitation.ID.String()
	var subject, kind string
	switch invitation.Type {
	case enums.InvitationTypeStudioClient:
		subject = fmt.Sprintf("%s shared their galleries with you", studioName)
		kind = "view the galleries shared with you"
	default:
		subject = fmt.Sprintf("You have been invited to join %s", studioName)
		kind = fmt.Sprintf("join the team as %s", invitation.Role)
	}
	text := fmt.Sprintf(
		"You have been invited to %s on Framewell.\n\nOpen %s to accept. The invitation expires on %s.",
		kind, link, invitation.ExpiresAt.Format("January 2, 2006"),
	)
	html := fmt.Sprintf(
		"<p>You have been invited to %s on Framewell.</p><p><a href=%q>Accept invitation</a></p><p>The invitation expires on %s.</p>",
		kind, link, invitation.ExpiresAt.Format("January 2, 2006"),
	)
	return email.Message{
		To:       invitation.Email,
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	}
}
