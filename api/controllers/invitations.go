package controllers

import (
	"net/http"
	"strings"

	"github.com/framewell/framewell-backend/api/middleware"
	"github.com/framewell/framewell-backend/api/responses"
	"github.com/framewell/framewell-backend/api/validators"
	"github.com/framewell/framewell-backend/internal/invitations"
	"github.com/framewell/framewell-backend/internal/users"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/logger"
)

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"type" validate:"required"`
	Role  string `json:"role,omitempty"`
}

// InvitationCreate issues an invitation for the active studio.
func InvitationCreate(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		studioID, err := activeStudioID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createInvitationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invType, err := enums.ParseInvitationType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invitation type"))
			return
		}

		input := invitations.CreateInvitationInput{
			StudioID: studioID,
			Email:    body.Email,
			Type:     invType,
		}
		if invType == enums.InvitationTypeStudioMember {
			role, err := enums.ParseMemberRole(body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member role"))
				return
			}
			input.Role = role
		}

		invitation, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invitation)
	}
}

// InvitationsListStudio returns every invitation issued by the active studio.
func InvitationsListStudio(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		studioID, err := activeStudioID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListStudio(r.Context(), middleware.ActorFromContext(r.Context()), studioID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// InvitationRevoke deletes a pending invitation.
func InvitationRevoke(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		invitationID, err := uuidParam(r, "invitationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), middleware.ActorFromContext(r.Context()), invitationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// InvitationLookup is the unauthenticated preview an invitee hits from their
// email link. It answers only for the matching email and expected type so the
// invitation ID alone leaks nothing.
func InvitationLookup(svc invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		invitationID, err := uuidParam(r, "invitationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emailAddr := strings.TrimSpace(r.URL.Query().Get("email"))
		if emailAddr == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email is required"))
			return
		}

		invType, err := enums.ParseInvitationType(r.URL.Query().Get("type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invitation type"))
			return
		}

		invitation, err := svc.LookupRedeemable(r.Context(), invitationID, emailAddr, invType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invitation)
	}
}

// InvitationAccept redeems an invitation for an already-authenticated account.
// The route fixes the expected type so the two admission flows cannot be
// crossed.
func InvitationAccept(svc invitations.Service, userSvc users.Service, invitationType enums.InvitationType, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || userSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invitation service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitationID, err := uuidParam(r, "invitationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userType, err := enums.ParseUserType(middleware.UserTypeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session"))
			return
		}

		// The stored invitation is matched against the account's email, not
		// anything the caller supplies.
		account, err := userSvc.GetByID(r.Context(), userID, userID, userType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Accept(r.Context(), invitations.Identity{UserID: userID, Email: account.Email}, invitationID, invitationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
