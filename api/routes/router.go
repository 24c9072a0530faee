package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/framewell/framewell-backend/api/controllers"
	"github.com/framewell/framewell-backend/api/middleware"
	"github.com/framewell/framewell-backend/internal/albums"
	"github.com/framewell/framewell-backend/internal/auth"
	"github.com/framewell/framewell-backend/internal/invitations"
	"github.com/framewell/framewell-backend/internal/photos"
	"github.com/framewell/framewell-backend/internal/studios"
	"github.com/framewell/framewell-backend/internal/users"
	"github.com/framewell/framewell-backend/pkg/auth/session"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db"
	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/framewell/framewell-backend/pkg/redis"
	"github.com/framewell/framewell-backend/pkg/storage/gcs"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessionManager sessionManager,
	membershipChecker middleware.MembershipChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	switchService auth.SwitchStudioService,
	userService users.Service,
	studioService studios.Service,
	invitationService invitations.Service,
	albumService albums.Service,
	photoService photos.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.AuthRateLimit(registerPolicy, redisClient, logg),
				middleware.Idempotency(redisClient, logg),
			)
			r.Post("/register", controllers.AuthRegister(registerService, logg))
			r.Post("/register/member", controllers.AuthRegisterWithInvitation(registerService, enums.InvitationTypeStudioMember, logg))
			r.Post("/register/client", controllers.AuthRegisterWithInvitation(registerService, enums.InvitationTypeStudioClient, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
			r.Post("/switch-studio", controllers.AuthSwitchStudio(switchService, logg))
		})
	})

	r.Route("/api/v1/invitations", func(r chi.Router) {
		// Lookup stays unauthenticated so an invitee can preview the
		// invitation from their email link before creating an account.
		r.Get("/{invitationId}", controllers.InvitationLookup(invitationService, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, sessionManager, logg),
				middleware.Idempotency(redisClient, logg),
			)
			r.Post("/{invitationId}/accept/member", controllers.InvitationAccept(invitationService, userService, enums.InvitationTypeStudioMember, logg))
			r.Post("/{invitationId}/accept/client", controllers.InvitationAccept(invitationService, userService, enums.InvitationTypeStudioClient, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/users/me", controllers.UserMe(userService, logg))

		// Client accounts carry no studio context, so these sit outside the
		// StudioContext gate. Photo listing branches on user type internally.
		r.Get("/albums/shared-with-me", controllers.AlbumsSharedWithMe(albumService, logg))
		r.Get("/albums/{albumId}/photos", controllers.AlbumPhotosList(photoService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.StudioContext(logg))

			manageStudio := middleware.RequireStudioRoles(membershipChecker, logg, enums.MemberRoleOwner, enums.MemberRoleAdmin)
			ownStudio := middleware.RequireStudioRoles(membershipChecker, logg, enums.MemberRoleOwner)

			r.Route("/studios/me", func(r chi.Router) {
				r.Get("/", controllers.StudioProfile(studioService, logg))
				r.With(manageStudio).Put("/", controllers.StudioUpdate(studioService, logg))
				r.With(ownStudio).Delete("/", controllers.StudioDelete(studioService, logg))

				r.Group(func(r chi.Router) {
					r.Use(manageStudio)
					r.Get("/users", controllers.StudioUsers(studioService, logg))
					r.Delete("/users/{userId}", controllers.StudioRemoveUser(studioService, logg))
					r.Get("/clients", controllers.StudioClients(studioService, logg))
					r.Delete("/clients/{userId}", controllers.StudioRemoveClient(studioService, logg))
					r.Post("/invitations", controllers.InvitationCreate(invitationService, logg))
					r.Get("/invitations", controllers.InvitationsListStudio(invitationService, logg))
					r.Delete("/invitations/{invitationId}", controllers.InvitationRevoke(invitationService, logg))
				})
			})

			r.Get("/albums", controllers.AlbumsList(albumService, logg))
			r.Post("/albums", controllers.AlbumCreate(albumService, logg))
			r.Get("/albums/{albumId}", controllers.AlbumGet(albumService, logg))
			r.Patch("/albums/{albumId}", controllers.AlbumUpdate(albumService, logg))
			r.Delete("/albums/{albumId}", controllers.AlbumDelete(albumService, logg))
			r.Post("/albums/{albumId}/photos/presign", controllers.PhotoPresignUpload(photoService, logg))
			r.With(manageStudio).Post("/albums/{albumId}/share", controllers.AlbumShare(albumService, logg))
			r.With(manageStudio).Post("/albums/{albumId}/unshare", controllers.AlbumUnshare(albumService, logg))

			r.Post("/photos/{photoId}/confirm", controllers.PhotoConfirmUpload(photoService, logg))
			r.Delete("/photos/{photoId}", controllers.PhotoDelete(photoService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireUserType(enums.UserTypeAdmin, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/{userId}", controllers.AdminUserGet(userService, logg))
			r.Patch("/{userId}/type", controllers.AdminUserUpdateType(userService, logg))
		})
	})

	return r
}
