package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/framewell/framewell-backend/api/routes"
	"github.com/framewell/framewell-backend/internal/albums"
	"github.com/framewell/framewell-backend/internal/auth"
	"github.com/framewell/framewell-backend/internal/clients"
	"github.com/framewell/framewell-backend/internal/invitations"
	"github.com/framewell/framewell-backend/internal/memberships"
	"github.com/framewell/framewell-backend/internal/photos"
	"github.com/framewell/framewell-backend/internal/studios"
	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/internal/users"
	"github.com/framewell/framewell-backend/pkg/auth/session"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db"
	"github.com/framewell/framewell-backend/pkg/email"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/framewell/framewell-backend/pkg/migrate"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/redis"
	"github.com/framewell/framewell-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	emailClient, err := email.NewClient(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap email sender", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	membershipsRepo := memberships.NewRepository(dbClient.DB())
	clientsRepo := clients.NewRepository(dbClient.DB())
	studioRepo := studios.NewRepository(dbClient.DB())
	invitationRepo := invitations.NewRepository(dbClient.DB())
	albumRepo := albums.NewRepository(dbClient.DB())
	photoRepo := photos.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	guard, err := tenant.NewGuard(membershipsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant guard", err)
		os.Exit(1)
	}
	resolver, err := tenant.NewResolver(membershipsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create studio resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        userRepo,
		MembershipsRepo: membershipsRepo,
		Resolver:        resolver,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	studioService, err := studios.NewService(studios.ServiceParams{
		Repo:        studioRepo,
		Memberships: membershipsRepo,
		Clients:     clientsRepo,
		Guard:       guard,
		Tx:          dbClient,
		Outbox:      outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create studio service", err)
		os.Exit(1)
	}

	invitationService, err := invitations.NewService(invitations.ServiceParams{
		Repo:        invitationRepo,
		Memberships: membershipsRepo,
		Clients:     clientsRepo,
		Studios:     studioRepo,
		Guard:       guard,
		Tx:          dbClient,
		Outbox:      outboxSvc,
		Sender:      emailClient,
		Config:      cfg.Invitations,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invitation service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Tx:             dbClient,
		UserRepo:       userRepo,
		Studios:        studioService,
		Invitations:    invitationService,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	switchService, err := auth.NewSwitchStudioService(auth.SwitchStudioServiceParams{
		MembershipsRepo: membershipsRepo,
		UserRepo:        userRepo,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create switch studio service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	albumService, err := albums.NewService(albums.ServiceParams{
		Repo:    albumRepo,
		Clients: clientsRepo,
		Guard:   guard,
		Tx:      dbClient,
		Outbox:  outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create album service", err)
		os.Exit(1)
	}

	photoService, err := photos.NewService(photos.ServiceParams{
		Repo:    photoRepo,
		Albums:  albumRepo,
		Clients: clientsRepo,
		GCS:     gcsClient,
		Guard:   guard,
		Tx:      dbClient,
		Outbox:  outboxSvc,
		GCSCfg:  cfg.GCS,
		Photos:  cfg.Photos,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create photo service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			sessionManager,
			membershipsRepo,
			authService,
			registerService,
			switchService,
			userService,
			studioService,
			invitationService,
			albumService,
			photoService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
