package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openlms/course-app/internal/api"
	"openlms/course-app/internal/certificate"
	"openlms/course-app/internal/config"
	"openlms/course-app/internal/notify"
	"openlms/course-app/internal/repository/mongo"
	"openlms/course-app/internal/sandbox"
	"openlms/course-app/internal/service"
	"openlms/course-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Starting Course App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	log.Info().Msg("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to MongoDB")
	}
	defer func() {
		log.Info().Msg("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info().Msg("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureCourseIndexes(ctx, appDB)
		mongo.EnsureEnrollmentIndexes(ctx, appDB.Collection("enrollments"))
		mongo.EnsurePurchaseIndexes(ctx, appDB.Collection("purchases"))
		log.Info().Msg("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	certificateStore, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	courseRepo := mongo.NewMongoCourseRepository(appDB)
	enrollmentRepo := mongo.NewMongoEnrollmentRepository(appDB)
	purchaseRepo := mongo.NewMongoPurchaseRepository(appDB)

	// --- Sandbox Provisioning ---
	provisioner := sandbox.NewHTTPProvisioner(cfg.Sandbox.Endpoint)
	dispatcher := sandbox.NewDispatcher(provisioner, cfg.Sandbox.QueueSize, cfg.Sandbox.Timeout, log.Logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	// --- Notifications ---
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = notify.NewSendGridNotifier(cfg.Notify)
		log.Info().Msg("SendGrid notifications enabled.")
	}

	renderer, err := certificate.NewHTMLRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load certificate templates")
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, purchaseRepo)
	enrollmentService := service.NewEnrollmentService(userRepo, courseRepo, enrollmentRepo, purchaseRepo, dispatcher, notifier)
	progressService := service.NewProgressService(userRepo, courseRepo, enrollmentRepo, notifier)
	certificateService := service.NewCertificateService(
		userRepo,
		courseRepo,
		enrollmentRepo,
		certificateStore,
		renderer,
		certificate.NewWkhtmltopdfConverter(),
		cfg.Certificate.RenderTimeout,
	)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(router, cfg.JWT.Secret, authService, courseService, enrollmentService, progressService, certificateService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("address", cfg.Server.Address).Msg("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting.")
}
