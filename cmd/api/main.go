package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/config"
	"github.com/Marrwan/student-platform-backend-sub000/internal/database"
	"github.com/Marrwan/student-platform-backend-sub000/internal/handler"
	"github.com/Marrwan/student-platform-backend-sub000/internal/middleware"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
	"github.com/Marrwan/student-platform-backend-sub000/internal/router"
	"github.com/Marrwan/student-platform-backend-sub000/internal/service"
	"github.com/Marrwan/student-platform-backend-sub000/pkg/paystack"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.ChallengeRegistration{},
		&models.Project{},
		&models.Submission{},
		&models.SimilarityFinding{},
		&models.LateFeePayment{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional: without a broker the notifier degrades to log-only.
	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = nats.Connect(cfg.NatsURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notifications degrade to log-only")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	gateway, err := paystack.New(paystack.Config{
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
		Timeout:   cfg.GatewayTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create paystack client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	notifier := service.NewNatsNotifier(natsConn, cfg.NotifySubject, logger)

	projectRepo := repository.NewProjectRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	similarityRepo := repository.NewSimilarityRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	userRepo := repository.NewUserRepository(db)

	paymentService := service.NewPaymentService(paymentRepo, projectRepo, userRepo, gateway, validate, logger)
	projectService := service.NewProjectService(projectRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, projectRepo, similarityRepo, paymentService, validate, notifier, cfg.SimilarityThreshold, cfg.ReviewerEmail, logger)
	leaderboardService := service.NewLeaderboardService(submissionRepo, leaderboardRepo, challengeRepo, userRepo, redisClient, cfg.LeaderboardCacheTTL, validate, logger)
	reviewService := service.NewReviewService(submissionRepo, validate, notifier, leaderboardService, logger)
	challengeService := service.NewChallengeService(challengeRepo, userRepo, validate, logger)
	unlockService := service.NewUnlockService(projectRepo, logger)

	scheduler := service.NewScheduler(unlockService, leaderboardService, logger)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	projectHandler := handler.NewProjectHandler(projectService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, reviewService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.PaystackSecretKey, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProjectHandler:     projectHandler,
		SubmissionHandler:  submissionHandler,
		PaymentHandler:     paymentHandler,
		LeaderboardHandler: leaderboardHandler,
		ChallengeHandler:   challengeHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
