package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/prepview/prepview-api/internal/config"
	"github.com/prepview/prepview-api/internal/database"
	"github.com/prepview/prepview-api/internal/handler"
	"github.com/prepview/prepview-api/internal/middleware"
	"github.com/prepview/prepview-api/internal/queue"
	"github.com/prepview/prepview-api/internal/repository"
	"github.com/prepview/prepview-api/internal/router"
	"github.com/prepview/prepview-api/internal/service"
	"github.com/prepview/prepview-api/pkg/llm"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, report caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, evaluation events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	var generator llm.Generator
	client, err := llm.New(llm.Config{
		Provider:      cfg.LLMProvider,
		APIKey:        cfg.LLMAPIKey,
		BaseURL:       cfg.LLMAPIURL,
		Model:         cfg.LLMModel,
		MaxConcurrent: cfg.LLMMaxConcurrent,
		Logger:        logger,
	})
	switch {
	case err == nil:
		generator = client
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn().Msg("llm api key not set, question generation and evaluation disabled")
	default:
		log.Fatalf("failed to create llm client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	authService := service.NewAuthService(userRepo, validate, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, logger)
	interviewService := service.NewInterviewService(interviewRepo, generator, validate, logger)
	evaluationService := service.NewEvaluationService(answerRepo, interviewRepo, evaluationRepo, generator, natsConn, service.EvaluationConfig{
		Timeout:      cfg.EvaluateTimeout,
		EventSubject: cfg.EvaluationEvents,
	}, logger)
	reportService := service.NewReportService(interviewRepo, redisClient, cfg.ReportCacheTTL, logger)

	evaluationQueue := queue.New(evaluationService, queue.Config{
		Workers: cfg.QueueWorkers,
		Buffer:  cfg.QueueBuffer,
		Logger:  logger,
	})
	queueCtx, cancelQueue := context.WithCancel(context.Background())
	defer cancelQueue()
	evaluationQueue.Start(queueCtx)

	answerService := service.NewAnswerService(answerRepo, interviewRepo, evaluationQueue, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	interviewHandler := handler.NewInterviewHandler(interviewService, reportService, logger)
	answerHandler := handler.NewAnswerHandler(answerService, evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		InterviewHandler: interviewHandler,
		AnswerHandler:    answerHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, evaluationQueue)
}

func waitForShutdown(app *fiber.App, evaluationQueue *queue.Queue) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	evaluationQueue.Stop()

	log.Println("server stopped")
}
