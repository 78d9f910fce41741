package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pdcommons/service/internal/api"
	"github.com/pdcommons/service/internal/config"
	"github.com/pdcommons/service/internal/db"
	"github.com/pdcommons/service/internal/export"
	"github.com/pdcommons/service/internal/ingestion"
	"github.com/pdcommons/service/internal/jobs"
	"github.com/pdcommons/service/internal/repository"
	"github.com/pdcommons/service/internal/storage"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := jobs.Migrate(ctx, conn.Pool); err != nil {
		logger.Fatal("failed to migrate job queue schema", zap.Error(err))
	}

	store, err := storage.NewMinioStore(cfg.ObjectStore)
	if err != nil {
		logger.Fatal("failed to create object store client", zap.Error(err))
	}

	taskRepo := repository.NewBulkUploadTaskRepository(conn.Pool)
	baseFieldRepo := repository.NewBaseFieldRepository(conn.Pool)
	opportunityRepo := repository.NewOpportunityRepository(conn.Pool)
	proposalRepo := repository.NewProposalRepository(conn)
	changemakerRepo := repository.NewChangemakerRepository(conn.Pool)
	userRepo := repository.NewUserRepository(conn.Pool)

	processor := ingestion.NewProcessor(
		taskRepo,
		baseFieldRepo,
		opportunityRepo,
		proposalRepo,
		changemakerRepo,
		store,
		logger,
	)

	queueClient, err := jobs.NewClient(conn.Pool, processor, cfg.QueueWorkers)
	if err != nil {
		logger.Fatal("failed to create job client", zap.Error(err))
	}
	if err := queueClient.Start(ctx); err != nil {
		logger.Fatal("failed to start job client", zap.Error(err))
	}
	queue := jobs.NewQueue(queueClient)

	exportService := export.NewService(opportunityRepo, proposalRepo)
	router := api.NewRouter(api.RouterConfig{
		JWTSecret:   []byte(cfg.JWTSecret),
		Users:       userRepo,
		BulkUploads: api.NewBulkUploadsHandler(taskRepo, queue, logger),
		BaseFields:  api.NewBaseFieldsHandler(baseFieldRepo, logger),
		Proposals:   api.NewProposalsHandler(proposalRepo, logger),
		Export:      export.NewHTTPHandler(exportService, logger),
		Logger:      logger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: false,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("address", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := queueClient.Stop(shutdownCtx); err != nil {
		logger.Warn("job client did not stop cleanly", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
