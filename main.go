package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/biku1998/memo-mesh/pkg/config"
	"github.com/biku1998/memo-mesh/pkg/database"
	"github.com/biku1998/memo-mesh/pkg/handlers"
	"github.com/biku1998/memo-mesh/pkg/llm"
	"github.com/biku1998/memo-mesh/pkg/logging"
	"github.com/biku1998/memo-mesh/pkg/repositories"
	"github.com/biku1998/memo-mesh/pkg/services"
	"github.com/biku1998/memo-mesh/pkg/tasks"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrations run over database/sql; the pgx pool is used for everything else.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	breaker := llm.NewCircuitBreaker(llm.DefaultCircuitBreakerConfig())
	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, breaker, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	extractor := llm.NewExtractor(llmClient, logger)

	runner := tasks.NewRunner(tasks.Config{
		MaxConcurrent: cfg.Enrichment.MaxConcurrent,
		TaskTimeout:   cfg.Enrichment.TaskTimeout,
		RatePerSecond: cfg.Enrichment.RatePerSecond,
	}, logger)

	projectRepo := repositories.NewProjectRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	memoryRepo := repositories.NewMemoryRepository(db)
	embeddingRepo := repositories.NewEmbeddingRepository(db)
	entityRepo := repositories.NewEntityRepository(db)
	relationRepo := repositories.NewRelationRepository(db)

	linker := services.NewKnowledgeLinker(
		entityRepo, memoryRepo, embeddingRepo, relationRepo,
		llmClient, runner, cfg.LLM.EmbeddingModel, logger)
	ingestion := services.NewIngestionService(
		projectRepo, messageRepo, embeddingRepo,
		llmClient, extractor, linker, runner, cfg.LLM.EmbeddingModel, logger)
	retrieval := services.NewRetrievalService(
		projectRepo, embeddingRepo, llmClient, cfg.LLM.EmbeddingModel, logger)
	projects := services.NewProjectService(projectRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, linker, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projects, logger).RegisterRoutes(mux)
	handlers.NewMessagesHandler(ingestion, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(retrieval, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logger.Info("Starting memo-mesh",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown", zap.Error(err))
	}

	// Let in-flight enrichment tasks finish; they are bounded by their
	// own per-task timeout.
	runner.Wait()
}
