package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inkstand-ai/inkstand/internal/api/handlers"
	"github.com/inkstand-ai/inkstand/internal/config"
	"github.com/inkstand-ai/inkstand/internal/database"
	"github.com/inkstand-ai/inkstand/internal/jobs"
	"github.com/inkstand-ai/inkstand/internal/openai"
	"github.com/inkstand-ai/inkstand/internal/repository"
	"github.com/inkstand-ai/inkstand/internal/server"
	"github.com/inkstand-ai/inkstand/internal/service"
	"github.com/inkstand-ai/inkstand/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the inkstand API server and the embedding job worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Duration("poll-interval", 10*time.Second, "Embedding worker poll interval")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		// 10% sampling in production, everything in development.
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	sourceRepo := repository.NewSourceRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	insightRepo := repository.NewInsightRepository(pool)
	chunkRepo := repository.NewSourceChunkRepository(pool)
	jobRepo := repository.NewEmbeddingJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	chunker := service.NewChunker(service.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})

	var embeddingClient service.EmbeddingClient
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
	}

	embeddingSvc := service.NewEmbeddingService(embeddingClient, chunker, noteRepo, insightRepo, sourceRepo, chunkRepo)

	var embeddingWorker, requeueWorker *jobs.Worker
	if embeddingClient != nil {
		pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
		embeddingProcessor := jobs.NewEmbeddingWorker(jobRepo, embeddingSvc)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, pollInterval)
		go embeddingWorker.Start(ctx)

		staleProcessor := jobs.NewStaleJobProcessor(jobRepo, 10*time.Minute)
		requeueWorker = jobs.NewWorker(staleProcessor, time.Minute)
		go requeueWorker.Start(ctx)

		log.Info().Msg("embedding worker started")
	} else {
		log.Warn().Msg("no OpenAI API key configured, embedding worker disabled")
	}

	sourceSvc := service.NewSourceService(sourceRepo, chunkRepo, jobRepo, txRunner)
	noteSvc := service.NewNoteService(noteRepo, jobRepo, txRunner)
	insightSvc := service.NewInsightService(insightRepo, sourceRepo, jobRepo, txRunner)
	jobSvc := service.NewEmbeddingJobService(jobRepo, sourceRepo, noteRepo, insightRepo)
	searchSvc := service.NewSearchService(embeddingSvc, noteRepo, chunkRepo)

	routerCfg := server.RouterConfig{
		SourceHandler:    handlers.NewSourceHandler(sourceSvc),
		NoteHandler:      handlers.NewNoteHandler(noteSvc),
		InsightHandler:   handlers.NewInsightHandler(insightSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		EmbeddingHandler: handlers.NewEmbeddingHandler(jobSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}
	if requeueWorker != nil {
		requeueWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	switch {
	case err == migrate.ErrNilVersion:
		log.Info().Msg("migrations: database is empty, nothing to apply")
	case dirty:
		return fmt.Errorf("migration version %d is dirty, manual intervention required", version)
	case upErr == migrate.ErrNoChange:
		log.Info().Uint("version", uint(version)).Msg("migrations: database is up to date")
	default:
		log.Info().Uint("version", uint(version)).Msg("migrations: applied successfully")
	}

	return nil
}
