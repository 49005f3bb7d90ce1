package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicenotes/internal/api/server"
	v1routes "voicenotes/internal/api/v1/routes"
	"voicenotes/internal/api/v1/services"
	openaiclient "voicenotes/internal/app/api/openai"
	"voicenotes/internal/app/api/openai/chat"
	"voicenotes/internal/app/api/openai/whisper"
	"voicenotes/internal/app/api/retry"
	"voicenotes/internal/app/jobs"
	"voicenotes/internal/app/repository"
	"voicenotes/internal/app/repository/pg"
	"voicenotes/internal/app/repository/sqlite"
	"voicenotes/internal/app/security"
	"voicenotes/internal/app/storage"
	"voicenotes/internal/config"
)

var workers int

// Cmd starts the ingestion API server and, when a queue is configured, the
// background worker pool.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the voicenotes ingestion API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	Cmd.Flags().IntVar(&workers, "workers", 2, "background ingestion worker count")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.RequireAPIKey(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dao, err := openDAO(cfg)
	if err != nil {
		return err
	}
	defer dao.Close()

	client, err := openaiclient.NewClient(cfg.OpenAI.APIKey)
	if err != nil {
		return err
	}
	policy := retry.DefaultPolicy()
	transcriber := whisper.NewRemoteTranscriber(client, policy)
	structurer := chat.NewNoteStructurer(client, cfg.OpenAI.ChatModel, policy)

	validator := security.NewValidator(security.Config{
		MaxUploadSize:   cfg.Upload.MaxUploadSize,
		TempDir:         cfg.Upload.TempDir,
		HeuristicPolicy: cfg.Upload.HeuristicPolicy,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var archiver storage.Archiver
	if cfg.Archive.Endpoint != "" {
		archiver, err = storage.NewMinioArchiver(ctx, storage.MinioOptions{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("archive storage unavailable: %w", err)
		}
		logger.Info("payload archival enabled", "bucket", cfg.Archive.Bucket)
	}

	noteService := services.NewNoteService(validator, transcriber, structurer, dao, archiver, logger)

	container := &v1routes.ServiceContainer{
		NoteService:   noteService,
		ExportService: services.NewExportService(dao),
	}

	var worker *jobs.Worker
	if cfg.Redis.Addr != "" {
		queue := jobs.NewRedisQueue(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		container.JobService = services.NewJobService(validator, queue)

		workerLogger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create worker logger: %w", err)
		}
		defer workerLogger.Sync()

		worker = jobs.NewWorker(queue, services.NewJobHandler(noteService), workerLogger, workers)
		worker.Start(ctx)
		logger.Info("background ingestion enabled", "workers", workers)
	}

	srv := server.NewServer(server.Config{
		Port:         cfg.Server.Port,
		Mode:         cfg.Server.Mode,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}, container, logger)

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if worker != nil {
		worker.Wait()
	}
	return nil
}

func openDAO(cfg *config.Config) (repository.NoteDAO, error) {
	switch cfg.DB.Driver {
	case "postgres":
		return pg.NewNoteDB(cfg.DB.PostgresDSN)
	default:
		return sqlite.NewNoteDB(cfg.DB.SQLitePath)
	}
}
