package cmd

import (
	"bitwise74/shop-api/app"
	"bitwise74/shop-api/aws"
	"bitwise74/shop-api/config"
	"bitwise74/shop-api/db"
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/security"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server together with the account cleanup schedule and, with
queue.backend=asynq, the mail worker. Everything stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().Int("host.port", 8080, "Port to listen on")
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Driver, err)
	}

	tokens, err := security.NewTokens(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		return err
	}

	lists, err := internal.NewLists(conn, cfg.List)
	if err != nil {
		return fmt.Errorf("failed to build list queries, %w", err)
	}

	d := &internal.Deps{
		Config: cfg,
		DB:     conn,
		Argon:  security.NewArgon(),
		Tokens: tokens,
		Lists:  lists,
	}

	if cfg.Storage.Enabled {
		s3, err := aws.NewS3(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client, %w", err)
		}
		d.Images = s3
	} else {
		zap.L().Warn("Storage disabled, product image uploads will be rejected")
	}

	mailer := service.NewSMTPMailer(cfg.Mail)
	var worker *service.MailWorker

	switch cfg.Queue.Backend {
	case "asynq":
		opt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

		q := service.NewTaskQueue(opt, cfg.Queue.MaxRetry)
		defer q.Close()
		d.Notifier = q

		worker = service.NewMailWorker(opt, cfg.Queue.Workers, mailer)
		if err := worker.Start(); err != nil {
			return fmt.Errorf("failed to start mail worker, %w", err)
		}
	default:
		q := service.NewMailQueue(mailer, cfg.Queue.Workers, cfg.Queue.Size)
		q.Start()
		defer q.Close()
		d.Notifier = q
	}

	cleanup, err := service.NewAccountCleanup(conn, cfg.Cleanup.Schedule, cfg.Cleanup.Grace)
	if err != nil {
		return err
	}
	cleanup.Start()

	router, closeRouter := app.NewRouter(d)
	defer closeRouter()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	serverErr := make(chan error, 1)

	wg.Go(func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	select {
	case <-ctx.Done():
		zap.L().Info("Shutting down")
	case err = <-serverErr:
		zap.L().Error("Server stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	wg.Go(func() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Failed to shut down HTTP server", zap.Error(err))
		}
	})

	wg.Go(func() {
		<-cleanup.Stop().Done()
	})

	if worker != nil {
		wg.Go(worker.Shutdown)
	}

	wg.Wait()
	zap.L().Info("Server stopped")

	return err
}
