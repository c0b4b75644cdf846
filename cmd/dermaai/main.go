package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/filestore"
	"github.com/xxxsen/dermaai/internal/handler"
	"github.com/xxxsen/dermaai/internal/inference"
	"github.com/xxxsen/dermaai/internal/mail"
	"github.com/xxxsen/dermaai/internal/middleware"
	"github.com/xxxsen/dermaai/internal/pkg/jwt"
	"github.com/xxxsen/dermaai/internal/repo"
	_ "github.com/xxxsen/dermaai/internal/repo/memrepo"
	_ "github.com/xxxsen/dermaai/internal/repo/mongorepo"
	"github.com/xxxsen/dermaai/internal/repo/pgrepo"
	"github.com/xxxsen/dermaai/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dermaai",
		Short: "dermaai backend server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real environment variables win.
			_ = godotenv.Load()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run dermaai server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply postgres migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Type != "postgres" {
				return fmt.Errorf("migrate only applies to the postgres store, got %s", cfg.Store.Type)
			}
			ctx := context.Background()
			db, err := pgrepo.Open(ctx, cfg.Store.Postgres)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()
			if err := pgrepo.ApplyMigrations(ctx, db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			logutil.GetLogger(ctx).Info("migrations applied")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("store", cfg.Store.Type),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("inference", cfg.Inference.Provider),
		zap.Bool("async_mail", cfg.Mail.Async),
	)

	store, err := repo.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	files, err := filestore.New(cfg.FileStore)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("init file store: %w", err)
	}
	classifier, err := inference.New(cfg.Inference.Provider, cfg.Inference.Model, cfg.Inference.Data)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("init inference provider: %w", err)
	}
	classifier = inference.WithTimeout(classifier, cfg.Inference.Timeout())

	var (
		mailer     mail.Sender = mail.NewSMTPSender(cfg.Mail)
		dispatcher *mail.Dispatcher
	)
	if cfg.Mail.Async {
		dispatcher = mail.NewDispatcher(mailer, cfg.Mail.Workers, cfg.Mail.QueueSize)
		mailer = dispatcher
	}

	issuer := jwt.NewIssuer([]byte(cfg.JWTSecret),
		jwt.WithSecret(jwt.KindEmailVerification, []byte(cfg.VerificationSecret)))
	authService := service.NewAuthService(store, issuer, mailer, service.AuthConfig{
		AccessTokenTTL:       cfg.AccessTokenTTL(),
		VerificationTokenTTL: cfg.VerificationTokenTTL(),
		ResendCooldown:       cfg.VerificationCooldown(),
		BcryptCost:           cfg.BcryptCost,
		FrontendURL:          cfg.FrontendURL,
	})
	predictions := service.NewPredictionService(classifier, files, store)
	sessions := handler.NewSessionFactory(handler.NewCookieOptions(cfg.Cookie, cfg.AccessTokenTTL()))

	deps := handler.RouterDeps{
		Auth:        handler.NewAuthHandler(authService, sessions),
		Predict:     handler.NewPredictHandler(predictions, cfg.UploadMaxBytes),
		History:     handler.NewHistoryHandler(service.NewHistoryService(store)),
		Files:       handler.NewFileHandler(files),
		AuthService: authService,
		Sessions:    sessions,
		GuestLimit:  time.Duration(cfg.GuestRateLimitSeconds) * time.Second,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("init web engine: %w", err)
	}
	server := &http.Server{Addr: addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))
	runErr := serveUntil(sigCtx, server)
	if runErr != nil {
		logutil.GetLogger(ctx).Error("server error", zap.Error(runErr))
	}
	logutil.GetLogger(ctx).Info("server stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logutil.GetLogger(ctx).Warn("http shutdown", zap.Error(err))
	}
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logutil.GetLogger(ctx).Warn("mail queue not drained", zap.Error(err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logutil.GetLogger(ctx).Warn("close store", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("serve http: %w", runErr)
	}
	return nil
}

// serveUntil runs server until ctx is done or the listener fails.
func serveUntil(ctx context.Context, server *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		return err
	}
}
