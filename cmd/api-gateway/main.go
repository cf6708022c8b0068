package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/tkmproject/tkm-api/api/swagger"
	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/handler"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/repository"
	"github.com/tkmproject/tkm-api/internal/service"
	"github.com/tkmproject/tkm-api/internal/validation"
	"github.com/tkmproject/tkm-api/pkg/cache"
	"github.com/tkmproject/tkm-api/pkg/config"
	"github.com/tkmproject/tkm-api/pkg/database"
	"github.com/tkmproject/tkm-api/pkg/export"
	"github.com/tkmproject/tkm-api/pkg/logger"
	"github.com/tkmproject/tkm-api/pkg/mailer"
	"github.com/tkmproject/tkm-api/pkg/relay"
	"github.com/tkmproject/tkm-api/pkg/storage"
)

// @title TKM Project API
// @version 1.0.0
// @description Registrations, contact inquiries and the admin dashboard for the TKM music school
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Flush()
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()
	formValidator := validation.New(nil)

	// Mirror: the document store the dashboard subscribes to.
	var (
		mirror   interface{ Insert(context.Context, string, map[string]interface{}) (*models.Document, error) }
		students service.LiveCollection
		teachers service.LiveCollection
	)
	switch cfg.Mirror.Driver {
	case config.MirrorDriverMemory:
		store := repository.NewMemoryStore()
		mirror = store
		students = store.Collection(models.CollectionRegistrations)
		teachers = store.Collection(models.CollectionTeacherApplications)
	default:
		submissions := repository.NewSubmissionRepository(db)
		if err := submissions.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare submissions schema", zap.Error(err))
		}
		listen := database.NewListenerFactory(cfg.Database)
		mirror = submissions
		students = repository.NewPostgresCollection(models.CollectionRegistrations, submissions, listen, logr)
		teachers = repository.NewPostgresCollection(models.CollectionTeacherApplications, submissions, listen, logr)
	}

	rl, err := newRelay(ctx, cfg.Relay)
	if err != nil {
		logr.Fatal("failed to init relay", zap.Error(err))
	}

	var copyMail *service.CopyMailService
	if cfg.Mail.SendGridAPIKey != "" {
		copyMail = service.NewCopyMailService(mailer.NewSendGrid(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress), logr)
		copyMail.Start(ctx)
		defer copyMail.Stop()
	} else {
		logr.Info("copy mails disabled, SENDGRID_API_KEY not set")
	}

	var mail interface{ SendCopy(env dto.Envelope) error }
	if copyMail != nil {
		mail = copyMail
	}
	submissionSvc := service.NewSubmissionService(mirror, rl, mail, metrics, service.SubmissionConfig{
		ConfirmationURL: cfg.Forms.ConfirmationURL,
	}, logr)

	draftSvc := service.NewDraftService(
		repository.NewDraftRepository(rdb, cfg.Forms.DraftTTL),
		submissionSvc,
		formValidator,
		cfg.Forms.CVMaxBytes,
		logr,
	)

	admins := repository.NewAdminUserRepository(db)
	if err := admins.EnsureSchema(ctx); err != nil {
		logr.Fatal("failed to prepare admin schema", zap.Error(err))
	}
	authSvc := service.NewAuthService(admins, repository.NewLoginAttemptRepository(rdb), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		MaxAttempts:       cfg.Auth.MaxAttempts,
		AttemptWindow:     cfg.Auth.Window,
	})

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students: students,
		Teachers: teachers,
		Metrics:  metrics,
		Logger:   logr,
		Config:   service.DashboardServiceConfig{TrendDays: cfg.Dashboard.TrendDays},
	})
	dashboardSvc.Start()
	defer dashboardSvc.Stop()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(
		dashboardSvc.Shared(),
		exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		logr,
		export.Encoders(),
	)
	go exportSvc.RunJanitor(ctx, time.Hour)

	router := handler.NewRouter(handler.RouterParams{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
		Programs:       handler.NewProgramHandler(),
		Submissions:    handler.NewSubmissionHandler(submissionSvc, formValidator, cfg.Forms.CVMaxBytes),
		Drafts:         handler.NewDraftHandler(draftSvc),
		Auth:           handler.NewAuthHandler(authSvc),
		Dashboard:      handler.NewDashboardHandler(dashboardSvc),
		Exports:        handler.NewExportHandler(exportSvc),
		Ops: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "relay", cfg.Relay.Driver, "mirror", cfg.Mirror.Driver)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case sig := <-shutdown:
		logr.Sugar().Infow("shutdown started", "signal", sig.String())
		// Cancelling the base context ends open dashboard streams so Shutdown can drain.
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("could not stop server gracefully", zap.Error(err))
			if err := server.Close(); err != nil {
				logr.Error("could not force stop server", zap.Error(err))
			}
		}
	}
}

func newRelay(ctx context.Context, cfg config.RelayConfig) (relay.Relay, error) {
	switch cfg.Driver {
	case config.RelayDriverSheets:
		return relay.NewSheetsRelay(ctx, cfg.SheetsCredentials, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
	case config.RelayDriverHTTP, "":
		if cfg.Endpoint == "" {
			return nil, errors.New("RELAY_ENDPOINT is required for the http relay")
		}
		return relay.NewHTTPRelay(cfg.Endpoint, nil, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown relay driver %q", cfg.Driver)
	}
}
