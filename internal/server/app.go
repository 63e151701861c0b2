// Package server initializes and runs the application core: it validates
// key material, opens storage, runs migrations, wires the services, and
// keeps the token store swept until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/cryptox"
	"github.com/Noureldein28/security-todo/internal/logging"
	"github.com/Noureldein28/security-todo/internal/server/auth"
	"github.com/Noureldein28/security-todo/internal/server/config"
	"github.com/Noureldein28/security-todo/internal/server/repositories/records"
	"github.com/Noureldein28/security-todo/internal/server/repositories/repomanager"
	"github.com/Noureldein28/security-todo/internal/server/services"
)

// App owns the wired core services. Transports embed it and route requests
// into Records/Users/Tokens behind the Guard.
type App struct {
	config *config.Config
	logger logging.Logger

	db    *sql.DB
	repos repomanager.RepositoryManager

	Records *services.RecordService
	Users   *services.UserService
	Tokens  *services.TokenService
	Guard   *auth.Guard
}

// NewApp validates configuration and builds the service graph. Key problems
// are reported as common.ErrKeyConfiguration and must abort startup.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.ValidateSecrets(); err != nil {
		return nil, err
	}

	key, err := cfg.DecodeEncryptionKey()
	if err != nil {
		return nil, err
	}

	engine, err := cryptox.NewEngine(key)
	if err != nil {
		return nil, err
	}
	// The engine keeps its own key schedule; drop the raw key.
	common.WipeByteArray(key)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	recordRepo, err := newRecordRepository(ctx, cfg, db, repos)
	if err != nil {
		return nil, err
	}

	tokens := services.NewTokenService(db, repos, cfg, logger)
	users := services.NewUserService(db, repos, tokens, logger)
	recordsSvc := services.NewRecordService(engine, recordRepo, logger)
	guard := auth.NewGuard([]byte(cfg.SecretKey), repos.Users(db))

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		repos:   repos,
		Records: recordsSvc,
		Users:   users,
		Tokens:  tokens,
		Guard:   guard,
	}, nil
}

// newRecordRepository picks the configured record store backend.
func newRecordRepository(ctx context.Context, cfg *config.Config, db *sql.DB, repos repomanager.RepositoryManager) (records.Repository, error) {
	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		return repos.Records(db), nil
	case config.RecordStoreS3:
		client, err := records.NewS3Client(ctx, cfg.S3Region, cfg.S3RootUser, cfg.S3RootPassword, cfg.S3BaseEndpoint)
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		return records.NewS3Repository(client, cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unknown record store backend %q", cfg.RecordStore)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runTokenPurge sweeps expired refresh tokens until the context ends.
func (app *App) runTokenPurge(ctx context.Context) {
	interval := app.config.TokenPurgeInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := app.Tokens.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "purging expired refresh tokens", "error", err.Error())
				continue
			}
			if purged > 0 {
				app.logger.Info(ctx, "purged expired refresh tokens", "count", purged)
			}
		}
	}
}

// Run blocks until a termination signal arrives, keeping the housekeeping
// loop alive, then closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "server core started",
		"record_store", app.config.RecordStore,
		"access_token_ttl", app.config.AccessTokenValidityDuration.String(),
		"refresh_token_ttl", app.config.RefreshTokenValidityDuration.String(),
	)

	app.runTokenPurge(ctx)

	app.logger.Info(ctx, "shutting down")
	return app.db.Close()
}
