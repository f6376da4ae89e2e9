package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/internal/config"
	"github.com/khrees2412/jobtracker/internal/database"
	"github.com/khrees2412/jobtracker/internal/gateway"
	"github.com/khrees2412/jobtracker/internal/logging"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// ErrEphemeralStore is returned when a one-shot command would read or
// write applications held only in process memory.
var ErrEphemeralStore = errors.New("store_backend memory keeps applications only while 'jobtracker serve' runs")

// App is the dependency container for the CLI and the HTTP server
type App struct {
	DB      *sql.DB
	Adapter database.Adapter
	Config  *config.Config
	Gateway gateway.Gateway
	Auth    *auth.Service
	Logger  *slog.Logger

	dir     string
	logFile *os.File
}

// NewApp loads configuration and opens the store for one command run.
// Log lines are tagged with command and echoed to stderr when echoLogs is set.
func NewApp(ctx context.Context, command string, echoLogs bool) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	dir := config.Dir()

	level, err := logging.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.Open(dir, command, level, echoLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	a, err := New(ctx, config.AppConfig, dir, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

// New wires an App from an already loaded configuration. State files live in dir.
func New(ctx context.Context, cfg *config.Config, dir string, logger *slog.Logger) (*App, error) {
	db, adapter, err := database.Open(database.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN,
	}, filepath.Join(dir, "jobtracker.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.MigrateUp(db, adapter); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var gw gateway.Gateway
	switch strings.ToLower(cfg.StoreBackend) {
	case config.StoreMemory:
		gw = gateway.NewMemoryGateway(gateway.RealClock{}, gateway.UUIDGenerator{})
	default:
		gw = gateway.NewSQLGateway(db, adapter, gateway.RealClock{}, gateway.UUIDGenerator{})
	}

	logger.Debug("app initialized", "driver", adapter.Name(), "store", cfg.StoreBackend)

	return &App{
		DB:      db,
		Adapter: adapter,
		Config:  cfg,
		Gateway: gw,
		Auth:    auth.NewService(db, adapter, cfg.SessionTTL),
		Logger:  logger,
		dir:     dir,
	}, nil
}

// NewCache returns an application cache scoped to session
func (a *App) NewCache(session *auth.Session) *cache.Cache {
	return cache.New(a.Gateway, session,
		cache.WithLogger(a.Logger),
		cache.WithCoalescing(a.Config.CoalesceLoads),
	)
}

// RequireDurableStore fails when applications would be lost once the
// current process exits.
func (a *App) RequireDurableStore() error {
	if strings.EqualFold(a.Config.StoreBackend, config.StoreMemory) {
		return ErrEphemeralStore
	}
	return nil
}

// Close closes all resources
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// SessionPath is where the CLI keeps the signed-in session token
func (a *App) SessionPath() string {
	return filepath.Join(a.dir, "session")
}

// SaveSession remembers session for later commands
func (a *App) SaveSession(session *auth.Session) error {
	if err := os.WriteFile(a.SessionPath(), []byte(session.Token()+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentSession resumes the remembered session. Expired or revoked
// sessions are forgotten.
func (a *App) CurrentSession(ctx context.Context) (*auth.Session, error) {
	raw, err := os.ReadFile(a.SessionPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.AuthError{Op: "resume session", Err: auth.ErrNoSession}
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	session, err := a.Auth.Resume(ctx, strings.TrimSpace(string(raw)))
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) || errors.Is(err, auth.ErrSessionExpired) {
			_ = a.ForgetSession()
		}
		return nil, err
	}
	return session, nil
}

// ForgetSession deletes the remembered session token
func (a *App) ForgetSession() error {
	if err := os.Remove(a.SessionPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
