package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"

	"boltdesk/internal/api"
	"boltdesk/internal/assets"
	"boltdesk/internal/config"
	"boltdesk/internal/database"
	"boltdesk/internal/envkeys"
	"boltdesk/internal/events"
	"boltdesk/internal/models"
	"boltdesk/internal/preferences"
	"boltdesk/internal/repositories"
	"boltdesk/internal/services"
	"boltdesk/internal/themes"
)

// App owns the preference store and everything wired around it.
type App struct {
	ctx context.Context
	log *logrus.Logger

	store    *preferences.Store
	emitter  *events.Emitter
	services *services.Services
	api      *api.Server

	mu       sync.Mutex
	unbridge func()
	closers  []func() error
}

// SettingsSnapshot is everything the settings page needs for its first paint.
type SettingsSnapshot struct {
	Profile models.UserProfile    `json:"profile"`
	ThemeID string                `json:"themeId"`
	Scheme  models.DesignScheme   `json:"scheme"`
	UITheme models.UITheme        `json:"uiTheme"`
	APIKeys []models.APIKeyStatus `json:"apiKeys"`
}

// NewApp opens storage according to cfg and wires the settings services.
func NewApp(cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{ctx: context.Background(), log: log}

	docs, err := a.openDocuments(cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	ring, err := repositories.OpenKeyring(repositories.KeyringOptions{
		Service:      cfg.Keyring.Service,
		Backend:      cfg.Keyring.Backend,
		FileDir:      cfg.Keyring.FileDir,
		FilePassword: cfg.Keyring.FilePassword,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.store, err = preferences.NewStore(preferences.Options{
		Documents: docs,
		Secrets:   repositories.NewSecretRepository(ring, cfg.Keyring.Service),
		Log:       log.WithField("component", "preferences"),
	})
	if err != nil {
		a.close()
		return nil, err
	}

	catalog, err := services.NewModelCatalogService(assets.ModelsData)
	if err != nil {
		a.close()
		return nil, err
	}

	envProber := envkeys.NewEnvProber(catalog.EnvKeys)
	var prober envkeys.Prober = envProber
	if cfg.EnvProbe.URL != "" {
		prober = envkeys.NewHTTPProber(cfg.EnvProbe.URL, cfg.EnvProbe.Timeout.Duration)
	}

	registry := themes.NewRegistry()
	a.emitter = events.NewEmitter(log.WithField("component", "notices"))
	a.services, err = services.NewServices(services.Deps{
		Store:    a.store,
		Registry: registry,
		EnvKeys:  envkeys.NewStatusCache(prober, log.WithField("component", "envkeys")),
		Emitter:  a.emitter,
		Log:      log,
		Catalog:  catalog,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.api, err = api.NewServer(api.Deps{
		EnvKeys:       envProber,
		Design:        a.store,
		Themes:        registry,
		DesignContext: a.services.DesignContext,
		Log:           log.WithField("component", "api"),
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) openDocuments(cfg config.Config) (repositories.DocumentRepository, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		a.log.WithField("addr", cfg.Redis.Addr).Info("preferences stored in redis")
		return repositories.NewRedisDocumentRepository(client, cfg.Redis.Prefix), nil

	default:
		gormOut := a.log.WithField("component", "gorm").WriterLevel(logrus.InfoLevel)
		a.closers = append(a.closers, gormOut.Close)

		db, err := database.Init(database.Config{
			Path:      cfg.Database.Path,
			LogLevel:  gormLevel(a.log.GetLevel()),
			LogOutput: gormOut,
		})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		a.log.WithField("path", cfg.Database.Path).Info("preferences stored in sqlite")
		return repositories.NewDocumentRepository(db), nil
	}
}

// startup is called when the app starts. The context is saved so notices
// and storage events can reach the webview.
func (a *App) startup(ctx context.Context) {
	a.emitter.EnableRuntime(ctx)
	a.start(ctx)
}

func (a *App) start(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	if a.unbridge == nil {
		a.unbridge = a.emitter.Bridge(a.store.Bus())
	}
	a.mu.Unlock()

	a.services.Startup(ctx)
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	a.services.Shutdown()

	a.mu.Lock()
	unbridge := a.unbridge
	a.unbridge = nil
	a.mu.Unlock()
	if unbridge != nil {
		unbridge()
	}

	if err := a.close(); err != nil {
		a.log.WithError(err).Error("failed to release storage")
	} else {
		a.log.Info("storage closed")
	}
}

func (a *App) close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetSettingsSnapshot returns the current profile, theme and key statuses.
func (a *App) GetSettingsSnapshot() SettingsSnapshot {
	return SettingsSnapshot{
		Profile: a.services.Profile.GetProfile(),
		ThemeID: a.services.Themes.SelectedTheme(),
		Scheme:  a.services.Themes.CurrentScheme(),
		UITheme: a.services.Themes.UITheme(),
		APIKeys: a.services.APIKeys.ListKeyStatuses(),
	}
}

func gormLevel(level logrus.Level) gormlogger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return gormlogger.Info
	case level >= logrus.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
