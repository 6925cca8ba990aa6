// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ArnCarveris/geocore/internal/adapters/cover"
	"github.com/ArnCarveris/geocore/internal/adapters/index"
	"github.com/ArnCarveris/geocore/internal/adapters/metrics"
	"github.com/ArnCarveris/geocore/internal/adapters/osmpbf"
	"github.com/ArnCarveris/geocore/internal/adapters/storage"
	"github.com/ArnCarveris/geocore/internal/adapters/stream"
	"github.com/ArnCarveris/geocore/internal/adapters/watcher"
	"github.com/ArnCarveris/geocore/internal/application"
	"github.com/ArnCarveris/geocore/internal/config"
	"github.com/ArnCarveris/geocore/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Storage       output.ObjectStorage
	Streams       *stream.Streams
	Coverer       *cover.S2Coverer
	IndexBuilder  *index.Builder
	Generator     *application.Generator
	Importer      *osmpbf.Importer
	Metrics       *metrics.Collector
	MetricsServer *metrics.Server
	Watcher       *watcher.Watcher
}

// New creates and wires a new application. The data version is stamped
// into every index the application builds.
func New(ctx context.Context, cfg *config.Config, dataVersion string, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("geocore")
		app.MetricsServer = metrics.NewServer(
			cfg.Metrics.Listen,
			cfg.Metrics.Path,
			logger,
		)
	}

	var metricsCollector output.MetricsCollector
	if app.Metrics != nil {
		metricsCollector = app.Metrics
	} else {
		metricsCollector = &output.NoOpMetrics{}
	}

	// Initialize storage adapter
	store, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	// Initialize feature streams and index pipeline
	app.Streams = stream.NewStreams()

	app.Coverer = cover.New(cover.Config{
		MaxLevel: cfg.Covering.MaxLevel,
		MaxCells: cfg.Covering.MaxCells,
	})

	app.IndexBuilder = index.NewBuilder(dataVersion, logger)

	app.Generator = application.NewGenerator(
		application.GeneratorConfig{
			Workers: cfg.Generator.Workers,
			Builder: application.BuilderConfig{
				DetailLevel:   cfg.Generator.DetailLevel,
				HullTolerance: cfg.Generator.HullTolerance,
			},
		},
		app.Streams,
		app.Coverer,
		app.IndexBuilder,
		metricsCollector,
		logger,
	)

	app.Importer = osmpbf.New(cfg.Generator.Workers, false, logger)

	return app, nil
}

// FetchInput downloads a feature file from the configured storage into
// destDir and returns its local path. Local storage resolves the key
// in place without copying.
func (a *App) FetchInput(ctx context.Context, key, destDir string) (string, error) {
	if local, ok := a.Storage.(*storage.LocalStorage); ok {
		path := local.FullPath(key)
		exists, err := local.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("input %q not found in local storage", key)
		}
		return path, nil
	}

	dest := filepath.Join(destDir, filepath.Base(key))
	a.Logger.Info("downloading input", "key", key, "dest", dest)
	if err := a.Storage.Download(ctx, key, dest); err != nil {
		if a.Metrics != nil {
			a.Metrics.IncStorageOperations("download", false)
		}
		return "", err
	}
	if a.Metrics != nil {
		a.Metrics.IncStorageOperations("download", true)
	}
	return dest, nil
}

// Watch rebuilds the index whenever a feature file under the watched
// directory changes. It blocks until the context is cancelled.
func (a *App) Watch(ctx context.Context, dir string, rebuild func(ctx context.Context, path string) error) error {
	w, err := watcher.New(
		watcher.Config{
			Paths:    []string{dir},
			Debounce: a.Config.Watch.Debounce,
		},
		func(ctx context.Context, event watcher.Event) error {
			if event.Operation == watcher.OpDelete {
				a.Logger.Info("feature file removed, keeping last index", "path", event.Path)
				return nil
			}
			return rebuild(ctx, event.Path)
		},
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("initializing watcher: %w", err)
	}
	a.Watcher = w

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	<-ctx.Done()
	return w.Stop()
}

// StartMetrics starts the metrics server in the background, if enabled.
func (a *App) StartMetrics() {
	if a.MetricsServer == nil {
		return
	}
	go func() {
		if err := a.MetricsServer.Start(); err != nil && err.Error() != "http: Server closed" {
			a.Logger.Error("metrics server error", "error", err)
		}
	}()
}

// Shutdown gracefully shuts down background components.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	return nil
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	switch cfg.Type {
	case "local":
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case "azure":
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case "http":
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
