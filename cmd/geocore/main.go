// Package main provides the entry point for the geocore locality index
// generator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ArnCarveris/geocore/internal/app"
	"github.com/ArnCarveris/geocore/internal/config"
	"github.com/ArnCarveris/geocore/internal/ports/input"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "geocore",
	Short: "geocore - locality index generator",
	Long: `geocore builds locality indexes from geographic feature files.

It converts region and geo-object features (points, lines, areas) into
cell-covering indexes: area geometry is simplified, triangulated into a
single strip (falling back to the convex hull), covered with spatial
cells, and written to a queryable index artifact.

Features:
  - Regions and geo-objects index flavors
  - Streets merging and POI node allow-lists
  - Parallel chunked pipeline
  - PBF import to the feature file format
  - Multiple storage backends (local, AWS S3, Azure, HTTP)
  - Rebuild-on-change watch mode
  - Prometheus metrics`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("geocore %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Build the regions locality index",
	RunE:  runRegions,
}

var geoObjectsCmd = &cobra.Command{
	Use:   "geo-objects",
	Short: "Build the geo-objects locality index",
	RunE:  runGeoObjects,
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Convert an OSM PBF extract into a feature file",
	RunE:  runPrepare,
}

var bordersCmd = &cobra.Command{
	Use:   "borders",
	Short: "Extract area features into a borders feature file",
	RunE:  runBorders,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().Int("workers", 0, "worker count (0 = all CPUs)")
	rootCmd.PersistentFlags().String("storage-type", "local", "storage type (local, s3, azure, http)")
	rootCmd.PersistentFlags().String("storage-path", "./data", "local storage path")
	rootCmd.PersistentFlags().Bool("metrics", false, "expose Prometheus metrics while running")
	rootCmd.PersistentFlags().String("data-version", "", "data version stamped into built indexes")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("generator.workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("storage.type", rootCmd.PersistentFlags().Lookup("storage-type"))
	_ = viper.BindPFlag("storage.local_path", rootCmd.PersistentFlags().Lookup("storage-path"))
	_ = viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics"))

	// Regions flags
	regionsCmd.Flags().String("features", "", "regions feature file (key in storage)")
	regionsCmd.Flags().String("out", "", "output index path")
	regionsCmd.Flags().Bool("watch", false, "rebuild when the feature file changes")
	_ = regionsCmd.MarkFlagRequired("features")
	_ = regionsCmd.MarkFlagRequired("out")

	// Geo-objects flags
	geoObjectsCmd.Flags().String("features", "", "geo-objects feature file (key in storage)")
	geoObjectsCmd.Flags().String("out", "", "output index path")
	geoObjectsCmd.Flags().String("nodes", "", "POI node id allow-list file")
	geoObjectsCmd.Flags().String("streets", "", "streets feature file merged into the run")
	_ = geoObjectsCmd.MarkFlagRequired("features")
	_ = geoObjectsCmd.MarkFlagRequired("out")

	// Prepare flags
	prepareCmd.Flags().String("pbf", "", "input OSM PBF extract")
	prepareCmd.Flags().String("out", "", "output feature file")
	prepareCmd.Flags().Bool("progress", false, "show a progress bar")
	_ = prepareCmd.MarkFlagRequired("pbf")
	_ = prepareCmd.MarkFlagRequired("out")

	// Borders flags
	bordersCmd.Flags().String("features", "", "input feature file (key in storage)")
	bordersCmd.Flags().String("out", "", "output borders feature file")
	_ = bordersCmd.MarkFlagRequired("features")
	_ = bordersCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(regionsCmd, geoObjectsCmd, prepareCmd, bordersCmd, versionCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads config, builds the logger and wires the application. The
// returned context is cancelled on SIGINT/SIGTERM.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, *app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	dataVersion, _ := cmd.Flags().GetString("data-version")
	if dataVersion == "" {
		dataVersion = version
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	application, err := app.New(ctx, cfg, dataVersion, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("initializing application: %w", err)
	}

	application.StartMetrics()

	return ctx, cancel, application, nil
}

func runRegions(cmd *cobra.Command, _ []string) error {
	ctx, cancel, application, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer shutdown(application)

	features, _ := cmd.Flags().GetString("features")
	out, _ := cmd.Flags().GetString("out")
	watch, _ := cmd.Flags().GetBool("watch")

	featuresPath, err := application.FetchInput(ctx, features, filepath.Dir(out))
	if err != nil {
		return fmt.Errorf("fetching input: %w", err)
	}

	if err := application.Generator.GenerateRegionsIndex(ctx, featuresPath, out); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	application.Logger.Info("watching for changes", "dir", filepath.Dir(featuresPath))
	return application.Watch(ctx, filepath.Dir(featuresPath), func(ctx context.Context, path string) error {
		if path != featuresPath {
			return nil
		}
		return application.Generator.GenerateRegionsIndex(ctx, path, out)
	})
}

func runGeoObjects(cmd *cobra.Command, _ []string) error {
	ctx, cancel, application, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer shutdown(application)

	features, _ := cmd.Flags().GetString("features")
	out, _ := cmd.Flags().GetString("out")
	nodes, _ := cmd.Flags().GetString("nodes")
	streets, _ := cmd.Flags().GetString("streets")

	featuresPath, err := application.FetchInput(ctx, features, filepath.Dir(out))
	if err != nil {
		return fmt.Errorf("fetching input: %w", err)
	}

	streetsPath := ""
	if streets != "" {
		streetsPath, err = application.FetchInput(ctx, streets, filepath.Dir(out))
		if err != nil {
			return fmt.Errorf("fetching streets input: %w", err)
		}
	}

	return application.Generator.GenerateGeoObjectsIndex(ctx, input.GeoObjectsRequest{
		FeaturesPath: featuresPath,
		OutPath:      out,
		NodesPath:    nodes,
		StreetsPath:  streetsPath,
	})
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	ctx, cancel, application, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer shutdown(application)

	pbf, _ := cmd.Flags().GetString("pbf")
	out, _ := cmd.Flags().GetString("out")
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		application.Importer.SetProgress(true)
	}

	sink, err := application.Streams.Create(out)
	if err != nil {
		return fmt.Errorf("creating feature file: %w", err)
	}

	stats, err := application.Importer.Import(ctx, pbf, sink)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	application.Logger.Info("feature file ready",
		"path", out,
		"features", stats.Features,
	)
	return nil
}

func runBorders(cmd *cobra.Command, _ []string) error {
	ctx, cancel, application, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer shutdown(application)

	features, _ := cmd.Flags().GetString("features")
	out, _ := cmd.Flags().GetString("out")

	featuresPath, err := application.FetchInput(ctx, features, filepath.Dir(out))
	if err != nil {
		return fmt.Errorf("fetching input: %w", err)
	}

	return application.Generator.ExtractBorders(ctx, featuresPath, out)
}

func shutdown(application *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		application.Logger.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
