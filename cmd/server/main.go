package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/NahomAnteneh/repo-browser/internal/api"
	"github.com/NahomAnteneh/repo-browser/internal/config"
	"github.com/NahomAnteneh/repo-browser/internal/db"
	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/NahomAnteneh/repo-browser/internal/page"
	"github.com/NahomAnteneh/repo-browser/internal/storage"
	"github.com/NahomAnteneh/repo-browser/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := cfg.NewLogger()

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := runSeed(cfg, logger, os.Args[2:]); err != nil {
			logger.Fatalf("Seed failed: %v", err)
		}
		return
	}

	logger.Info("Starting repository browser...")

	database, closeDB := openDatabase(cfg, logger)
	defer closeDB()

	// Select object listing backend
	lister, err := newObjectLister(context.Background(), cfg, database)
	if err != nil {
		logger.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Backend, err)
	}
	logger.WithField("backend", cfg.Storage.Backend).Info("Object storage initialized")

	resolver := page.NewResolver(models.NewRepositoryService(database), lister, page.WithLogger(logger))
	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatalf("Failed to load templates: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		logger.Fatalf("Failed to get database connection: %v", err)
	}

	router := api.SetupRouter(cfg, resolver, renderer, sqlDB, logger)
	logger.Info("Endpoints: /healthz, /{account}/{repository}, /{account}/{repository}/*")

	// Configure HTTP server with timeouts
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Channel to capture server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.Infof("Repository browser listening on port %d", cfg.ServerPort)
		if cfg.IsTLSEnabled() {
			logger.Info("TLS enabled, starting HTTPS server")
			serverErr <- server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			logger.Info("TLS disabled, starting HTTP server")
			serverErr <- server.ListenAndServe()
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	case sig := <-quit:
		logger.Infof("Received signal: %v", sig)
	}

	logger.Info("Shutting down server...")

	// Create context with configurable shutdown timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Info("Repository browser shutdown complete")
}

// openDatabase connects, pings and migrates the database, exiting on failure
func openDatabase(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, func()) {
	database, err := db.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Verify database connection
	sqlDB, err := database.DB()
	if err != nil {
		logger.Fatalf("Failed to get database connection: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatalf("Database ping failed: %v", err)
	}
	logger.Info("Connected to database")

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatalf("Failed to run database migrations: %v", err)
	}
	logger.Info("Database migrations completed successfully")

	return database, func() {
		if err := sqlDB.Close(); err != nil {
			logger.Errorf("Failed to close database connection: %v", err)
		}
	}
}

// newObjectLister builds the lister for the configured storage backend
func newObjectLister(ctx context.Context, cfg *config.Config, database *gorm.DB) (storage.ObjectLister, error) {
	switch cfg.Storage.Backend {
	case storage.BackendDatabase:
		return storage.NewDatabaseLister(database), nil
	case storage.BackendLocal:
		lister, err := storage.NewLocalLister(cfg.Storage.LocalRoot)
		if err != nil {
			return nil, err
		}
		return lister, nil
	case storage.BackendS3:
		lister, err := storage.NewS3ListerFromOptions(ctx, storage.S3Options{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			KeyPrefix:       cfg.Storage.S3KeyPrefix,
			UsePathStyle:    cfg.Storage.S3PathStyle,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return lister, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// runSeed loads a YAML fixture into the database
func runSeed(cfg *config.Config, logger *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("f", "", "YAML fixture with accounts, repositories and objects")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("seed requires -f <fixture.yml>")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := db.LoadFixture(f)
	if err != nil {
		return err
	}

	database, closeDB := openDatabase(cfg, logger)
	defer closeDB()

	if err := db.Seed(context.Background(), database, fixture); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":         *file,
		"accounts":     len(fixture.Accounts),
		"repositories": len(fixture.Repositories),
	}).Info("Fixture loaded")
	return nil
}
