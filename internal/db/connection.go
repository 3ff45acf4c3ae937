package db

import (
	"time"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect creates a connection to the Postgres database using the provided URL
func Connect(databaseURL string, log *logrus.Logger) (*gorm.DB, error) {
	return Open(postgres.Open(databaseURL), log)
}

// Open opens a database through the given dialector with the shared logger and pool settings
func Open(dialector gorm.Dialector, log *logrus.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Configure GORM logger
	gormLogger := logger.New(
		log.WithField("component", "db"),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Open connection
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SetMaxIdleConns sets the maximum number of connections in the idle connection pool
	sqlDB.SetMaxIdleConns(10)

	// SetMaxOpenConns sets the maximum number of open connections to the database
	sqlDB.SetMaxOpenConns(100)

	// SetConnMaxLifetime sets the maximum amount of time a connection may be reused
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// RunMigrations creates or updates the tables backing accounts, repositories and objects
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Repository{},
		&models.RepositoryObject{},
	)
}
