package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/pkg/config"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// Initialize opens the database described by cfg. Supported drivers are
// "sqlite" (cfg.Path) and "postgres" (cfg.DSN).
func Initialize(cfg config.DatabaseConfig) (*DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Error
	if cfg.Verbose {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.New(gormLogWriter{}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to get underlying SQL database")
	}

	maxOpen := cfg.MaxConnections
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if isMemory(cfg) {
		// every connection to :memory: is a separate database
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	if cfg.MaxIdleConnections > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	if cfg.ConnectionMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)
	}

	return &DB{DB: db}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		if cfg.Path == "" {
			return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "sqlite database path is empty")
		}
		if !isMemory(cfg) {
			if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to create database directory")
				}
			}
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, apperrors.New(apperrors.ErrCodeConfigInvalid, "postgres dsn is empty")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrCodeConfigInvalid, "unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN turns on foreign keys so note.recording_id is nulled on delete.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func isMemory(cfg config.DatabaseConfig) bool {
	return (cfg.Driver == "" || cfg.Driver == "sqlite") && strings.HasPrefix(cfg.Path, ":memory:")
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to get underlying SQL database")
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is working
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return apperrors.New(apperrors.ErrCodeServiceDown, "database not initialized")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceDown, "failed to get underlying SQL database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceDown, "database ping failed")
	}

	return nil
}

// AutoMigrate runs GORM auto migration for the provided models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "auto migration failed")
	}
	log.Info().Int("models", len(models)).Msg("database migrated")
	return nil
}

// Migrate brings the schema up to date for every application model
func (db *DB) Migrate() error {
	return db.AutoMigrate(models.All()...)
}

// MigrationStatus reports which application tables exist
func (db *DB) MigrationStatus() map[string]bool {
	status := make(map[string]bool)
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db.DB}
		if err := stmt.Parse(m); err != nil {
			continue
		}
		status[stmt.Schema.Table] = db.Migrator().HasTable(m)
	}
	return status
}

// DropAll removes every application table, children first
func (db *DB) DropAll() error {
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "dropping table")
		}
	}
	return nil
}

// gormLogWriter routes gorm's logger through zerolog.
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	log.Info().Str("component", "gorm").Msgf(format, args...)
}
