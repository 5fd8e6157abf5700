// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/logging"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/go-gormigrate/gormigrate/v2"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var sqlMigrations embed.FS

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// requiredTables must exist once the schema has been applied.
var requiredTables = []string{"users", "companies", "assets", "documents", "document_totals"}

// Connect opens PostgreSQL, retrying while the server comes up, and pings it.
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	level := logger.Silent
	if cfg.DBDebug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}
	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(connectDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("database connected", logging.MaskDSN(dsn))
	return conn, nil
}

// ConnectAndMigrate connects, applies the schema and seeds when DB_SEED is set.
func ConnectAndMigrate(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn, cfg, log); err != nil {
		return nil, err
	}
	if cfg.Seed {
		if err := Seed(conn, log); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return conn, nil
}

// Migrate runs the embedded SQL migrations when MIGRATIONS is set and the
// versioned AutoMigrate chain otherwise.
func Migrate(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.Migrations {
		log.Info("running sql migrations")
		u, err := MigrateURL(NormalizeDSN(cfg.DatabaseDSN))
		if err != nil {
			return err
		}
		if err := runSQLMigrations(u); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate applies the gorm model schema through gormigrate so each step runs once.
func AutoMigrate(conn *gorm.DB) error {
	m := gormigrate.New(conn, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250101_create_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(models.AllModels()...)
			},
			Rollback: func(tx *gorm.DB) error {
				all := models.AllModels()
				for i := len(all) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropTable(all[i]); err != nil {
						return err
					}
				}
				return nil
			},
		},
	})
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	src, err := iofs.New(sqlMigrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
