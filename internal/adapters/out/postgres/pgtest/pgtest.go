// Package pgtest starts a throwaway PostgreSQL container for integration
// tests and applies the schema migrations to it.
package pgtest

import (
	"context"
	"fmt"
	"time"

	"ordertracker/internal/migrations"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ScenarioStages is the registry used across integration tests.
var ScenarioStages = []string{"pending", "confirmed", "in_transit", "delivered"}

// Database is a migrated PostgreSQL instance.
type Database struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
}

// Start runs postgres:15-alpine and migrates it to the latest schema.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	d := &Database{Container: container}
	if err = d.open(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return d, nil
}

func (d *Database) open(ctx context.Context) error {
	dsn, err := d.Container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return err
	}

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err = migrations.Up(sqlDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	d.DB = db
	return nil
}

// Reset empties every table and seeds the given stage codes at positions
// 0..n-1.
func (d *Database) Reset(stageCodes ...string) error {
	err := d.DB.Exec(`TRUNCATE TABLE notifications, courier_pushes, status_history, orders, delivery_stages
		RESTART IDENTITY CASCADE`).Error
	if err != nil {
		return err
	}

	for i, code := range stageCodes {
		err = d.DB.Exec(`INSERT INTO delivery_stages (code, display_name, position) VALUES (?, ?, ?)`,
			code, code, i).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) Terminate(ctx context.Context) error {
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return d.Container.Terminate(ctx)
}
