// Package migrations owns the database schema. The SQL files are embedded and
// applied with goose, both by the migrate command and by integration tests.
package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

const dir = "postgres"

func setup() error {
	goose.SetBaseFS(Postgres)
	return goose.SetDialect("postgres")
}

// Up migrates the schema to the latest version.
func Up(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// Down rolls back a single migration.
func Down(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Down(db, dir)
}

// Status prints migration status.
func Status(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Status(db, dir)
}
