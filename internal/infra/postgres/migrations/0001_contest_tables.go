package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_contest_tables.sql
var contestTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(contestTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS submissions;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS active_sessions;
				DROP TABLE IF EXISTS game_settings`)
			return err
		},
	)
}
