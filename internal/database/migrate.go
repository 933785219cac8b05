package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Hayacku/initium/migrations"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its filesystem and dialect in package state
var gooseMu sync.Mutex

// MigrationCommand is one of up, down, status
type MigrationCommand string

const (
	MigrateUp     MigrationCommand = "up"
	MigrateDown   MigrationCommand = "down"
	MigrateStatus MigrationCommand = "status"
)

// Migrate runs an embedded goose command against the pool. out receives
// goose's own log lines; pass nil to silence them.
func (db *DB) Migrate(ctx context.Context, command MigrationCommand, out io.Writer) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if out == nil {
		out = io.Discard
	}
	goose.SetLogger(log.New(out, "", 0))
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, sqlDB, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, sqlDB, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, sqlDB, ".")
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	db.logger.Info("migrations applied", "command", string(command))
	return nil
}
