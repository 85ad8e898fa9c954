// Package main applies database schema migrations.
//
// Usage:
//
//	migrate -cmd up
//	migrate -cmd down
//	migrate -cmd steps -n -1
//	migrate -cmd force -n 1
//	migrate -cmd version
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"procura/internal/infrastructure/config"
	"procura/pkg/logger"
)

func main() {
	var (
		cmd  = flag.String("cmd", "up", "migration command: up, down, steps, force, version")
		n    = flag.Int("n", 0, "number of steps (steps) or target version (force)")
		path = flag.String("path", "migrations", "path to migration files")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	m, err := migrate.New("file://"+*path, cfg.Database.DSN())
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer m.Close()

	switch *cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*n)
	case "force":
		err = m.Force(*n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatalw("failed to read migration version", "error", verr)
		}
		log.Infow("current schema version", "version", version, "dirty", dirty)
		return
	default:
		log.Fatalw("unknown command", "cmd", *cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply")
		return
	}
	if err != nil {
		log.Fatalw("migration failed", "cmd", *cmd, "error", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalw("failed to read migration version", "error", err)
	}
	log.Infow("migration completed", "cmd", *cmd, "version", version, "dirty", dirty)
}
