package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"jalai-market/internal/config"
)

func main() {
	var (
		migrationsPath string
		down           bool
	)
	flag.StringVar(&migrationsPath, "migrations-path", "migrations", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	if err := run(migrationsPath, down); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(migrationsPath string, down bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	m, err := migrate.New("file://"+migrationsPath, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if down {
		logger.Info().Str("path", migrationsPath).Msg("rolling back migrations")
		err = m.Down()
	} else {
		logger.Info().Str("path", migrationsPath).Msg("applying migrations")
		err = m.Up()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info().Msg("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations completed")
	return nil
}
