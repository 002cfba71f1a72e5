package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/contactsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file when none exists, then initializes the reference store database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		config = loaded
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", configPath)
	}
	r.configure(config)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}

// openDatabase opens the configured SQLite database and applies pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	dbConfig := r.config.Database

	r.logger.Info("initializing database", "path", dbConfig.Path)
	db, err := shared.NewDatabase(dbConfig.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, dbConfig.Path, dbConfig.MaxOpenConns, dbConfig.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
