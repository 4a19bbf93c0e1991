// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/store"
)

// migrateConfig holds configuration for the migrate command.
type migrateConfig struct {
	databaseURL string
	down        bool
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.databaseURL, "database_url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations instead of applying them (destructive)")

	return cmd
}

func runMigrate(cmd *cobra.Command, cfg *migrateConfig) error {
	databaseURL := cfg.databaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url flag or DATABASE_URL environment variable is required")
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	if cfg.down {
		cmd.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed successfully")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
