// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/store"
)

// SchemaStatus reports database connectivity and migration state.
type SchemaStatus struct {
	Reachable bool   `json:"reachable"`
	Version   uint   `json:"version"`
	Dirty     bool   `json:"dirty"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	databaseURL string
	jsonOutput  bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and schema status",
		Long:  `Check database connectivity and report the current migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.databaseURL, "database_url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	databaseURL := cfg.databaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	status := querySchemaStatus(databaseURL)

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !status.Reachable {
		cmd.Printf("database: unreachable (%s)\n", status.Error)
		return nil
	}
	cmd.Println("database: reachable")
	if status.Version == 0 {
		cmd.Println("schema: no migrations applied")
	} else {
		cmd.Printf("schema: version %d", status.Version)
		if status.Dirty {
			cmd.Print(" (dirty)")
		}
		cmd.Println()
	}
	return nil
}

// querySchemaStatus inspects the migration state; failures are reported in
// the status rather than returned, so the command always prints something.
func querySchemaStatus(databaseURL string) SchemaStatus {
	var status SchemaStatus

	if databaseURL == "" {
		status.Error = "database_url flag or DATABASE_URL environment variable is required"
		return status
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = migrator.Close() }()

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Reachable = true
	status.Version = version
	status.Dirty = dirty
	return status
}
