package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sarkar/internal/platform/config"
	"sarkar/internal/platform/postgres"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := databaseURL()
				if err != nil {
					return err
				}
				if err := postgres.Migrate(dsn); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			},
		},
		newMigrateDownCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := databaseURL()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.Version(dsn)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}

func newMigrateDownCommand() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			if err := postgres.Rollback(dsn, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func databaseURL() (string, error) {
	dsn := config.FromEnv().DatabaseURL
	if dsn == "" {
		return "", errNoDatabase
	}
	return dsn, nil
}
