package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var databaseURL string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the clinic assistant database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(databaseURL, func(m *migrate.Migrate) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("migrate up: %w", err)
					}
					cmd.Println("migrations complete")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(databaseURL, func(m *migrate.Migrate) error {
					if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("migrate down: %w", err)
					}
					cmd.Println("rolled back one migration")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark a version as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version: %w", err)
				}
				return withMigrator(databaseURL, func(m *migrate.Migrate) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version: %w", err)
					}
					cmd.Printf("forced version to %d\n", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(databaseURL, func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						cmd.Println("no migrations applied")
						return nil
					}
					if err != nil {
						return err
					}
					cmd.Printf("version %d (dirty=%t)\n", version, dirty)
					return nil
				})
			},
		},
		seedCmd(&databaseURL),
	)
	return root
}

func seedCmd(databaseURL *string) *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin account and sample clinic data into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(*databaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			generated := false
			if opts.AdminPassword == "" {
				opts.AdminPassword = randomPassword()
				generated = true
			}
			seeded, err := seedSampleData(cmd.Context(), db, opts)
			if err != nil {
				return err
			}
			if !seeded {
				cmd.Println("users already exist; skipping sample data")
				return nil
			}
			cmd.Printf("sample data created; admin user %q\n", opts.AdminUsername)
			if generated {
				cmd.Printf("generated admin password: %s\n", opts.AdminPassword)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.AdminUsername, "admin-username", "admin", "username of the seeded admin")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@clinic.com", "email of the seeded admin")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password of the seeded admin (random when empty)")
	return cmd
}

func openDB(databaseURL string) (*sql.DB, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func withMigrator(databaseURL string, fn func(m *migrate.Migrate) error) error {
	db, err := openDB(databaseURL)
	if err != nil {
		return err
	}
	m, err := database.NewMigrator(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()
	return fn(m)
}
