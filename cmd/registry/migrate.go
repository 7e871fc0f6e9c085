package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/campus-hub/course-registry/config"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/postgres"
)

var errMigrateDriver = errors.New("migrations apply to the postgres driver only")

func migrateCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	c.AddCommand(
		migrateStep(opts, "up", "Apply all pending migrations", func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
			n, err := m.Up(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "applied %d migration(s)\n", n)
			return nil
		}),
		migrateStep(opts, "down", "Roll back the latest migration", func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
			n, err := m.Down(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "rolled back %d migration(s)\n", n)
			return nil
		}),
		migrateStep(opts, "status", "Show applied and pending migrations", func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
			status, err := m.Status(ctx)
			if err != nil {
				return err
			}
			printMigrations(out, status)
			return nil
		}),
	)
	return c
}

func migrateStep(opts *rootOptions, use, short string, run func(context.Context, *postgres.Migrator, io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverPostgres {
				return errMigrateDriver
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			return run(ctx, postgres.NewMigrator(a.pg), cmd.OutOrStdout())
		},
	}
}

func printMigrations(out io.Writer, migrations []postgres.Migration) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, m := range migrations {
		state, at := "pending", "-"
		if m.IsApplied {
			state = "applied"
			at = m.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Version, m.Name, state, at)
	}
	_ = w.Flush()
}
