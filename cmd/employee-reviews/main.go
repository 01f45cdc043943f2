package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaqzi/employee-reviews/internal/app"
	"github.com/gaqzi/employee-reviews/internal/platform/database"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	cfg app.Config

	envFile  string
	driver   string
	dsn      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "employee-reviews",
		Short:        "Keep yearly reviews for employees",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "file with environment variables to load, missing is fine")
	flags.StringVar(&c.driver, "driver", "", "database driver: sqlite or postgres (env DB_DRIVER)")
	flags.StringVar(&c.dsn, "dsn", "", "database connection string (env DB_DSN)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn, or error (env LOG_LEVEL)")

	root.AddCommand(
		c.serveCmd(),
		c.tableCmd(),
		c.reviewsCmd(),
		c.employeesCmd(),
	)

	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(c.envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("driver") {
		if cfg.Dialect, err = database.ParseDialect(c.driver); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("dsn") {
		cfg.DSN = c.dsn
	}
	if cmd.Flags().Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(c.logLevel))); err != nil {
			return err
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel})))
	c.cfg = cfg

	return nil
}

// withRepository opens the configured database for the duration of fn.
// The reviews table is only created or dropped by the table commands.
func (c *cli) withRepository(ctx context.Context, fn func(repo *reviewing.Repository, db *database.DB) error) error {
	repo, db, err := app.OpenRepository(ctx, c.cfg, reviewing.NewCache(), app.WithoutCreateTable())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(repo, db)
}
