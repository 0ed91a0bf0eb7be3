package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/db"
	"github.com/avvvet/sus-services/internal/gamesvc/service"
	"github.com/avvvet/sus-services/internal/gamesvc/store"
)

// Env is how the commands reach the durable store.
type Env struct {
	Open    func(ctx context.Context, dsn string) (store.Backend, func(), error)
	Migrate func(ctx context.Context, dsn string) error
}

// PostgresEnv talks to the Postgres database at the given URL.
func PostgresEnv() Env {
	return Env{
		Open: func(ctx context.Context, dsn string) (store.Backend, func(), error) {
			conn, err := db.Connect(dsn)
			if err != nil {
				return nil, nil, err
			}
			return store.NewPostgres(conn), conn.Close, nil
		},
		Migrate: func(ctx context.Context, dsn string) error {
			conn, err := db.Connect(dsn)
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.Migrate(ctx, conn)
		},
	}
}

type options struct {
	postgresURL string
	output      string
}

// NewRootCmd creates the root command
func NewRootCmd(env Env) *cobra.Command {
	opts := &options{
		postgresURL: os.Getenv("POSTGRES_URL"),
		output:      "text",
	}

	rootCmd := &cobra.Command{
		Use:   "susctl",
		Short: "Operator tool for the sus game service",
		Long: `susctl inspects and maintains the game service database.

It applies the schema and reads scoreboards and game history without going
through the chat gateway.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.postgresURL == "" {
				return fmt.Errorf("no database configured, set --postgres-url or POSTGRES_URL")
			}
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.postgresURL, "postgres-url", opts.postgresURL, "Database URL (env: POSTGRES_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", opts.output, "Output format: text, json")

	rootCmd.AddCommand(newMigrateCmd(env, opts))
	rootCmd.AddCommand(newScoresCmd(env, opts))
	rootCmd.AddCommand(newGamesCmd(env, opts))
	rootCmd.AddCommand(newGameCmd(env, opts))

	return rootCmd
}

// queries opens the store and hands back the read side of the service.
func queries(ctx context.Context, env Env, opts *options) (*service.QueryService, func(), error) {
	backend, closeFn, err := env.Open(ctx, opts.postgresURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return service.NewQueryService(cache.New(backend)), closeFn, nil
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(PostgresEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
