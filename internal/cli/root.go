// Package cli wires configuration, storage and services into the thanku
// command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/msomdec/thanku/internal/config"
	"github.com/msomdec/thanku/internal/repository/sqlite"
	"github.com/msomdec/thanku/internal/service"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the thanku command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "thanku",
		Short:         "Peer thank-you credits API with password and token authentication",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newTokenCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger writes human-readable lines to stdout and JSON to stderr.
func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, opts),
		slog.NewJSONHandler(os.Stderr, opts),
	))
}

// openDB opens the configured database and applies pending migrations.
func openDB(ctx context.Context, cfg *config.Config) (*sqlite.DB, error) {
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newAuthService(cfg *config.Config, db *sqlite.DB) (*service.AuthService, error) {
	tokens, err := service.NewTokenService(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(db.Users(), tokens, service.NewPasswordHasher(cfg.BcryptCost), cfg.TokenTTL), nil
}
