package cli

import (
	"fmt"
	"os"

	"github.com/lherron/sitemerge/internal/config"
	"github.com/lherron/sitemerge/internal/db"
	"github.com/lherron/sitemerge/internal/store"
	"github.com/spf13/cobra"
)

// loadConfig loads configuration and applies the global --db override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openStore opens an already-initialized destination database.
func openStore(cfg *config.Config) (*db.DB, *store.Store, error) {
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, nil, fmt.Errorf("no database at %s (run 'sitemerge init' first)", cfg.DBPath)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, store.New(database), nil
}

// resolveOperator maps the --operator login to a destination user ID.
// An empty login resolves to no operator (0).
func resolveOperator(s *store.Store, login string) (int64, error) {
	if login == "" {
		return 0, nil
	}
	u, err := s.Users.GetByLogin(login)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, fmt.Errorf("operator user %q not found in destination", login)
	}
	return u.ID, nil
}
