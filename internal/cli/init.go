package cli

import (
	"fmt"
	"os"

	"github.com/lherron/sitemerge/internal/db"
	"github.com/lherron/sitemerge/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the destination database",
	Long: `Initialize creates the SQLite database, runs migrations, creates the
uploads and exports directories, and optionally seeds an operator user.`,
	RunE: runInit,
}

var (
	initOperatorLogin string
	initOperatorEmail string
	initSiteURL       string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initOperatorLogin, "operator-login", "", "Login for the seeded operator user")
	initCmd.Flags().StringVar(&initOperatorEmail, "operator-email", "", "Email for the seeded operator user")
	initCmd.Flags().StringVar(&initSiteURL, "site-url", "", "Destination site base URL stored in options")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbExists := false
	if _, err := os.Stat(cfg.DBPath); err == nil {
		dbExists = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, dir := range []string{cfg.UploadsDir, cfg.ExportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	s := store.New(database)

	siteURL := initSiteURL
	if siteURL == "" {
		siteURL = cfg.SiteURL
	}
	if siteURL != "" {
		if err := s.Options.Set("siteurl", siteURL); err != nil {
			return err
		}
		if err := s.Options.Set("home", siteURL); err != nil {
			return err
		}
	}

	if !dbExists && initOperatorLogin != "" {
		email := initOperatorEmail
		if email == "" {
			email = initOperatorLogin + "@localhost.localdomain"
		}
		if _, err := s.Users.Create(store.UserCreateParams{
			Login:       initOperatorLogin,
			Email:       email,
			DisplayName: initOperatorLogin,
			Role:        "administrator",
		}); err != nil {
			return fmt.Errorf("failed to seed operator user: %w", err)
		}
		fmt.Printf("✓ Seeded operator user: %s\n", initOperatorLogin)
	}

	if dbExists {
		fmt.Printf("✓ Database already initialized at %s\n", cfg.DBPath)
		fmt.Printf("✓ Migrations applied\n")
	} else {
		fmt.Printf("✓ Initialized new database at %s\n", cfg.DBPath)
	}
	fmt.Printf("✓ Uploads directory at %s\n", cfg.UploadsDir)
	fmt.Printf("✓ Exports directory at %s\n", cfg.ExportDir)
	return nil
}
