// Package config loads sitemerge configuration from the environment, an
// optional .env.local, and an optional user-level YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath       string `yaml:"db_path"`
	UploadsDir   string `yaml:"uploads_dir"`
	ExportDir    string `yaml:"export_dir"`
	SiteURL      string `yaml:"site_url"`
	Operator     string `yaml:"operator"`
	SlugConflict string `yaml:"slug_conflict"`
	UserHandling string `yaml:"user_handling"`
	ImportStatus string `yaml:"import_status"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/sitemerge/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		SlugConflict: "rename",
		UserHandling: "merge",
		ImportStatus: "preserve",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional
	_ = loadYAMLConfig(cfg)

	// Override with environment variables
	if dbPath := os.Getenv("SITEMERGE_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if uploadsDir := os.Getenv("SITEMERGE_UPLOADS_DIR"); uploadsDir != "" {
		cfg.UploadsDir = uploadsDir
	}
	if exportDir := os.Getenv("SITEMERGE_EXPORT_DIR"); exportDir != "" {
		cfg.ExportDir = exportDir
	}
	if siteURL := os.Getenv("SITEMERGE_SITE_URL"); siteURL != "" {
		cfg.SiteURL = siteURL
	}
	if operator := os.Getenv("SITEMERGE_OPERATOR"); operator != "" {
		cfg.Operator = operator
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		if _, err := os.Stat(".sitemerge/site.db"); err == nil {
			cfg.DBPath = ".sitemerge/site.db"
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "sitemerge", "site.db")
		}
	}

	base := filepath.Dir(cfg.DBPath)
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = filepath.Join(base, "uploads")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(base, "exports")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/sitemerge/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "sitemerge", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
