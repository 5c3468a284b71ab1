// Package cli wires the sitemerge commands: database lifecycle, export,
// import, and conflict inspection.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitemerge",
	Short: "Merge exported site content into a single destination site",
	Long: `sitemerge folds one site's exported content (users, terms, posts,
comments, options, media) into an existing destination site. Exports are
self-contained JSON bundles plus an optional media archive; imports run
the entity pipeline in dependency order and report aggregate statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags for sitemerge
	rootCmd.PersistentFlags().String("db", "", "Path to destination database (overrides SITEMERGE_DB_PATH)")
}
