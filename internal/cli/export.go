package cli

import (
	"fmt"

	"github.com/lherron/sitemerge/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the destination site's content to a bundle",
	Long: `Export serializes the site's users, terms, posts, comments, and key
options into export-<timestamp>.json and packs the uploads directory into
media-<timestamp>.zip, ready for import into another site.`,
	RunE: runExport,
}

var exportSiteURL string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSiteURL, "site-url", "", "Base URL recorded as the bundle's source URL")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	database, s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	siteURL := firstNonEmpty(exportSiteURL, cfg.SiteURL)
	e := export.New(s, siteURL, cfg.UploadsDir, cfg.ExportDir)
	res, err := e.Run()
	if err != nil {
		return err
	}

	fmt.Printf("Export complete\n")
	fmt.Printf("  Data:  %s\n", res.DataPath)
	if res.MediaPath != "" {
		fmt.Printf("  Media: %s (%d files)\n", res.MediaPath, res.MediaFiles)
	} else {
		fmt.Printf("  Media: none (no uploads directory)\n")
	}
	fmt.Printf("  Posts: %d, Pages: %d, Media: %d, Comments: %d, Users: %d, Terms: %d\n",
		res.Stats.Posts, res.Stats.Pages, res.Stats.Media,
		res.Stats.Comments, res.Stats.Users, res.Stats.Terms)
	return nil
}
