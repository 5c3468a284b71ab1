package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lherron/sitemerge/internal/bundle"
	"github.com/lherron/sitemerge/internal/merge"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Import an exported bundle into the destination site",
	Long: `Import folds one exported bundle into the destination site: users,
terms, posts, comments, media, then a relationship fixup pass. Individual
record conflicts are resolved by policy and reported; they never abort
the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importSlugConflict string
	importUsers        string
	importStatus       string
	importURL          string
	importMedia        string
	importOperator     string
	importReport       string
	importDryRun       bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSlugConflict, "slug-conflict", "", "Post slug conflict policy: skip or rename")
	importCmd.Flags().StringVar(&importUsers, "users", "", "User handling: merge, import_all, or assign_admin")
	importCmd.Flags().StringVar(&importStatus, "status", "", "Imported post status: preserve, draft, or publish")
	importCmd.Flags().StringVar(&importURL, "url", "", "Destination base URL substituted for the source URL")
	importCmd.Flags().StringVar(&importMedia, "media", "", "Path to the media archive (media-<ts>.zip)")
	importCmd.Flags().StringVar(&importOperator, "operator", "", "Destination login absorbing orphaned authorship")
	importCmd.Flags().StringVar(&importReport, "report", "", "Write the run report as JSON to this file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Resolve conflicts and report without writing")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	b, err := bundle.Load(args[0])
	if err != nil {
		return err
	}

	database, s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	operatorLogin := importOperator
	if operatorLogin == "" {
		operatorLogin = cfg.Operator
	}
	operatorID, err := resolveOperator(s, operatorLogin)
	if err != nil {
		return err
	}

	opts := merge.Options{
		SlugConflict: firstNonEmpty(importSlugConflict, cfg.SlugConflict),
		UserHandling: firstNonEmpty(importUsers, cfg.UserHandling),
		ImportStatus: firstNonEmpty(importStatus, cfg.ImportStatus),
		DestURL:      firstNonEmpty(importURL, cfg.SiteURL),
		OperatorID:   operatorID,
		MediaArchive: importMedia,
		UploadsDir:   cfg.UploadsDir,
		DryRun:       importDryRun,
	}

	importer, err := merge.New(s, opts)
	if err != nil {
		return err
	}

	report, runErr := importer.Run(b)
	printReport(report)

	if importReport != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(importReport, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return runErr
}

func printReport(r *merge.Report) {
	label := "Import complete"
	if r.DryRun {
		label = "Dry run complete"
	}
	fmt.Printf("%s (run %s)\n", label, r.RunID)
	fmt.Printf("  Users processed:   %d\n", r.Stats.UsersProcessed)
	fmt.Printf("  Terms imported:    %d\n", r.Stats.TermsImported)
	fmt.Printf("  Posts imported:    %d\n", r.Stats.PostsImported)
	fmt.Printf("  Pages imported:    %d\n", r.Stats.PagesImported)
	fmt.Printf("  Media imported:    %d\n", r.Stats.MediaImported)
	fmt.Printf("  Comments imported: %d\n", r.Stats.CommentsImported)
	fmt.Printf("  Media files:       %d\n", r.Stats.MediaFiles)
	if len(r.Skipped) > 0 {
		fmt.Printf("  Skipped records:   %d\n", len(r.Skipped))
		for _, s := range r.Skipped {
			label := s.Label
			if label != "" {
				label = " " + label
			}
			fmt.Printf("    - %s %d%s: %s\n", s.Kind, s.SourceID, label, s.Reason)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
