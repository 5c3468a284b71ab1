package cli

import (
	"fmt"

	"github.com/lherron/sitemerge/internal/bundle"
	"github.com/lherron/sitemerge/internal/domain"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <export.json>",
	Short: "Preview a bundle and its conflicts with the destination",
	Long: `Inspect summarizes a bundle's contents and checks each record against
the destination: which users would merge, which terms would be reused,
and which post slugs collide. Colliding posts are shown as a unified
content diff so the slug conflict policy can be chosen deliberately.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectDiff bool

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectDiff, "diff", false, "Show content diffs for conflicting posts")
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Bundle from %s (%s), exported %s\n",
		b.Meta.SiteName, b.Meta.SiteURL, b.Meta.ExportDate)
	fmt.Printf("  %d users, %d terms, %d posts, %d comments, %d options\n\n",
		len(b.Users), len(b.Terms), len(b.Posts), len(b.Comments), len(b.Options))

	mergeable := 0
	for _, u := range b.Users {
		existing, err := s.Users.GetByEmail(u.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			mergeable++
		}
	}
	fmt.Printf("Users: %d of %d match an existing destination user by email\n",
		mergeable, len(b.Users))

	reused := 0
	for _, t := range b.Terms {
		existing, err := s.Terms.GetBySlug(t.Slug, t.Taxonomy)
		if err != nil {
			return err
		}
		if existing != nil {
			reused++
		}
	}
	fmt.Printf("Terms: %d of %d already exist by (slug, taxonomy)\n", reused, len(b.Terms))

	var conflicts []conflictingPost
	for _, p := range b.Posts {
		existing, err := s.Posts.GetBySlug(p.Slug, p.Type)
		if err != nil {
			return err
		}
		if existing != nil {
			conflicts = append(conflicts, conflictingPost{incoming: p, existing: existing.Content})
		}
	}
	fmt.Printf("Posts: %d of %d collide on (slug, type)\n", len(conflicts), len(b.Posts))

	for _, c := range conflicts {
		fmt.Printf("\n  conflict: %s %q (source ID %d)\n", c.incoming.Type, c.incoming.Slug, c.incoming.ID)
		if !inspectDiff {
			continue
		}
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(c.existing),
			B:        difflib.SplitLines(c.incoming.Content),
			FromFile: "destination",
			ToFile:   "incoming",
			Context:  3,
		}
		diffText, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			return err
		}
		fmt.Print(diffText)
	}

	unmappedComments := 0
	postIDs := make(map[int64]bool, len(b.Posts))
	for _, p := range b.Posts {
		postIDs[p.ID] = true
	}
	for _, c := range b.Comments {
		if !postIDs[c.PostID] {
			unmappedComments++
		}
	}
	if unmappedComments > 0 {
		fmt.Printf("\nComments: %d reference posts absent from the bundle and would be rejected\n",
			unmappedComments)
	}

	return nil
}

type conflictingPost struct {
	incoming domain.Post
	existing string
}
