package merge

import "fmt"

// fixupRelationships repairs references that could not be rewritten at
// creation time because the destination ID was not yet known when sibling
// content was written. For every imported post it rewrites permalink-style
// "?p=<id>" links across all post content, and quoted numeric ID strings
// inside post metadata values. This is a blunt, pattern-based pass: a
// coincidental substring match is an accepted limitation.
func (im *Importer) fixupRelationships() error {
	if im.opts.DryRun {
		return nil
	}

	for _, oldID := range im.idmap.SourceIDs(KindPost) {
		newID, _ := im.idmap.Lookup(KindPost, oldID)

		n, err := im.store.Posts.ReplaceContent(
			fmt.Sprintf("?p=%d", oldID),
			fmt.Sprintf("?p=%d", newID))
		if err != nil {
			return err
		}
		im.report.Stats.FixupPosts += int(n)

		n, err = im.store.Posts.ReplaceMetaValues(
			fmt.Sprintf(`"%d"`, oldID),
			fmt.Sprintf(`"%d"`, newID))
		if err != nil {
			return err
		}
		im.report.Stats.FixupMetaValues += int(n)
	}
	return nil
}
