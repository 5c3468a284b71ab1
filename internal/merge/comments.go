package merge

import (
	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/store"
)

// importComments creates every exported comment whose post was imported.
// Parent comment and author are best-effort: unmapped references fall back
// to none/anonymous.
func (im *Importer) importComments(comments []domain.Comment) error {
	for i := range comments {
		c := comments[i]

		res := resolveComment(im.idmap, &c)
		if res.Action == Reject {
			im.report.skip(KindComment, c.ID, "", res.Reason)
			continue
		}

		destID, err := im.createComment(&c)
		if err != nil {
			im.report.skip(KindComment, c.ID, "", err.Error())
			continue
		}

		if err := im.idmap.Record(KindComment, c.ID, destID); err != nil {
			return err
		}
		im.report.Stats.CommentsImported++
	}
	return nil
}

func (im *Importer) createComment(c *domain.Comment) (int64, error) {
	postID, _ := im.idmap.Lookup(KindPost, c.PostID)

	var parentID int64
	if c.Parent > 0 {
		if mapped, ok := im.idmap.Lookup(KindComment, c.Parent); ok {
			parentID = mapped
		}
	}

	var userID int64
	if c.UserID > 0 {
		if mapped, ok := im.idmap.Lookup(KindUser, c.UserID); ok {
			userID = mapped
		}
	}

	if im.opts.DryRun {
		return im.nextFakeID(), nil
	}

	var meta []store.MetaEntry
	for key, values := range c.Meta {
		for _, value := range values {
			meta = append(meta, store.MetaEntry{Key: key, Value: value.Stored()})
		}
	}

	return im.store.Comments.CreateWithMeta(store.CommentCreateParams{
		PostID:      postID,
		ParentID:    parentID,
		UserID:      userID,
		Author:      c.Author,
		AuthorEmail: c.AuthorEmail,
		AuthorURL:   c.AuthorURL,
		AuthorIP:    c.AuthorIP,
		Date:        c.Date,
		DateGMT:     c.DateGMT,
		Content:     c.Content,
		Karma:       int64(c.Karma),
		Approved:    c.Approved,
		Agent:       c.Agent,
		Type:        c.Type,
	}, meta)
}
