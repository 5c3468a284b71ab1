package merge

import (
	"path/filepath"

	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/store"
)

// attachedFileKey is the metadata key holding an attachment's file path.
// It is rewritten to a bare filename because extracted media is re-rooted
// under the destination's own uploads directory.
const attachedFileKey = "_wp_attached_file"

// importPosts creates every exported post, page, and attachment. Author
// falls back to the operator when unmapped; parent falls back to none.
// Unmapped term associations are dropped without blocking the post.
func (im *Importer) importPosts(posts []domain.Post) error {
	for i := range posts {
		p := posts[i]

		res, err := resolvePost(im.store.Posts, &p, im.opts.SlugConflict, im.opts.Now)
		if err != nil {
			return err
		}
		if res.Action == Reject {
			im.report.skip(KindPost, p.ID, p.Slug, res.Reason)
			continue
		}

		destID, err := im.createPost(&p)
		if err != nil {
			im.report.skip(KindPost, p.ID, p.Slug, err.Error())
			continue
		}

		if err := im.idmap.Record(KindPost, p.ID, destID); err != nil {
			return err
		}
		switch p.Type {
		case domain.PostTypePost:
			im.report.Stats.PostsImported++
		case domain.PostTypePage:
			im.report.Stats.PagesImported++
		case domain.PostTypeAttachment:
			im.report.Stats.MediaImported++
		}
	}
	return nil
}

func (im *Importer) createPost(p *domain.Post) (int64, error) {
	authorID := im.opts.OperatorID
	if mapped, ok := im.idmap.Lookup(KindUser, p.Author); ok {
		authorID = mapped
	}

	var parentID int64
	if p.Parent > 0 {
		if mapped, ok := im.idmap.Lookup(KindPost, p.Parent); ok {
			parentID = mapped
		}
	}

	status := p.Status
	switch im.opts.ImportStatus {
	case ImportStatusDraft:
		status = "draft"
	case ImportStatusPublish:
		status = "publish"
	}

	if im.opts.DryRun {
		return im.nextFakeID(), nil
	}

	var meta []store.MetaEntry
	for key, values := range p.Meta {
		for _, value := range values {
			value = im.rw.ApplyMeta(value)
			if key == attachedFileKey && p.Type == domain.PostTypeAttachment {
				value = value.MapString(filepath.Base)
			}
			meta = append(meta, store.MetaEntry{Key: key, Value: value.Stored()})
		}
	}

	terms := make(map[string][]int64)
	for taxonomy, refs := range p.Terms {
		for _, ref := range refs {
			if mapped, ok := im.idmap.Lookup(KindTerm, ref.ID); ok {
				terms[taxonomy] = append(terms[taxonomy], mapped)
			}
		}
	}

	return im.store.Posts.CreateFull(store.PostCreateParams{
		Type:          p.Type,
		Title:         p.Title,
		Content:       im.rw.Apply(p.Content),
		Excerpt:       im.rw.Apply(p.Excerpt),
		Status:        status,
		Slug:          p.Slug,
		AuthorID:      authorID,
		ParentID:      parentID,
		Date:          p.Date,
		DateGMT:       p.DateGMT,
		CommentStatus: p.CommentStatus,
		PingStatus:    p.PingStatus,
		MenuOrder:     int64(p.MenuOrder),
		MimeType:      p.MimeType,
	}, meta, terms)
}
