package merge

import (
	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/store"
)

// importTerms maps or creates every exported taxonomy term. A parent that
// has not been imported yet (out-of-order export) is dropped and the term
// is created as a root; hierarchy is best-effort, never blocking.
func (im *Importer) importTerms(terms []domain.Term) error {
	for i := range terms {
		t := terms[i]

		res, err := resolveTerm(im.store.Terms, &t)
		if err != nil {
			return err
		}

		var destID int64
		switch res.Action {
		case Reuse:
			destID = res.DestID
		case CreateNew:
			destID, err = im.createTerm(&t)
			if err != nil {
				im.report.skip(KindTerm, t.ID, t.Slug, err.Error())
				continue
			}
		}

		if err := im.idmap.Record(KindTerm, t.ID, destID); err != nil {
			return err
		}
		im.report.Stats.TermsImported++
	}
	return nil
}

func (im *Importer) createTerm(t *domain.Term) (int64, error) {
	var parentID int64
	if t.Parent > 0 {
		if mapped, ok := im.idmap.Lookup(KindTerm, t.Parent); ok {
			parentID = mapped
		}
	}

	if im.opts.DryRun {
		return im.nextFakeID(), nil
	}

	var meta []store.MetaEntry
	for key, values := range t.Meta {
		for _, value := range values {
			meta = append(meta, store.MetaEntry{Key: key, Value: value.Stored()})
		}
	}

	return im.store.Terms.CreateWithMeta(store.TermCreateParams{
		Taxonomy:    t.Taxonomy,
		Name:        t.Name,
		Slug:        t.Slug,
		Parent:      parentID,
		Description: t.Description,
	}, meta)
}
