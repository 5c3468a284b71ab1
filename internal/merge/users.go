package merge

import (
	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/store"
)

// importUsers maps or creates every exported user. Both Reuse and
// CreateNew count as processed; a creation failure rejects the record
// with no partial metadata written.
func (im *Importer) importUsers(users []domain.User) error {
	for i := range users {
		u := users[i]

		res, err := resolveUser(im.store.Users, &u, im.opts.UserHandling, im.opts.OperatorID)
		if err != nil {
			return err
		}

		var destID int64
		switch res.Action {
		case Reuse:
			destID = res.DestID
		case CreateNew:
			destID, err = im.createUser(&u)
			if err != nil {
				im.report.skip(KindUser, u.ID, u.Login, err.Error())
				continue
			}
		case Reject:
			im.report.skip(KindUser, u.ID, u.Login, res.Reason)
			continue
		}

		if err := im.idmap.Record(KindUser, u.ID, destID); err != nil {
			return err
		}
		im.report.Stats.UsersProcessed++
	}
	return nil
}

func (im *Importer) createUser(u *domain.User) (int64, error) {
	if im.opts.DryRun {
		return im.nextFakeID(), nil
	}

	var meta []store.MetaEntry
	for key, value := range u.Meta {
		if !keepUserMetaKey(key, im.opts.MetaPrefix) {
			continue
		}
		meta = append(meta, store.MetaEntry{Key: key, Value: value.Stored()})
	}

	return im.store.Users.CreateWithMeta(store.UserCreateParams{
		Login:       u.Login,
		Email:       u.Email,
		Nicename:    u.Nicename,
		DisplayName: u.DisplayName,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Registered:  u.Registered,
		Role:        u.FirstRole("subscriber"),
	}, meta)
}
