package merge

import (
	"fmt"
	"strings"
	"time"

	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/store"
)

// Slug conflict policies for posts.
const (
	SlugConflictSkip   = "skip"
	SlugConflictRename = "rename"
)

// User handling modes.
const (
	UserHandlingMerge       = "merge"
	UserHandlingImportAll   = "import_all"
	UserHandlingAssignAdmin = "assign_admin"
)

// Import status overrides.
const (
	ImportStatusPreserve = "preserve"
	ImportStatusDraft    = "draft"
	ImportStatusPublish  = "publish"
)

// Action is a conflict resolution outcome.
type Action int

const (
	// Reuse maps the source record onto an existing destination record.
	Reuse Action = iota
	// CreateNew imports the source record as a fresh destination record.
	CreateNew
	// Reject drops the source record; nothing is written or mapped.
	Reject
)

// Resolution is the conflict resolver's decision for one incoming record.
type Resolution struct {
	Action Action
	DestID int64  // set when Action == Reuse
	Reason string // set when Action == Reject
}

func reuse(destID int64) Resolution   { return Resolution{Action: Reuse, DestID: destID} }
func createNew() Resolution           { return Resolution{Action: CreateNew} }
func reject(reason string) Resolution { return Resolution{Action: Reject, Reason: reason} }

// resolveUser decides how an incoming user maps onto the destination,
// matching by email. Only import_all mode disambiguates: a collision on
// email or login mutates both fields in place so the record can still be
// created. In merge mode an unmatched email goes straight to creation; a
// login-only collision then fails the insert and rejects the record.
func resolveUser(users *store.UserStore, u *domain.User, handling string, operatorID int64) (Resolution, error) {
	if handling == UserHandlingAssignAdmin {
		return reuse(operatorID), nil
	}

	existing, err := users.GetByEmail(u.Email)
	if err != nil {
		return Resolution{}, err
	}
	if handling == UserHandlingMerge {
		if existing != nil {
			return reuse(existing.ID), nil
		}
		return createNew(), nil
	}

	collided := existing != nil
	if !collided {
		byLogin, err := users.GetByLogin(u.Login)
		if err != nil {
			return Resolution{}, err
		}
		collided = byLogin != nil
	}
	if collided {
		u.Login = u.Login + "_imported"
		u.Email = "imported_" + u.Email
	}
	return createNew(), nil
}

// resolveTerm reuses an existing destination term with the same
// (slug, taxonomy) pair, otherwise creates a new one.
func resolveTerm(terms *store.TermStore, t *domain.Term) (Resolution, error) {
	existing, err := terms.GetBySlug(t.Slug, t.Taxonomy)
	if err != nil {
		return Resolution{}, err
	}
	if existing != nil {
		return reuse(existing.ID), nil
	}
	return createNew(), nil
}

// resolvePost applies the slug conflict policy on the (slug, type) pair.
// Posts are never merged field-by-field, so there is no Reuse outcome:
// a conflict either rejects the record or renames its slug in place.
func resolvePost(posts *store.PostStore, p *domain.Post, policy string, now func() time.Time) (Resolution, error) {
	existing, err := posts.GetBySlug(p.Slug, p.Type)
	if err != nil {
		return Resolution{}, err
	}
	if existing == nil {
		return createNew(), nil
	}

	switch policy {
	case SlugConflictSkip:
		return reject(fmt.Sprintf("slug %q already exists for type %s", p.Slug, p.Type)), nil
	case SlugConflictRename:
		p.Slug = fmt.Sprintf("%s-imported-%d", p.Slug, now().Unix())
		return createNew(), nil
	default:
		return Resolution{}, fmt.Errorf("unknown slug conflict policy %q", policy)
	}
}

// resolveComment always creates, but a comment cannot exist without its
// destination post.
func resolveComment(idmap *IdentityMap, c *domain.Comment) Resolution {
	if _, ok := idmap.Lookup(KindPost, c.PostID); !ok {
		return reject(fmt.Sprintf("post %d not imported", c.PostID))
	}
	return createNew()
}

// keepUserMetaKey reports whether an exported user metadata key should be
// carried over. Keys under a table prefix belong to a specific
// installation and a foreign prefix would leak incompatible internal
// flags, so only keys under the destination's own prefix (or no prefix at
// all) survive. Source sites use a numbered sub-prefix ("wp_3_..."), which
// is always foreign even when the destination prefix is the bare "wp_".
func keepUserMetaKey(key, destPrefix string) bool {
	if !strings.HasPrefix(key, "wp_") {
		return true
	}
	if destPrefix == "" || !strings.HasPrefix(key, destPrefix) {
		return false
	}
	rest := key[len(destPrefix):]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(rest) && rest[digits] == '_' {
		return false
	}
	return true
}
