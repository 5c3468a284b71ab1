// Package merge implements the import engine that folds one exported
// site's content into an existing destination site. Entity importers run
// in strict dependency order (users, terms, posts, comments) sharing a
// run-scoped identity map, followed by media extraction and a relationship
// fixup pass over already-written content.
package merge

import (
	"fmt"
	"os"
	"time"

	"github.com/lherron/sitemerge/internal/bundle"
	"github.com/lherron/sitemerge/internal/media"
	"github.com/lherron/sitemerge/internal/store"
)

// Options are the caller-supplied run parameters.
type Options struct {
	// SlugConflict is the post policy: SlugConflictSkip or SlugConflictRename.
	SlugConflict string
	// UserHandling is UserHandlingMerge, UserHandlingImportAll, or
	// UserHandlingAssignAdmin.
	UserHandling string
	// ImportStatus is ImportStatusPreserve, ImportStatusDraft, or
	// ImportStatusPublish.
	ImportStatus string
	// DestURL is the destination base URL substituted for the bundle's
	// source URL inside content, excerpts, and string metadata.
	DestURL string
	// OperatorID is the destination user running the import. It absorbs
	// orphaned authorship and the assign_admin mode.
	OperatorID int64
	// MetaPrefix is the destination installation's internal key prefix;
	// exported user metadata under a different prefix is dropped.
	MetaPrefix string
	// MediaArchive is the optional zip of source media files. An absent
	// file means "no media to import"; an unreadable one aborts the run
	// at the materialization step.
	MediaArchive string
	// UploadsDir is the destination file store the archive extracts into.
	UploadsDir string
	// DryRun resolves conflicts and produces a report without writing.
	DryRun bool
	// Now supplies the clock for rename suffixes. Nil means time.Now.
	Now func() time.Time
}

func (o *Options) normalize() error {
	if o.SlugConflict == "" {
		o.SlugConflict = SlugConflictRename
	}
	if o.UserHandling == "" {
		o.UserHandling = UserHandlingMerge
	}
	if o.ImportStatus == "" {
		o.ImportStatus = ImportStatusPreserve
	}
	if o.MetaPrefix == "" {
		o.MetaPrefix = "wp_"
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	switch o.SlugConflict {
	case SlugConflictSkip, SlugConflictRename:
	default:
		return fmt.Errorf("invalid slug conflict policy %q", o.SlugConflict)
	}
	switch o.UserHandling {
	case UserHandlingMerge, UserHandlingImportAll, UserHandlingAssignAdmin:
	default:
		return fmt.Errorf("invalid user handling mode %q", o.UserHandling)
	}
	switch o.ImportStatus {
	case ImportStatusPreserve, ImportStatusDraft, ImportStatusPublish:
	default:
		return fmt.Errorf("invalid import status %q", o.ImportStatus)
	}
	if o.UserHandling == UserHandlingAssignAdmin && o.OperatorID == 0 {
		return fmt.Errorf("assign_admin requires an operator user")
	}
	return nil
}

// Importer executes one import run. It is single-use: the identity map it
// builds belongs to exactly one run and is discarded afterward, so every
// run independently re-resolves conflicts. Callers must not run two
// imports concurrently against the same destination.
type Importer struct {
	store  *store.Store
	opts   Options
	idmap  *IdentityMap
	report *Report
	rw     *Rewriter

	fakeID int64 // synthetic destination IDs handed out in dry runs
}

// New creates an importer for one run against the given destination store.
func New(s *store.Store, opts Options) (*Importer, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	return &Importer{
		store:  s,
		opts:   opts,
		idmap:  NewIdentityMap(),
		report: newReport(opts.DryRun),
	}, nil
}

// IdentityMap exposes the run's identity map, primarily for tests.
func (im *Importer) IdentityMap() *IdentityMap {
	return im.idmap
}

// Run imports the bundle: users, terms, posts, comments, media, then the
// relationship fixup pass. Individual record rejections are recorded in
// the report and do not stop the run; a returned error means the run
// aborted, leaving already-imported entities in place.
func (im *Importer) Run(b *bundle.Bundle) (*Report, error) {
	im.report.SourceURL = b.Meta.SiteURL
	im.report.DestURL = im.opts.DestURL
	im.rw = NewRewriter(b.Meta.SiteURL, im.opts.DestURL)

	if im.opts.OperatorID != 0 {
		op, err := im.store.Users.GetByID(im.opts.OperatorID)
		if err != nil {
			return im.finish(), err
		}
		if op == nil {
			return im.finish(), fmt.Errorf("operator user %d not found in destination", im.opts.OperatorID)
		}
	}

	if err := im.importUsers(b.Users); err != nil {
		return im.finish(), err
	}
	if err := im.importTerms(b.Terms); err != nil {
		return im.finish(), err
	}
	if err := im.importPosts(b.Posts); err != nil {
		return im.finish(), err
	}
	if err := im.importComments(b.Comments); err != nil {
		return im.finish(), err
	}
	if err := im.materializeMedia(); err != nil {
		return im.finish(), err
	}
	if err := im.fixupRelationships(); err != nil {
		return im.finish(), err
	}
	return im.finish(), nil
}

func (im *Importer) finish() *Report {
	im.report.FinishedAt = time.Now().UTC()
	return im.report
}

// materializeMedia extracts the media archive into the uploads directory.
// An absent archive is tolerated; a failed extraction aborts the run
// without rolling back imported entities.
func (im *Importer) materializeMedia() error {
	if im.opts.MediaArchive == "" {
		return nil
	}
	if _, err := os.Stat(im.opts.MediaArchive); os.IsNotExist(err) {
		return nil
	}

	if im.opts.DryRun {
		n, err := media.Count(im.opts.MediaArchive)
		if err != nil {
			return fmt.Errorf("media archive unreadable: %w", err)
		}
		im.report.Stats.MediaFiles = n
		return nil
	}

	n, err := media.Extract(im.opts.MediaArchive, im.opts.UploadsDir)
	if err != nil {
		return fmt.Errorf("media extraction failed: %w", err)
	}
	im.report.Stats.MediaFiles = n
	return nil
}

func (im *Importer) nextFakeID() int64 {
	im.fakeID--
	return im.fakeID
}
