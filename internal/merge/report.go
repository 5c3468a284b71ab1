package merge

import (
	"time"

	"github.com/google/uuid"
)

// Stats are the aggregate counts for one import run. Attachments are
// counted as a post subtype under MediaImported; MediaFiles counts the
// binary assets extracted from the media archive.
type Stats struct {
	UsersProcessed   int `json:"users_processed"`
	TermsImported    int `json:"terms_imported"`
	PostsImported    int `json:"posts_imported"`
	PagesImported    int `json:"pages_imported"`
	MediaImported    int `json:"media_imported"`
	CommentsImported int `json:"comments_imported"`
	MediaFiles       int `json:"media_files"`
	FixupPosts       int `json:"fixup_posts"`
	FixupMetaValues  int `json:"fixup_meta_values"`
}

// Skip records one rejected source record and why it was rejected.
type Skip struct {
	Kind     Kind   `json:"kind"`
	SourceID int64  `json:"source_id"`
	Label    string `json:"label,omitempty"`
	Reason   string `json:"reason"`
}

// Report is the result of one import run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run,omitempty"`
	SourceURL  string    `json:"source_url"`
	DestURL    string    `json:"dest_url"`
	Stats      Stats     `json:"stats"`
	Skipped    []Skip    `json:"skipped,omitempty"`
}

func newReport(dryRun bool) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
}

func (r *Report) skip(kind Kind, sourceID int64, label, reason string) {
	r.Skipped = append(r.Skipped, Skip{Kind: kind, SourceID: sourceID, Label: label, Reason: reason})
}
