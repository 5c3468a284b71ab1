// Package export serializes the destination site's content into a bundle
// file plus a media archive, the same shape the importer consumes.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lherron/sitemerge/internal/bundle"
	"github.com/lherron/sitemerge/internal/domain"
	"github.com/lherron/sitemerge/internal/media"
	"github.com/lherron/sitemerge/internal/store"
)

// keyOptions are the site options worth carrying between installations.
var keyOptions = []string{
	"blogname", "blogdescription", "siteurl", "home",
	"template", "stylesheet", "posts_per_page", "date_format",
	"time_format", "timezone_string", "permalink_structure",
}

// Result describes the files one export run produced.
type Result struct {
	DataPath   string
	MediaPath  string
	MediaFiles int
	Stats      Stats
}

// Stats are the per-kind record counts of an export.
type Stats struct {
	Posts    int `json:"posts"`
	Pages    int `json:"pages"`
	Media    int `json:"media"`
	Comments int `json:"comments"`
	Users    int `json:"users"`
	Terms    int `json:"terms"`
}

// Exporter reads the destination store and writes export artifacts.
type Exporter struct {
	store      *store.Store
	siteURL    string
	uploadsDir string
	exportDir  string
}

// New creates an exporter. uploadsDir is packed into the media archive;
// both output files land in exportDir.
func New(s *store.Store, siteURL, uploadsDir, exportDir string) *Exporter {
	return &Exporter{
		store:      s,
		siteURL:    siteURL,
		uploadsDir: uploadsDir,
		exportDir:  exportDir,
	}
}

// Run writes export-<timestamp>.json and media-<timestamp>.zip.
func (e *Exporter) Run() (*Result, error) {
	b, stats, err := e.build()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.exportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Unix()
	res := &Result{
		DataPath:  filepath.Join(e.exportDir, fmt.Sprintf("export-%d.json", timestamp)),
		MediaPath: filepath.Join(e.exportDir, fmt.Sprintf("media-%d.zip", timestamp)),
		Stats:     *stats,
	}

	if err := bundle.Write(b, res.DataPath); err != nil {
		return nil, err
	}

	if _, err := os.Stat(e.uploadsDir); err == nil {
		n, err := media.Pack(e.uploadsDir, res.MediaPath)
		if err != nil {
			return nil, err
		}
		res.MediaFiles = n
	} else {
		res.MediaPath = ""
	}

	return res, nil
}

func (e *Exporter) build() (*bundle.Bundle, *Stats, error) {
	b := &bundle.Bundle{
		Meta: bundle.Meta{
			ExportDate: time.Now().UTC().Format("2006-01-02 15:04:05"),
			SiteID:     1,
			SiteURL:    e.siteURL,
		},
		Posts:    []domain.Post{},
		Comments: []domain.Comment{},
		Terms:    []domain.Term{},
		Users:    []domain.User{},
		Options:  map[string]domain.MetaValue{},
	}
	stats := &Stats{}

	users, err := e.store.Users.List()
	if err != nil {
		return nil, nil, err
	}
	for _, u := range users {
		rec := domain.User{
			ID:          u.ID,
			Login:       u.Login,
			Email:       u.Email,
			Nicename:    u.Nicename,
			DisplayName: u.DisplayName,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Registered:  u.Registered,
			Roles:       []string{u.Role},
		}
		meta, err := e.store.Users.GetMeta(u.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(meta) > 0 {
			rec.Meta = domain.UserMeta{}
			for key, values := range meta {
				rec.Meta[key] = domain.FromStored(values[0])
			}
		}
		b.Users = append(b.Users, rec)
	}
	stats.Users = len(b.Users)

	terms, err := e.store.Terms.List()
	if err != nil {
		return nil, nil, err
	}
	for _, t := range terms {
		rec := domain.Term{
			ID:          t.ID,
			Taxonomy:    t.Taxonomy,
			Name:        t.Name,
			Slug:        t.Slug,
			Parent:      t.Parent,
			Description: t.Description,
		}
		rec.Meta, err = e.loadMeta(e.store.Terms.GetMeta, t.ID)
		if err != nil {
			return nil, nil, err
		}
		b.Terms = append(b.Terms, rec)
	}
	stats.Terms = len(b.Terms)

	posts, err := e.store.Posts.List()
	if err != nil {
		return nil, nil, err
	}
	termsByID := make(map[int64]store.Term, len(terms))
	for _, t := range terms {
		termsByID[t.ID] = t
	}
	for _, p := range posts {
		rec := domain.Post{
			ID:            p.ID,
			Type:          p.Type,
			Title:         p.Title,
			Content:       p.Content,
			Excerpt:       p.Excerpt,
			Status:        p.Status,
			Slug:          p.Slug,
			Author:        p.AuthorID,
			Parent:        p.ParentID,
			Date:          p.Date,
			DateGMT:       p.DateGMT,
			CommentStatus: p.CommentStatus,
			PingStatus:    p.PingStatus,
			MenuOrder:     int(p.MenuOrder),
			MimeType:      p.MimeType,
		}
		rec.Meta, err = e.loadMeta(e.store.Posts.GetMeta, p.ID)
		if err != nil {
			return nil, nil, err
		}

		assigned, err := e.store.Posts.GetTerms(p.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(assigned) > 0 {
			rec.Terms = map[string][]domain.TermRef{}
			for taxonomy, ids := range assigned {
				for _, id := range ids {
					ref := domain.TermRef{ID: id}
					if t, ok := termsByID[id]; ok {
						ref.Name = t.Name
						ref.Slug = t.Slug
					}
					rec.Terms[taxonomy] = append(rec.Terms[taxonomy], ref)
				}
			}
		}
		b.Posts = append(b.Posts, rec)

		switch p.Type {
		case domain.PostTypePost:
			stats.Posts++
		case domain.PostTypePage:
			stats.Pages++
		case domain.PostTypeAttachment:
			stats.Media++
		}
	}

	comments, err := e.store.Comments.List()
	if err != nil {
		return nil, nil, err
	}
	for _, c := range comments {
		rec := domain.Comment{
			ID:          c.ID,
			PostID:      c.PostID,
			Parent:      c.ParentID,
			UserID:      c.UserID,
			Author:      c.Author,
			AuthorEmail: c.AuthorEmail,
			AuthorURL:   c.AuthorURL,
			AuthorIP:    c.AuthorIP,
			Date:        c.Date,
			DateGMT:     c.DateGMT,
			Content:     c.Content,
			Karma:       int(c.Karma),
			Approved:    c.Approved,
			Agent:       c.Agent,
			Type:        c.Type,
		}
		rec.Meta, err = e.loadMeta(e.store.Comments.GetMeta, c.ID)
		if err != nil {
			return nil, nil, err
		}
		b.Comments = append(b.Comments, rec)
	}
	stats.Comments = len(b.Comments)

	for _, key := range keyOptions {
		value, err := e.store.Options.Get(key)
		if err != nil {
			return nil, nil, err
		}
		if value != "" {
			b.Options[key] = domain.FromStored(value)
		}
	}
	b.Meta.SiteName = b.Options["blogname"].Text()

	return b, stats, nil
}

func (e *Exporter) loadMeta(get func(int64) (map[string][]string, error), id int64) (domain.Meta, error) {
	raw, err := get(id)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	meta := domain.Meta{}
	for key, values := range raw {
		for _, v := range values {
			meta[key] = append(meta[key], domain.FromStored(v))
		}
	}
	return meta, nil
}
