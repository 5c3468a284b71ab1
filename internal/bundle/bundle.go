// Package bundle reads and writes the export payload: a single JSON
// document holding one source site's users, terms, posts, comments, and
// options, plus metadata about where it came from.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lherron/sitemerge/internal/domain"
)

// Meta describes the source site an export was taken from.
type Meta struct {
	ExportDate string `json:"export_date"`
	SiteID     int64  `json:"site_id"`
	SiteURL    string `json:"site_url"`
	SiteName   string `json:"site_name"`
	Version    string `json:"wp_version"`
}

// Bundle is one site's complete exported dataset, read as a single unit.
// Every foreign key inside it refers only to IDs present elsewhere in the
// same bundle.
type Bundle struct {
	Meta     Meta                        `json:"meta"`
	Posts    []domain.Post               `json:"posts"`
	Comments []domain.Comment            `json:"comments"`
	Terms    []domain.Term               `json:"terms"`
	Users    []domain.User               `json:"users"`
	Options  map[string]domain.MetaValue `json:"options"`
}

// Load reads and validates a bundle file. A payload that is missing,
// unparsable, or lacking one of the expected collections is fatal.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw bundle JSON.
func Parse(data []byte) (*Bundle, error) {
	// Decode into a raw shape first so absent collections can be told
	// apart from empty ones.
	var raw struct {
		Meta     *Meta                       `json:"meta"`
		Posts    *[]domain.Post              `json:"posts"`
		Comments *[]domain.Comment           `json:"comments"`
		Terms    *[]domain.Term              `json:"terms"`
		Users    *[]domain.User              `json:"users"`
		Options  map[string]domain.MetaValue `json:"options"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse export file: %w", err)
	}
	if raw.Meta == nil {
		return nil, fmt.Errorf("export file missing meta section")
	}
	for name, present := range map[string]bool{
		"posts":    raw.Posts != nil,
		"comments": raw.Comments != nil,
		"terms":    raw.Terms != nil,
		"users":    raw.Users != nil,
		"options":  raw.Options != nil,
	} {
		if !present {
			return nil, fmt.Errorf("export file missing %s collection", name)
		}
	}

	return &Bundle{
		Meta:     *raw.Meta,
		Posts:    *raw.Posts,
		Comments: *raw.Comments,
		Terms:    *raw.Terms,
		Users:    *raw.Users,
		Options:  raw.Options,
	}, nil
}

// Write serializes a bundle to path with indentation.
func Write(b *Bundle, path string) error {
	// Nil collections would serialize as JSON null and fail to re-load.
	if b.Posts == nil {
		b.Posts = []domain.Post{}
	}
	if b.Comments == nil {
		b.Comments = []domain.Comment{}
	}
	if b.Terms == nil {
		b.Terms = []domain.Term{}
	}
	if b.Users == nil {
		b.Users = []domain.User{}
	}
	if b.Options == nil {
		b.Options = map[string]domain.MetaValue{}
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
