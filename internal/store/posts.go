package store

import (
	"database/sql"
	"fmt"

	"github.com/lherron/sitemerge/internal/domain"
)

// PostStore handles post, page, and attachment persistence operations.
type PostStore struct {
	store *Store
}

// Post is a destination post row.
type Post struct {
	ID            int64
	Type          domain.PostType
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Slug          string
	AuthorID      int64
	ParentID      int64
	Date          string
	DateGMT       string
	CommentStatus string
	PingStatus    string
	MenuOrder     int64
	MimeType      string
}

// PostCreateParams contains parameters for creating a new post.
type PostCreateParams struct {
	Type          domain.PostType
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Slug          string
	AuthorID      int64
	ParentID      int64
	Date          string
	DateGMT       string
	CommentStatus string
	PingStatus    string
	MenuOrder     int64
	MimeType      string
}

// Create inserts a new post and returns its destination ID.
func (ps *PostStore) Create(params PostCreateParams) (int64, error) {
	return ps.create(ps.store.db, params)
}

// CreateFull inserts a post together with its metadata and taxonomy
// assignments in one transaction: a failure anywhere leaves no row, no
// meta, and no term links behind.
func (ps *PostStore) CreateFull(params PostCreateParams, meta []MetaEntry, terms map[string][]int64) (int64, error) {
	var id int64
	err := ps.store.withTx(func(tx *sql.Tx) error {
		var err error
		id, err = ps.create(tx, params)
		if err != nil {
			return err
		}
		for _, m := range meta {
			if err := addMeta(tx, "postmeta", "post_id", id, m); err != nil {
				return err
			}
		}
		for taxonomy, termIDs := range terms {
			if err := ps.setTerms(tx, id, taxonomy, termIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (ps *PostStore) create(e execer, params PostCreateParams) (int64, error) {
	if err := domain.ValidatePostType(params.Type); err != nil {
		return 0, err
	}
	if params.Slug == "" {
		return 0, fmt.Errorf("post slug cannot be empty")
	}
	status := params.Status
	if status == "" {
		status = "draft"
	}
	if err := domain.ValidatePostStatus(status); err != nil {
		return 0, err
	}
	commentStatus := params.CommentStatus
	if commentStatus == "" {
		commentStatus = "open"
	}
	pingStatus := params.PingStatus
	if pingStatus == "" {
		pingStatus = "open"
	}

	res, err := e.Exec(`
		INSERT INTO posts (type, title, content, excerpt, status, slug, author_id, parent_id,
			date, date_gmt, comment_status, ping_status, menu_order, mime_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(NULLIF(?, ''), strftime('%Y-%m-%d %H:%M:%S','now')),
			COALESCE(NULLIF(?, ''), strftime('%Y-%m-%d %H:%M:%S','now')),
			?, ?, ?, ?)
	`, params.Type, params.Title, params.Content, params.Excerpt, status, params.Slug,
		params.AuthorID, params.ParentID, params.Date, params.DateGMT,
		commentStatus, pingStatus, params.MenuOrder, params.MimeType)
	if err != nil {
		return 0, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get post ID: %w", err)
	}
	return id, nil
}

// GetBySlug finds a post by its (slug, type) pair. When the slug is shared
// by several posts, the oldest row wins. Returns (nil, nil) when absent.
func (ps *PostStore) GetBySlug(slug string, postType domain.PostType) (*Post, error) {
	return ps.getWhere("slug = ? AND type = ? ORDER BY id LIMIT 1", slug, postType)
}

// GetByID retrieves a post by destination ID. Returns (nil, nil) when absent.
func (ps *PostStore) GetByID(id int64) (*Post, error) {
	return ps.getWhere("id = ?", id)
}

func (ps *PostStore) getWhere(where string, args ...interface{}) (*Post, error) {
	p := &Post{}
	err := ps.store.db.QueryRow(`
		SELECT id, type, title, content, excerpt, status, slug, author_id, parent_id,
			date, date_gmt, comment_status, ping_status, menu_order, mime_type
		FROM posts WHERE `+where,
		args...).Scan(&p.ID, &p.Type, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Slug,
		&p.AuthorID, &p.ParentID, &p.Date, &p.DateGMT, &p.CommentStatus, &p.PingStatus,
		&p.MenuOrder, &p.MimeType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return p, nil
}

// List returns all posts ordered by ID.
func (ps *PostStore) List() ([]Post, error) {
	rows, err := ps.store.db.Query(`
		SELECT id, type, title, content, excerpt, status, slug, author_id, parent_id,
			date, date_gmt, comment_status, ping_status, menu_order, mime_type
		FROM posts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Type, &p.Title, &p.Content, &p.Excerpt, &p.Status, &p.Slug,
			&p.AuthorID, &p.ParentID, &p.Date, &p.DateGMT, &p.CommentStatus, &p.PingStatus,
			&p.MenuOrder, &p.MimeType); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SetTerms attaches taxonomy terms to a post. Existing assignments for
// other terms are left in place.
func (ps *PostStore) SetTerms(postID int64, taxonomy string, termIDs []int64) error {
	return ps.setTerms(ps.store.db, postID, taxonomy, termIDs)
}

func (ps *PostStore) setTerms(e execer, postID int64, taxonomy string, termIDs []int64) error {
	for _, termID := range termIDs {
		_, err := e.Exec(`
			INSERT OR IGNORE INTO post_terms (post_id, term_id, taxonomy) VALUES (?, ?, ?)
		`, postID, termID, taxonomy)
		if err != nil {
			return fmt.Errorf("failed to assign term %d to post %d: %w", termID, postID, err)
		}
	}
	return nil
}

// GetTerms returns a post's term assignments grouped by taxonomy.
func (ps *PostStore) GetTerms(postID int64) (map[string][]int64, error) {
	rows, err := ps.store.db.Query(
		"SELECT taxonomy, term_id FROM post_terms WHERE post_id = ? ORDER BY term_id", postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query post terms: %w", err)
	}
	defer rows.Close()

	terms := make(map[string][]int64)
	for rows.Next() {
		var taxonomy string
		var termID int64
		if err := rows.Scan(&taxonomy, &termID); err != nil {
			return nil, fmt.Errorf("failed to scan post term: %w", err)
		}
		terms[taxonomy] = append(terms[taxonomy], termID)
	}
	return terms, rows.Err()
}

// AddMeta attaches a metadata key/value pair to a post.
func (ps *PostStore) AddMeta(postID int64, key, value string) error {
	return addMeta(ps.store.db, "postmeta", "post_id", postID, MetaEntry{Key: key, Value: value})
}

// GetMeta returns all metadata for a post as key -> values.
func (ps *PostStore) GetMeta(postID int64) (map[string][]string, error) {
	return getMeta(ps.store, "SELECT key, value FROM postmeta WHERE post_id = ? ORDER BY id", postID)
}

// ReplaceContent substitutes old for new across the content of every post.
// Used by the relationship fixup pass to repair internal links.
func (ps *PostStore) ReplaceContent(old, new string) (int64, error) {
	res, err := ps.store.db.Exec(
		"UPDATE posts SET content = replace(content, ?, ?) WHERE content LIKE '%' || ? || '%'",
		old, new, old)
	if err != nil {
		return 0, fmt.Errorf("failed to replace post content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count replaced posts: %w", err)
	}
	return n, nil
}

// ReplaceMetaValues substitutes old for new across every postmeta value.
func (ps *PostStore) ReplaceMetaValues(old, new string) (int64, error) {
	res, err := ps.store.db.Exec(
		"UPDATE postmeta SET value = replace(value, ?, ?) WHERE value LIKE '%' || ? || '%'",
		old, new, old)
	if err != nil {
		return 0, fmt.Errorf("failed to replace post meta values: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count replaced meta values: %w", err)
	}
	return n, nil
}
