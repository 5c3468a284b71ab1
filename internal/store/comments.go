package store

import (
	"database/sql"
	"fmt"
)

// CommentStore handles comment persistence operations.
type CommentStore struct {
	store *Store
}

// Comment is a destination comment row.
type Comment struct {
	ID          int64
	PostID      int64
	ParentID    int64
	UserID      int64
	Author      string
	AuthorEmail string
	AuthorURL   string
	AuthorIP    string
	Date        string
	DateGMT     string
	Content     string
	Karma       int64
	Approved    string
	Agent       string
	Type        string
}

// CommentCreateParams contains parameters for creating a new comment.
type CommentCreateParams struct {
	PostID      int64
	ParentID    int64
	UserID      int64
	Author      string
	AuthorEmail string
	AuthorURL   string
	AuthorIP    string
	Date        string
	DateGMT     string
	Content     string
	Karma       int64
	Approved    string
	Agent       string
	Type        string
}

// Create inserts a new comment and returns its destination ID.
func (cs *CommentStore) Create(params CommentCreateParams) (int64, error) {
	return cs.create(cs.store.db, params)
}

// CreateWithMeta inserts a comment and its metadata in one transaction.
func (cs *CommentStore) CreateWithMeta(params CommentCreateParams, meta []MetaEntry) (int64, error) {
	var id int64
	err := cs.store.withTx(func(tx *sql.Tx) error {
		var err error
		id, err = cs.create(tx, params)
		if err != nil {
			return err
		}
		for _, m := range meta {
			if err := addMeta(tx, "commentmeta", "comment_id", id, m); err != nil {
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

func (cs *CommentStore) create(e execer, params CommentCreateParams) (int64, error) {
	if params.PostID <= 0 {
		return 0, fmt.Errorf("comment requires a post")
	}
	approved := params.Approved
	if approved == "" {
		approved = "1"
	}

	res, err := e.Exec(`
		INSERT INTO comments (post_id, parent_id, user_id, author, author_email, author_url,
			author_ip, date, date_gmt, content, karma, approved, agent, type)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			COALESCE(NULLIF(?, ''), strftime('%Y-%m-%d %H:%M:%S','now')),
			COALESCE(NULLIF(?, ''), strftime('%Y-%m-%d %H:%M:%S','now')),
			?, ?, ?, ?, ?)
	`, params.PostID, params.ParentID, params.UserID, params.Author, params.AuthorEmail,
		params.AuthorURL, params.AuthorIP, params.Date, params.DateGMT, params.Content,
		params.Karma, approved, params.Agent, params.Type)
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get comment ID: %w", err)
	}
	return id, nil
}

// ListByPost returns all comments on a post ordered by ID.
func (cs *CommentStore) ListByPost(postID int64) ([]Comment, error) {
	return cs.list("WHERE post_id = ?", postID)
}

// List returns all comments ordered by ID.
func (cs *CommentStore) List() ([]Comment, error) {
	return cs.list("")
}

func (cs *CommentStore) list(where string, args ...interface{}) ([]Comment, error) {
	rows, err := cs.store.db.Query(`
		SELECT id, post_id, parent_id, user_id, author, author_email, author_url, author_ip,
			date, date_gmt, content, karma, approved, agent, type
		FROM comments `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.ParentID, &c.UserID, &c.Author, &c.AuthorEmail,
			&c.AuthorURL, &c.AuthorIP, &c.Date, &c.DateGMT, &c.Content, &c.Karma,
			&c.Approved, &c.Agent, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddMeta attaches a metadata key/value pair to a comment.
func (cs *CommentStore) AddMeta(commentID int64, key, value string) error {
	return addMeta(cs.store.db, "commentmeta", "comment_id", commentID, MetaEntry{Key: key, Value: value})
}

// GetMeta returns all metadata for a comment as key -> values.
func (cs *CommentStore) GetMeta(commentID int64) (map[string][]string, error) {
	return getMeta(cs.store, "SELECT key, value FROM commentmeta WHERE comment_id = ? ORDER BY id", commentID)
}
