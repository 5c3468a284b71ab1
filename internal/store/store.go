// Package store is the persistence layer for the destination site. It
// exposes row-level create/read operations for users, terms, posts, and
// comments plus their key-value metadata; the only bulk operations are the
// post-content/post-meta text substitutions used by the relationship fixup
// pass.
package store

import (
	"database/sql"
	"fmt"

	"github.com/lherron/sitemerge/internal/db"
)

// Store is the root store that provides access to entity-specific stores.
type Store struct {
	db *db.DB

	Users    *UserStore
	Terms    *TermStore
	Posts    *PostStore
	Comments *CommentStore
	Options  *OptionStore
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Users = &UserStore{store: s}
	s.Terms = &TermStore{store: s}
	s.Posts = &PostStore{store: s}
	s.Comments = &CommentStore{store: s}
	s.Options = &OptionStore{store: s}
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// MetaEntry is one key/value pair written alongside a record inside its
// creation transaction.
type MetaEntry struct {
	Key   string
	Value string
}

// execer is satisfied by both *db.DB and *sql.Tx so create helpers can run
// standalone or inside a record's transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
