package store

import (
	"database/sql"
	"fmt"
)

// TermStore handles taxonomy term persistence operations.
type TermStore struct {
	store *Store
}

// Term is a destination term row.
type Term struct {
	ID          int64
	Taxonomy    string
	Name        string
	Slug        string
	Parent      int64
	Description string
}

// TermCreateParams contains parameters for creating a new term.
type TermCreateParams struct {
	Taxonomy    string
	Name        string
	Slug        string
	Parent      int64
	Description string
}

// Create inserts a new term and returns its destination ID.
func (ts *TermStore) Create(params TermCreateParams) (int64, error) {
	return ts.create(ts.store.db, params)
}

// CreateWithMeta inserts a term and its metadata in one transaction.
func (ts *TermStore) CreateWithMeta(params TermCreateParams, meta []MetaEntry) (int64, error) {
	var id int64
	err := ts.store.withTx(func(tx *sql.Tx) error {
		var err error
		id, err = ts.create(tx, params)
		if err != nil {
			return err
		}
		for _, m := range meta {
			if err := addMeta(tx, "termmeta", "term_id", id, m); err != nil {
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

func (ts *TermStore) create(e execer, params TermCreateParams) (int64, error) {
	if params.Slug == "" {
		return 0, fmt.Errorf("term slug cannot be empty")
	}
	if params.Taxonomy == "" {
		return 0, fmt.Errorf("term taxonomy cannot be empty")
	}

	res, err := e.Exec(`
		INSERT INTO terms (taxonomy, name, slug, parent, description)
		VALUES (?, ?, ?, ?, ?)
	`, params.Taxonomy, params.Name, params.Slug, params.Parent, params.Description)
	if err != nil {
		return 0, fmt.Errorf("failed to create term: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get term ID: %w", err)
	}
	return id, nil
}

// GetBySlug finds a term by its (slug, taxonomy) pair. Returns (nil, nil)
// when absent.
func (ts *TermStore) GetBySlug(slug, taxonomy string) (*Term, error) {
	t := &Term{}
	err := ts.store.db.QueryRow(`
		SELECT id, taxonomy, name, slug, parent, description
		FROM terms WHERE slug = ? AND taxonomy = ?
	`, slug, taxonomy).Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Parent, &t.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query term: %w", err)
	}
	return t, nil
}

// List returns all terms ordered by ID.
func (ts *TermStore) List() ([]Term, error) {
	rows, err := ts.store.db.Query(`
		SELECT id, taxonomy, name, slug, parent, description FROM terms ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Parent, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// AddMeta attaches a metadata key/value pair to a term.
func (ts *TermStore) AddMeta(termID int64, key, value string) error {
	return addMeta(ts.store.db, "termmeta", "term_id", termID, MetaEntry{Key: key, Value: value})
}

// GetMeta returns all metadata for a term as key -> values.
func (ts *TermStore) GetMeta(termID int64) (map[string][]string, error) {
	return getMeta(ts.store, "SELECT key, value FROM termmeta WHERE term_id = ? ORDER BY id", termID)
}
