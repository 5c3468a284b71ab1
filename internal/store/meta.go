package store

import "fmt"

// addMeta inserts one metadata row on behalf of a record create or an
// AddMeta call; e is either the store connection or a record's tx.
func addMeta(e execer, table, ownerCol string, ownerID int64, m MetaEntry) error {
	_, err := e.Exec(
		"INSERT INTO "+table+" ("+ownerCol+", key, value) VALUES (?, ?, ?)",
		ownerID, m.Key, m.Value)
	if err != nil {
		return fmt.Errorf("failed to add %s %q: %w", table, m.Key, err)
	}
	return nil
}

// getMeta runs a (key, value) query and folds the rows into key -> values,
// preserving insertion order within each key.
func getMeta(s *Store, query string, ownerID int64) (map[string][]string, error) {
	rows, err := s.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta: %w", err)
		}
		meta[key] = append(meta[key], value)
	}
	return meta, rows.Err()
}
