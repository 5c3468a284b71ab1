package store

import (
	"database/sql"
	"fmt"
)

// OptionStore handles site option persistence operations.
type OptionStore struct {
	store *Store
}

// Set writes an option, replacing any existing value.
func (os *OptionStore) Set(key, value string) error {
	_, err := os.store.db.Exec(`
		INSERT INTO options (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set option %q: %w", key, err)
	}
	return nil
}

// Get reads an option. Returns ("", nil) when the option is absent.
func (os *OptionStore) Get(key string) (string, error) {
	var value string
	err := os.store.db.QueryRow("SELECT value FROM options WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get option %q: %w", key, err)
	}
	return value, nil
}

// All returns every option as a key -> value map.
func (os *OptionStore) All() (map[string]string, error) {
	rows, err := os.store.db.Query("SELECT key, value FROM options ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	opts := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		opts[key] = value
	}
	return opts, rows.Err()
}
