package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// SetPreference stores or replaces a user preference.
func (d *DB) SetPreference(key, value string) error {
	_, err := d.conn.Exec(
		"INSERT OR REPLACE INTO preferences (key, value, updated_at) VALUES (?, ?, datetime('now'))",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting preference %q: %w", key, err)
	}
	return nil
}

// GetPreference returns a preference value, or "" if unset.
func (d *DB) GetPreference(key string) (string, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting preference %q: %w", key, err)
	}
	return value, nil
}

// GetPreferences returns all stored preferences as a map.
func (d *DB) GetPreferences() (map[string]string, error) {
	rows, err := d.conn.Query("SELECT key, value FROM preferences")
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
