package db

import "fmt"

// SaveRoutine upserts a routine keyed by name. A later save for the same name
// replaces the pattern blob, frequency, and last occurrence wholesale.
func (d *DB) SaveRoutine(name, pattern, frequency, lastOccurrence string) error {
	_, err := d.conn.Exec(
		`INSERT INTO routines (name, pattern, frequency, last_occurrence) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   pattern = excluded.pattern,
		   frequency = excluded.frequency,
		   last_occurrence = excluded.last_occurrence`,
		name, pattern, frequency, nullStr(lastOccurrence),
	)
	if err != nil {
		return fmt.Errorf("saving routine %q: %w", name, err)
	}
	return nil
}

// GetRoutines returns all stored routines.
func (d *DB) GetRoutines() ([]Routine, error) {
	rows, err := d.conn.Query(
		"SELECT id, name, pattern, frequency, COALESCE(last_occurrence,''), created_at FROM routines ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	defer rows.Close()

	var out []Routine
	for rows.Next() {
		var r Routine
		if err := rows.Scan(&r.ID, &r.Name, &r.Pattern, &r.Frequency, &r.LastOccurrence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
