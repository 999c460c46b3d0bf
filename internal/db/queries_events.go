package db

import "fmt"

// CreateEvent inserts a calendar event and returns its ID.
func (d *DB) CreateEvent(title, startAt, endAt, location, notes string) (int64, error) {
	if _, ok := ParseWhen(startAt); !ok {
		return 0, fmt.Errorf("invalid event start %q", startAt)
	}
	res, err := d.conn.Exec(
		"INSERT INTO events (title, start_at, end_at, location, notes) VALUES (?, ?, ?, ?, ?)",
		title, startAt, endAt, location, notes,
	)
	if err != nil {
		return 0, fmt.Errorf("creating event: %w", err)
	}
	return res.LastInsertId()
}

// GetEvents returns events between start and end (datetime strings),
// soonest first, capped at limit.
func (d *DB) GetEvents(start, end string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, title, start_at, end_at, location, notes, created_at FROM events
		 WHERE datetime(start_at) >= datetime(?) AND datetime(start_at) <= datetime(?)
		 ORDER BY datetime(start_at) ASC LIMIT ?`,
		start, end, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.Location, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
