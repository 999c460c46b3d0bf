package db

import "fmt"

// LogAction appends an action to the durable log. occurredAt should be a
// datetime string in one of the accepted layouts; ordering is insertion order.
func (d *DB) LogAction(kind, payload, occurredAt string) (int64, error) {
	if payload == "" {
		payload = "{}"
	}
	res, err := d.conn.Exec(
		"INSERT INTO actions (kind, payload, occurred_at) VALUES (?, ?, ?)",
		kind, payload, occurredAt,
	)
	if err != nil {
		return 0, fmt.Errorf("logging action: %w", err)
	}
	return res.LastInsertId()
}

// GetRecentActions returns the most recent actions, newest first.
func (d *DB) GetRecentActions(limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.conn.Query(
		"SELECT id, kind, payload, occurred_at FROM actions ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Kind, &a.Payload, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
