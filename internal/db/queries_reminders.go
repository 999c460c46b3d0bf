package db

import (
	"fmt"
	"time"
)

// CreateReminder inserts a reminder and returns its ID. fireAt is a datetime
// string in one of the accepted layouts.
func (d *DB) CreateReminder(message, fireAt string) (int64, error) {
	if _, ok := ParseWhen(fireAt); !ok {
		return 0, fmt.Errorf("invalid reminder time %q", fireAt)
	}
	res, err := d.conn.Exec(
		"INSERT INTO reminders (message, fire_at) VALUES (?, ?)",
		message, fireAt,
	)
	if err != nil {
		return 0, fmt.Errorf("creating reminder: %w", err)
	}
	return res.LastInsertId()
}

// ListReminders returns reminders, unsent only unless includeSent is set.
func (d *DB) ListReminders(includeSent bool) ([]Reminder, error) {
	q := "SELECT id, message, fire_at, sent, created_at FROM reminders"
	if !includeSent {
		q += " WHERE sent = 0"
	}
	q += " ORDER BY fire_at ASC"

	rows, err := d.conn.Query(q)
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.Message, &r.FireAt, &r.Sent, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListDueReminders returns unsent reminders whose fire time has passed.
func (d *DB) ListDueReminders(now time.Time) ([]Reminder, error) {
	reminders, err := d.ListReminders(false)
	if err != nil {
		return nil, err
	}
	var due []Reminder
	for _, r := range reminders {
		if at, ok := ParseWhen(r.FireAt); ok && !at.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// MarkReminderSent flags a reminder as delivered.
func (d *DB) MarkReminderSent(id int64) error {
	res, err := d.conn.Exec("UPDATE reminders SET sent = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking reminder %d sent: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %d not found", id)
	}
	return nil
}

// CancelReminder deletes an unsent reminder.
func (d *DB) CancelReminder(id int64) error {
	res, err := d.conn.Exec("DELETE FROM reminders WHERE id = ? AND sent = 0", id)
	if err != nil {
		return fmt.Errorf("canceling reminder %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %d not found or already fired", id)
	}
	return nil
}

// CountPendingReminders returns how many reminders are still waiting to fire.
func (d *DB) CountPendingReminders() (int, error) {
	var n int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM reminders WHERE sent = 0").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting reminders: %w", err)
	}
	return n, nil
}
