package db

import (
	"fmt"
)

// CreateTask inserts a new task and returns its ID.
func (d *DB) CreateTask(title, description, dueDate, priority string) (int64, error) {
	if priority == "" {
		priority = "medium"
	}
	res, err := d.conn.Exec(
		"INSERT INTO tasks (title, description, due_date, priority) VALUES (?, ?, ?, ?)",
		title, description, nullStr(dueDate), priority,
	)
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}
	return res.LastInsertId()
}

// GetTasks returns tasks filtered by status and optionally by due date.
// status "" or "all" means no status filter; date filters on date(due_date).
func (d *DB) GetTasks(status, date string) ([]Task, error) {
	q := "SELECT id, title, description, COALESCE(due_date,''), priority, status, created_at, COALESCE(completed_at,'') FROM tasks"
	var conditions []string
	var args []any
	if status != "" && status != "all" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}
	if date != "" {
		conditions = append(conditions, "date(due_date) = date(?)")
		args = append(args, date)
	}
	if len(conditions) > 0 {
		q += " WHERE " + conditions[0]
		for _, c := range conditions[1:] {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := d.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CompleteTask marks a task completed.
func (d *DB) CompleteTask(id int64) error {
	res, err := d.conn.Exec(
		"UPDATE tasks SET status = 'completed', completed_at = datetime('now'), updated_at = datetime('now') WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("completing task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

// EditTask updates a task's fields. Allowed: title, description, due_date,
// priority, status.
func (d *DB) EditTask(id int64, fields map[string]any) error {
	return d.updateRow("tasks", id, fields)
}

// DeleteTask removes a task.
func (d *DB) DeleteTask(id int64) error {
	res, err := d.conn.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}
