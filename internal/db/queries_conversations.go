package db

import "fmt"

// SaveConversationMessage appends a chat transcript row for a session.
func (d *DB) SaveConversationMessage(sessionID, role, content string) error {
	_, err := d.conn.Exec(
		"INSERT INTO conversations (session_id, role, content) VALUES (?, ?, ?)",
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("saving conversation message: %w", err)
	}
	return nil
}
