package db

import "time"

// timeLayouts are the formats due dates and fire times arrive in. The LLM
// sends ISO-ish strings; sqlite's datetime('now') produces the second form.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseWhen parses a stored datetime string, trying the known layouts.
func ParseWhen(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// Overdue reports whether the task has a due date in the past. The caller
// decides whether status matters; this only looks at the clock.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == "" {
		return false
	}
	due, ok := ParseWhen(t.DueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

type Reminder struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	FireAt    string `json:"fire_at"`
	Sent      bool   `json:"sent"`
	CreatedAt string `json:"created_at"`
}

type Routine struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Pattern        string `json:"pattern"`
	Frequency      string `json:"frequency"`
	LastOccurrence string `json:"last_occurrence,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type Action struct {
	ID         int64  `json:"id"`
	Kind       string `json:"kind"`
	Payload    string `json:"payload"`
	OccurredAt string `json:"occurred_at"`
}

type Event struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartAt   string `json:"start_at"`
	EndAt     string `json:"end_at"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}
