package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marko/rafi/internal/db"
)

// DailySummary is the at-a-glance state of the user's day.
type DailySummary struct {
	PendingTasks       int      `json:"pending_tasks"`
	CompletedToday     int      `json:"completed_today"`
	UpcomingReminders  int      `json:"upcoming_reminders"`
	RoutineSuggestions []string `json:"routine_suggestions"`
	Tip                string   `json:"tip"`
}

func (a *Agent) DailySummary() (*DailySummary, error) {
	now := a.now()
	today := now.Format("2006-01-02")

	pending, err := a.db.GetTasks("pending", "")
	if err != nil {
		return nil, err
	}
	completed, err := a.db.GetTasks("completed", "")
	if err != nil {
		return nil, err
	}
	completedToday := 0
	for _, t := range completed {
		if at, ok := db.ParseWhen(t.CompletedAt); ok && at.Format("2006-01-02") == today {
			completedToday++
		}
	}
	reminders, err := a.db.CountPendingReminders()
	if err != nil {
		return nil, err
	}
	suggestions, err := a.routines.Suggestions()
	if err != nil {
		return nil, err
	}

	return &DailySummary{
		PendingTasks:       len(pending),
		CompletedToday:     completedToday,
		UpcomingReminders:  reminders,
		RoutineSuggestions: suggestions,
		Tip:                a.memory.DailyTip(now.Hour()),
	}, nil
}

// ProactiveSuggestion returns at most one unprompted nudge: a routine-based
// time suggestion if one matches the current hour, otherwise an overdue-task
// reminder.
func (a *Agent) ProactiveSuggestion() (string, bool) {
	now := a.now()
	if msg, ok := a.routines.TimeSuggestion(now.Hour(), int(now.Weekday())); ok {
		return msg, true
	}

	pending, err := a.db.GetTasks("pending", "")
	if err != nil {
		return "", false
	}
	overdue := 0
	for _, t := range pending {
		if t.Overdue(now) {
			overdue++
		}
	}
	if overdue > 0 {
		return fmt.Sprintf("You have %d overdue tasks. Want to go through them?", overdue), true
	}

	return "", false
}

// BuildCheckInPrompt assembles the context for a scheduled check-in run.
func (a *Agent) BuildCheckInPrompt() (string, error) {
	summary, err := a.DailySummary()
	if err != nil {
		return "", fmt.Errorf("building check-in context: %w", err)
	}
	summaryJSON, _ := json.MarshalIndent(summary, "", "  ") // plain struct; marshal cannot fail

	var b strings.Builder
	b.WriteString("It's time for a check-in.\n\n## Today\n")
	b.Write(summaryJSON)

	if score, err := a.planner.ProductivityScore(); err == nil {
		fmt.Fprintf(&b, "\n\n## Productivity\n%d/100 (%s) - %s", score.Score, score.Label, score.Details)
	}

	if suggestions := summary.RoutineSuggestions; len(suggestions) > 0 {
		b.WriteString("\n\n## Learned Routines\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	b.WriteString("\n\nBased on the above, give a brief check-in. Mention overdue items, suggest priorities for the day, and keep it concise and useful.")
	return b.String(), nil
}
