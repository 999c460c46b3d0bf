package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/marko/rafi/internal/db"
)

type slotType string

const (
	slotFocus    slotType = "focus"
	slotMeetings slotType = "meetings"
	slotBreak    slotType = "break"
	slotPlanning slotType = "planning"
)

type timeSlot struct {
	hour  int
	label string
	kind  slotType
}

// defaultSlots is the fixed daily template. Only focus slots receive task
// suggestions.
var defaultSlots = []timeSlot{
	{7, "07:00 - 09:00", slotFocus},
	{9, "09:00 - 12:00", slotFocus},
	{12, "12:00 - 13:00", slotBreak},
	{13, "13:00 - 15:00", slotMeetings},
	{15, "15:00 - 17:00", slotFocus},
	{17, "17:00 - 18:00", slotPlanning},
}

type Suggestion struct {
	Task          string `json:"task"`
	SuggestedTime string `json:"suggested_time"`
	Reason        string `json:"reason"`
}

type Schedule struct {
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary"`
}

type Score struct {
	Score   int    `json:"score"`
	Label   string `json:"label"`
	Details string `json:"details"`
}

// Service turns pending tasks into a time-blocked recommendation and scores
// recent productivity.
type Service struct {
	db  *db.DB
	now func() time.Time
}

func New(database *db.DB) *Service {
	return &Service{db: database, now: time.Now}
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

func rank(priority string) int {
	if r, ok := priorityRank[priority]; ok {
		return r
	}
	return priorityRank["medium"]
}

// SuggestSchedule assigns pending tasks, highest priority first, into the
// fixed focus slots. Tasks beyond the slot count get no suggestion.
func (s *Service) SuggestSchedule() (*Schedule, error) {
	pending, err := s.db.GetTasks("pending", "")
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &Schedule{
			Suggestions: []Suggestion{},
			Summary:     "No pending tasks. Enjoy your free day!",
		}, nil
	}

	sorted := make([]db.Task, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i].Priority) < rank(sorted[j].Priority)
	})

	var focus []timeSlot
	for _, slot := range defaultSlots {
		if slot.kind == slotFocus {
			focus = append(focus, slot)
		}
	}

	var suggestions []Suggestion
	for i, task := range sorted {
		if i >= len(focus) {
			break
		}
		var reason string
		switch task.Priority {
		case "high":
			reason = "High priority - scheduled into a morning focus block when energy is highest."
		case "low":
			reason = "Low priority - can wait, but better done early."
		default:
			reason = "Medium priority - suggested for a focus period."
		}
		suggestions = append(suggestions, Suggestion{
			Task:          task.Title,
			SuggestedTime: focus[i].label,
			Reason:        reason,
		})
	}

	highCount := 0
	for _, t := range sorted {
		if t.Priority == "high" {
			highCount++
		}
	}
	var summary string
	if highCount > 0 {
		summary = fmt.Sprintf("You have %d urgent and %d other tasks. Finish the urgent ones in the morning.", highCount, len(sorted)-highCount)
	} else {
		summary = fmt.Sprintf("You have %d tasks. They are ordered by priority.", len(sorted))
	}

	return &Schedule{Suggestions: suggestions, Summary: summary}, nil
}

// ProductivityScore computes a 0-100 heuristic: completion rate minus 0.05
// per overdue pending task, clamped.
func (s *Service) ProductivityScore() (*Score, error) {
	tasks, err := s.db.GetTasks("all", "")
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return &Score{
			Score:   0,
			Label:   "no data",
			Details: "Start using RAFI to get a productivity score.",
		}, nil
	}

	now := s.now()
	completed, overdue := 0, 0
	for _, t := range tasks {
		switch t.Status {
		case "completed":
			completed++
		case "pending":
			if t.Overdue(now) {
				overdue++
			}
		}
	}

	completionRate := float64(completed) / float64(len(tasks))
	penalty := 0.05 * float64(overdue)
	score := int(math.Round((completionRate - penalty) * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var label string
	switch {
	case score >= 80:
		label = "excellent"
	case score >= 60:
		label = "good"
	case score >= 40:
		label = "could be better"
	default:
		label = "needs improvement"
	}

	details := fmt.Sprintf("Completed %d/%d tasks.", completed, len(tasks))
	if overdue > 0 {
		details += fmt.Sprintf(" %d overdue.", overdue)
	}

	return &Score{Score: score, Label: label, Details: details}, nil
}
