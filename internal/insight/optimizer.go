package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/marko/rafi/internal/db"
	"github.com/marko/rafi/internal/memory"
)

// Insight kinds.
const (
	KindTip         = "tip"
	KindWarning     = "warning"
	KindAchievement = "achievement"
	KindPattern     = "pattern"
)

type Insight struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // low, medium, high
}

// Optimizer composes profile, routine, and task state into a ranked list of
// insights. Insights are transient; nothing here writes to the store.
type Optimizer struct {
	db     *db.DB
	memory *memory.Service
	now    func() time.Time
}

func New(database *db.DB, mem *memory.Service) *Optimizer {
	return &Optimizer{db: database, memory: mem, now: time.Now}
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// Insights generates insights in a fixed order, then stable-sorts by
// priority. The daily tip is generated last and carries the lowest priority,
// so it always ends up at the bottom.
func (o *Optimizer) Insights() ([]Insight, error) {
	var insights []Insight

	profile, err := o.memory.UserProfile()
	if err != nil {
		return nil, err
	}

	// Completion rate, only once there is enough data to judge.
	if profile.TotalTasks >= 5 {
		if profile.CompletionRate >= 0.8 {
			insights = append(insights, Insight{
				Kind:        KindAchievement,
				Title:       "Excellent productivity!",
				Description: fmt.Sprintf("You complete %d%% of your tasks. Keep it up!", int(math.Round(profile.CompletionRate*100))),
				Priority:    "low",
			})
		} else if profile.CompletionRate < 0.4 {
			insights = append(insights, Insight{
				Kind:        KindWarning,
				Title:       "Many unfinished tasks",
				Description: "Try taking on fewer tasks or splitting them into smaller steps.",
				Priority:    "high",
			})
		}
	}

	if len(profile.PeakHours) > 0 {
		hours := make([]string, len(profile.PeakHours))
		for i, h := range profile.PeakHours {
			hours[i] = fmt.Sprintf("%d:00", h)
		}
		insights = append(insights, Insight{
			Kind:        KindPattern,
			Title:       "Your most active hours",
			Description: fmt.Sprintf("You are most active at: %s. Schedule the important work then.", strings.Join(hours, ", ")),
			Priority:    "medium",
		})
	}

	now := o.now()
	pending, err := o.db.GetTasks("pending", "")
	if err != nil {
		return nil, err
	}
	var overdue []db.Task
	highPriority := 0
	for _, t := range pending {
		if t.Overdue(now) {
			overdue = append(overdue, t)
		}
		if t.Priority == "high" {
			highPriority++
		}
	}

	if len(overdue) > 0 {
		desc := "Review the overdue tasks and decide: finish them, move the deadline, or delete what no longer matters."
		if oldest, ok := oldestDue(overdue); ok {
			desc += fmt.Sprintf(" The oldest was due %s.", humanize.Time(oldest))
		}
		insights = append(insights, Insight{
			Kind:        KindWarning,
			Title:       fmt.Sprintf("%d overdue tasks", len(overdue)),
			Description: desc,
			Priority:    "high",
		})
	}

	if highPriority > 3 {
		insights = append(insights, Insight{
			Kind:        KindWarning,
			Title:       "Too many urgent tasks",
			Description: fmt.Sprintf("You have %d high-priority tasks. If everything is urgent, nothing is. Reconsider the priorities.", highPriority),
			Priority:    "high",
		})
	}

	if profile.RoutineCount > 0 {
		insights = append(insights, Insight{
			Kind:        KindPattern,
			Title:       fmt.Sprintf("%d recognized routines", profile.RoutineCount),
			Description: "RAFI is learning your patterns. The more you use it, the better the advice.",
			Priority:    "low",
		})
	}

	insights = append(insights, Insight{
		Kind:        KindTip,
		Title:       "Tip of the day",
		Description: o.memory.DailyTip(now.Hour()),
		Priority:    "low",
	})

	sort.SliceStable(insights, func(i, j int) bool {
		return priorityRank[insights[i].Priority] < priorityRank[insights[j].Priority]
	})

	return insights, nil
}

func oldestDue(tasks []db.Task) (time.Time, bool) {
	var oldest time.Time
	found := false
	for _, t := range tasks {
		due, ok := db.ParseWhen(t.DueDate)
		if !ok {
			continue
		}
		if !found || due.Before(oldest) {
			oldest = due
			found = true
		}
	}
	return oldest, found
}
