package memory

import (
	"sort"
	"sync"

	"github.com/marko/rafi/internal/db"
)

// tips holds the fixed per-period tip lists the daily tip rotates through.
var tips = map[string][]string{
	"morning": {
		"Mornings are ideal for the hardest work - energy and focus peak early.",
		"Eat the frog: do the most unpleasant task first.",
		"Review today's tasks and pick your top 3 priorities.",
		"Start the day with a quick look at the calendar.",
	},
	"afternoon": {
		"Afternoons are good for meetings and collaboration.",
		"If your energy dips, a 10 minute walk helps.",
		"Check your progress on today's tasks.",
		"Group similar tasks - batching saves time.",
	},
	"evening": {
		"Evenings are good for planning tomorrow.",
		"Write down what you accomplished today - it helps motivation.",
		"Prepare tomorrow's list tonight and tomorrow starts faster.",
		"Avoid hard decisions late at night - save them for the morning.",
	},
}

// Profile is a rolling summary of how the user works, derived from tasks and
// the recent action log.
type Profile struct {
	TotalTasks     int               `json:"total_tasks"`
	CompletedTasks int               `json:"completed_tasks"`
	CompletionRate float64           `json:"completion_rate"`
	PeakHours      []int             `json:"peak_hours"`
	Preferences    map[string]string `json:"preferences"`
	RoutineCount   int               `json:"routine_count"`
}

// Service derives the user profile and rotates through daily tips. The tip
// rotation indices live for the process lifetime and reset on restart.
type Service struct {
	db *db.DB

	mu       sync.Mutex
	tipIndex map[string]int
}

func New(database *db.DB) *Service {
	return &Service{
		db:       database,
		tipIndex: map[string]int{"morning": 0, "afternoon": 0, "evening": 0},
	}
}

// DailyTip returns the next tip for the period the hour falls into:
// morning 5-11, afternoon 12-17, evening otherwise.
func (s *Service) DailyTip(hour int) string {
	var period string
	switch {
	case hour >= 5 && hour < 12:
		period = "morning"
	case hour >= 12 && hour < 18:
		period = "afternoon"
	default:
		period = "evening"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := tips[period]
	tip := list[s.tipIndex[period]%len(list)]
	s.tipIndex[period]++
	return tip
}

// UserProfile reads all tasks and the last 200 actions and derives completion
// rate, the three most frequent activity hours, stored preferences, and the
// routine count.
func (s *Service) UserProfile() (*Profile, error) {
	tasks, err := s.db.GetTasks("all", "")
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == "completed" {
			completed++
		}
	}

	actions, err := s.db.GetRecentActions(200)
	if err != nil {
		return nil, err
	}
	var hourCounts [24]int
	for _, a := range actions {
		if at, ok := db.ParseWhen(a.OccurredAt); ok {
			hourCounts[at.Hour()]++
		}
	}
	peakHours := topHours(hourCounts, 3)

	prefs, err := s.db.GetPreferences()
	if err != nil {
		return nil, err
	}

	routines, err := s.db.GetRoutines()
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if len(tasks) > 0 {
		rate = float64(completed) / float64(len(tasks))
	}

	return &Profile{
		TotalTasks:     len(tasks),
		CompletedTasks: completed,
		CompletionRate: rate,
		PeakHours:      peakHours,
		Preferences:    prefs,
		RoutineCount:   len(routines),
	}, nil
}

// topHours returns up to n hours with nonzero activity, highest count first.
// Ties break toward the earlier hour so the result is deterministic.
func topHours(counts [24]int, n int) []int {
	var hours []int
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return counts[hours[i]] > counts[hours[j]]
	})
	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}
