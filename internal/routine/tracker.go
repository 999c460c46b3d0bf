package routine

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/marko/rafi/internal/db"
)

const (
	// flushThreshold is how many buffered actions trigger an analysis pass.
	flushThreshold = 10
	// analysisWindow is how many recent log entries a pass looks at.
	analysisWindow = 100
	// minActions below which a pass is a no-op.
	minActions = 5

	activeThreshold     = 0.5
	suggestThreshold    = 0.7
	timeTriggerMinConf  = 0.6
	plansTasksPrefix    = "Plans tasks around"
	timeSuggestionReply = "You usually plan your tasks around this time. Want to add something?"
)

const timeLayout = "2006-01-02 15:04:05"

// Tracker buffers incoming actions and periodically mines the durable action
// log for behavioral patterns. The buffer holds only unflushed actions; the
// store is the log of record.
type Tracker struct {
	db  *db.DB
	now func() time.Time

	mu     sync.Mutex
	buffer []string // kinds only; analysis reads the durable log
}

func New(database *db.DB) *Tracker {
	return &Tracker{db: database, now: time.Now}
}

// Record appends an action to the durable log and the in-memory buffer.
// Every tenth append triggers a synchronous analysis pass and clears the
// buffer.
func (t *Tracker) Record(kind string, payload map[string]any) error {
	payloadJSON := "{}"
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding action payload: %w", err)
		}
		payloadJSON = string(b)
	}
	if _, err := t.db.LogAction(kind, payloadJSON, t.now().Format(timeLayout)); err != nil {
		return err
	}

	t.mu.Lock()
	t.buffer = append(t.buffer, kind)
	flush := len(t.buffer) >= flushThreshold
	if flush {
		t.buffer = t.buffer[:0]
	}
	t.mu.Unlock()

	if flush {
		return t.AnalyzePatterns()
	}
	return nil
}

// AnalyzePatterns re-scans the recent action log and upserts derived
// patterns. Each pass is a fresh, independent estimate: a pattern with the
// same name is overwritten, never merged.
func (t *Tracker) AnalyzePatterns() error {
	actions, err := t.db.GetRecentActions(analysisWindow)
	if err != nil {
		return fmt.Errorf("analyzing patterns: %w", err)
	}
	if len(actions) < minActions {
		return nil
	}

	total := len(actions)
	lastSeen := t.now().Format(timeLayout)

	var hourCounts [24]int
	var dayCounts [7]int
	var taskHours []int
	for _, a := range actions {
		at, ok := db.ParseWhen(a.OccurredAt)
		if !ok {
			continue
		}
		hourCounts[at.Hour()]++
		dayCounts[int(at.Weekday())]++
		if a.Kind == ActionTaskCreated {
			taskHours = append(taskHours, at.Hour())
		}
	}

	// Hours with significantly more activity than average.
	avg := float64(total) / 24
	for hour := 0; hour < 24; hour++ {
		c := hourCounts[hour]
		if float64(c) >= avg*2 && c >= 3 {
			h := hour
			confidence := math.Min(float64(c)/float64(total), 0.95)
			if err := t.save(Pattern{
				Name:        fmt.Sprintf("Active at %d:00", hour),
				Kind:        TimeBased,
				Hour:        &h,
				Frequency:   "daily",
				Confidence:  confidence,
				Occurrences: c,
				LastSeen:    lastSeen,
			}); err != nil {
				return err
			}
		}
	}

	// All activity on weekdays, none on weekends.
	weekdayTotal := dayCounts[1] + dayCounts[2] + dayCounts[3] + dayCounts[4] + dayCounts[5]
	weekendTotal := dayCounts[0] + dayCounts[6]
	if weekdayTotal > 0 && weekendTotal == 0 {
		if err := t.save(Pattern{
			Name:        "Uses the app on weekdays only",
			Kind:        FrequencyBased,
			Frequency:   "weekdays",
			Confidence:  0.7,
			Occurrences: weekdayTotal,
			LastSeen:    lastSeen,
		}); err != nil {
			return err
		}
	}

	// Task creation clustered around one hour.
	if len(taskHours) >= 3 {
		mode, count := findMode(taskHours)
		if count >= 3 {
			h := mode
			if err := t.save(Pattern{
				Name:        fmt.Sprintf("%s %d:00", plansTasksPrefix, mode),
				Kind:        TimeBased,
				Hour:        &h,
				Frequency:   "daily",
				Confidence:  float64(count) / float64(len(taskHours)),
				Occurrences: count,
				LastSeen:    lastSeen,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// findMode returns the most frequent value and its count. Ties go to the
// first value that reached the maximum count in input order, which keeps the
// result deterministic.
func findMode(values []int) (int, int) {
	counts := make(map[int]int)
	mode, maxCount := values[0], 0
	for _, v := range values {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
			mode = v
		}
	}
	return mode, maxCount
}

func (t *Tracker) save(p Pattern) error {
	p.SchemaVersion = patternSchemaVersion
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding pattern %q: %w", p.Name, err)
	}
	return t.db.SaveRoutine(p.Name, string(blob), p.Frequency, p.LastSeen)
}

// ActiveRoutines returns stored patterns with confidence >= 0.5. Corrupt or
// unrecognized blobs are dropped, never surfaced as errors.
func (t *Tracker) ActiveRoutines() ([]Pattern, error) {
	routines, err := t.db.GetRoutines()
	if err != nil {
		return nil, err
	}
	var out []Pattern
	for _, r := range routines {
		p, ok := decodePattern(r.Pattern)
		if !ok {
			continue
		}
		if p.Confidence >= activeThreshold {
			out = append(out, p)
		}
	}
	return out, nil
}

// decodePattern tolerantly decodes a stored blob: invalid JSON or a foreign
// schema version yields (zero, false).
func decodePattern(blob string) (Pattern, bool) {
	if !gjson.Valid(blob) {
		return Pattern{}, false
	}
	if gjson.Get(blob, "schema_version").Int() != patternSchemaVersion {
		return Pattern{}, false
	}
	var p Pattern
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return Pattern{}, false
	}
	return p, true
}

// Suggestions renders human-readable text for high-confidence patterns.
func (t *Tracker) Suggestions() ([]string, error) {
	routines, err := t.ActiveRoutines()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range routines {
		if r.Confidence >= suggestThreshold {
			out = append(out, fmt.Sprintf("Noticed: %s (%d%% confidence)", r.Name, int(math.Round(r.Confidence*100))))
		}
	}
	return out, nil
}

// TimeSuggestion returns at most one proactive prompt when a time-based
// planning pattern matches the current hour. The name-template match is the
// intended trigger, not the pattern kind alone.
func (t *Tracker) TimeSuggestion(currentHour, _ int) (string, bool) {
	routines, err := t.ActiveRoutines()
	if err != nil {
		return "", false
	}
	for _, r := range routines {
		if r.Kind == TimeBased && r.Hour != nil && *r.Hour == currentHour &&
			r.Confidence >= timeTriggerMinConf && strings.Contains(r.Name, plansTasksPrefix) {
			return timeSuggestionReply, true
		}
	}
	return "", false
}

// Count returns the number of stored routines, active or not.
func (t *Tracker) Count() (int, error) {
	routines, err := t.db.GetRoutines()
	if err != nil {
		return 0, err
	}
	return len(routines), nil
}
