package routine

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/marko/rafi/internal/db"
)

func newTestTracker(t *testing.T) (*Tracker, *db.DB) {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	tr := New(d)
	// Pin the clock to a Monday morning so day-of-week math is stable.
	tr.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return tr, d
}

func TestRecordBuffersUntilThreshold(t *testing.T) {
	tr, _ := newTestTracker(t)

	for i := 0; i < flushThreshold-1; i++ {
		if err := tr.Record(ActionChatMessage, nil); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	tr.mu.Lock()
	n := len(tr.buffer)
	tr.mu.Unlock()
	if n != flushThreshold-1 {
		t.Fatalf("expected %d buffered actions, got %d", flushThreshold-1, n)
	}

	if err := tr.Record(ActionChatMessage, nil); err != nil {
		t.Fatalf("Record (flush): %v", err)
	}
	tr.mu.Lock()
	n = len(tr.buffer)
	tr.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected empty buffer after flush, got %d", n)
	}
}

func TestFlushRunsAnalysis(t *testing.T) {
	tr, d := newTestTracker(t)

	// Ten actions all at 9:00 on a Monday: both the hour pattern and the
	// weekday pattern should appear without an explicit analysis call.
	for i := 0; i < flushThreshold; i++ {
		if err := tr.Record(ActionChatMessage, nil); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	routines, err := d.GetRoutines()
	if err != nil {
		t.Fatalf("GetRoutines: %v", err)
	}
	if len(routines) == 0 {
		t.Fatal("expected patterns after the flush, got none")
	}
}

func TestAnalyzePatternsNeedsMinimumActions(t *testing.T) {
	tr, d := newTestTracker(t)

	for i := 0; i < minActions-1; i++ {
		d.LogAction(ActionChatMessage, "{}", "2026-03-02 09:00:00")
	}
	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	routines, _ := d.GetRoutines()
	if len(routines) != 0 {
		t.Fatalf("expected no patterns below the minimum, got %d", len(routines))
	}
}

func TestAnalyzePatternsHourCluster(t *testing.T) {
	tr, d := newTestTracker(t)

	// 24 actions: 6 at 9:00, 18 spread one per other hour. The 9:00 count is
	// six times the average, so only that hour qualifies.
	for i := 0; i < 6; i++ {
		d.LogAction(ActionChatMessage, "{}", "2026-03-02 09:00:00")
	}
	other := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	for _, h := range other {
		d.LogAction(ActionChatMessage, "{}", fmt.Sprintf("2026-03-03 %02d:00:00", h))
	}

	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}

	p := findPattern(t, d, "Active at 9:00")
	if p.Kind != TimeBased {
		t.Errorf("expected kind %q, got %q", TimeBased, p.Kind)
	}
	if p.Hour == nil || *p.Hour != 9 {
		t.Errorf("expected hour 9, got %v", p.Hour)
	}
	if p.Confidence != 0.25 {
		t.Errorf("expected confidence 0.25 (6 of 24), got %v", p.Confidence)
	}
	if p.Occurrences != 6 {
		t.Errorf("expected 6 occurrences, got %d", p.Occurrences)
	}

	// No other hour had enough activity.
	routines, _ := d.GetRoutines()
	for _, r := range routines {
		if strings.HasPrefix(r.Name, "Active at ") && r.Name != "Active at 9:00" {
			t.Errorf("unexpected hour pattern %q", r.Name)
		}
	}
}

func TestConfidenceCap(t *testing.T) {
	tr, d := newTestTracker(t)

	// Every action at the same hour would be confidence 1.0 uncapped.
	for i := 0; i < 10; i++ {
		d.LogAction(ActionChatMessage, "{}", "2026-03-02 09:00:00")
	}
	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	p := findPattern(t, d, "Active at 9:00")
	if p.Confidence != 0.95 {
		t.Errorf("expected confidence capped at 0.95, got %v", p.Confidence)
	}
}

func TestWeekdayOnlyPattern(t *testing.T) {
	tr, d := newTestTracker(t)

	// 2026-03-02..06 is Monday through Friday.
	for day := 2; day <= 6; day++ {
		d.LogAction(ActionChatMessage, "{}", fmt.Sprintf("2026-03-%02d 10:00:00", day))
	}
	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	p := findPattern(t, d, "Uses the app on weekdays only")
	if p.Confidence != 0.7 {
		t.Errorf("expected fixed confidence 0.7, got %v", p.Confidence)
	}
	if p.Frequency != "weekdays" {
		t.Errorf("expected frequency weekdays, got %q", p.Frequency)
	}
}

func TestWeekendActivitySuppressesWeekdayPattern(t *testing.T) {
	tr, d := newTestTracker(t)

	for day := 2; day <= 6; day++ {
		d.LogAction(ActionChatMessage, "{}", fmt.Sprintf("2026-03-%02d 10:00:00", day))
	}
	// 2026-03-07 is a Saturday.
	d.LogAction(ActionChatMessage, "{}", "2026-03-07 10:00:00")

	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	routines, _ := d.GetRoutines()
	for _, r := range routines {
		if r.Name == "Uses the app on weekdays only" {
			t.Error("weekday pattern should not exist with weekend activity")
		}
	}
}

func TestTaskCreationModePattern(t *testing.T) {
	tr, d := newTestTracker(t)

	// Four tasks created at 14:00, one at 8:00, padding actions elsewhere.
	for i := 0; i < 4; i++ {
		d.LogAction(ActionTaskCreated, "{}", "2026-03-02 14:00:00")
	}
	d.LogAction(ActionTaskCreated, "{}", "2026-03-02 08:00:00")
	d.LogAction(ActionChatMessage, "{}", "2026-03-03 10:00:00")

	if err := tr.AnalyzePatterns(); err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	p := findPattern(t, d, "Plans tasks around 14:00")
	if p.Hour == nil || *p.Hour != 14 {
		t.Errorf("expected hour 14, got %v", p.Hour)
	}
	if p.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8 (4 of 5 task creations), got %v", p.Confidence)
	}
}

func TestReanalysisOverwritesByName(t *testing.T) {
	tr, d := newTestTracker(t)

	for i := 0; i < 6; i++ {
		d.LogAction(ActionChatMessage, "{}", "2026-03-02 09:00:00")
	}
	tr.AnalyzePatterns()
	first := findPattern(t, d, "Active at 9:00")

	// More spread-out activity dilutes the estimate on the next pass.
	for h := 10; h < 16; h++ {
		d.LogAction(ActionChatMessage, "{}", fmt.Sprintf("2026-03-03 %02d:00:00", h))
	}
	tr.AnalyzePatterns()
	second := findPattern(t, d, "Active at 9:00")

	if second.Confidence >= first.Confidence {
		t.Errorf("expected confidence to drop on re-analysis: %v -> %v", first.Confidence, second.Confidence)
	}
	routines, _ := d.GetRoutines()
	seen := map[string]int{}
	for _, r := range routines {
		seen[r.Name]++
	}
	if seen["Active at 9:00"] != 1 {
		t.Errorf("expected one row per pattern name, got %d", seen["Active at 9:00"])
	}
}

func TestActiveRoutinesThresholdAndTolerantDecode(t *testing.T) {
	tr, d := newTestTracker(t)

	save := func(name string, conf float64) {
		blob, _ := json.Marshal(Pattern{
			SchemaVersion: patternSchemaVersion,
			Name:          name,
			Kind:          TimeBased,
			Frequency:     "daily",
			Confidence:    conf,
		})
		d.SaveRoutine(name, string(blob), "daily", "")
	}
	save("strong", 0.8)
	save("borderline", 0.5)
	save("weak", 0.3)
	d.SaveRoutine("corrupt", "{not json", "daily", "")
	d.SaveRoutine("foreign", `{"schema_version":99,"name":"foreign","confidence":0.9}`, "daily", "")

	active, err := tr.ActiveRoutines()
	if err != nil {
		t.Fatalf("ActiveRoutines: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active routines, got %d", len(active))
	}
	names := map[string]bool{}
	for _, p := range active {
		names[p.Name] = true
	}
	if !names["strong"] || !names["borderline"] {
		t.Errorf("unexpected active set: %v", names)
	}

	// Count still sees every stored row, decodable or not.
	n, _ := tr.Count()
	if n != 5 {
		t.Errorf("expected Count 5, got %d", n)
	}
}

func TestSuggestions(t *testing.T) {
	tr, d := newTestTracker(t)

	blob, _ := json.Marshal(Pattern{
		SchemaVersion: patternSchemaVersion,
		Name:          "Active at 9:00",
		Kind:          TimeBased,
		Frequency:     "daily",
		Confidence:    0.8,
	})
	d.SaveRoutine("Active at 9:00", string(blob), "daily", "")

	blob, _ = json.Marshal(Pattern{
		SchemaVersion: patternSchemaVersion,
		Name:          "borderline",
		Kind:          TimeBased,
		Frequency:     "daily",
		Confidence:    0.6,
	})
	d.SaveRoutine("borderline", string(blob), "daily", "")

	suggestions, err := tr.Suggestions()
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %v", len(suggestions), suggestions)
	}
	want := "Noticed: Active at 9:00 (80% confidence)"
	if suggestions[0] != want {
		t.Errorf("expected %q, got %q", want, suggestions[0])
	}
}

func TestTimeSuggestion(t *testing.T) {
	tr, d := newTestTracker(t)

	h := 9
	blob, _ := json.Marshal(Pattern{
		SchemaVersion: patternSchemaVersion,
		Name:          "Plans tasks around 9:00",
		Kind:          TimeBased,
		Hour:          &h,
		Frequency:     "daily",
		Confidence:    0.75,
	})
	d.SaveRoutine("Plans tasks around 9:00", string(blob), "daily", "")

	// An activity pattern at the same hour must not trigger.
	blob, _ = json.Marshal(Pattern{
		SchemaVersion: patternSchemaVersion,
		Name:          "Active at 9:00",
		Kind:          TimeBased,
		Hour:          &h,
		Frequency:     "daily",
		Confidence:    0.9,
	})
	d.SaveRoutine("Active at 9:00", string(blob), "daily", "")

	msg, ok := tr.TimeSuggestion(9, 1)
	if !ok {
		t.Fatal("expected a suggestion at the matching hour")
	}
	if msg != timeSuggestionReply {
		t.Errorf("unexpected reply %q", msg)
	}

	if _, ok := tr.TimeSuggestion(10, 1); ok {
		t.Error("expected no suggestion at a non-matching hour")
	}
}

func TestFindModeTies(t *testing.T) {
	cases := []struct {
		in        []int
		mode, cnt int
	}{
		{[]int{9}, 9, 1},
		{[]int{9, 9, 14}, 9, 2},
		{[]int{2, 3, 3, 2}, 3, 2},
		{[]int{1, 2, 2, 1}, 2, 2},
	}
	for _, c := range cases {
		mode, cnt := findMode(c.in)
		if mode != c.mode || cnt != c.cnt {
			t.Errorf("findMode(%v) = (%d, %d), want (%d, %d)", c.in, mode, cnt, c.mode, c.cnt)
		}
	}
}

func findPattern(t *testing.T, d *db.DB, name string) Pattern {
	t.Helper()
	routines, err := d.GetRoutines()
	if err != nil {
		t.Fatalf("GetRoutines: %v", err)
	}
	for _, r := range routines {
		if r.Name == name {
			p, ok := decodePattern(r.Pattern)
			if !ok {
				t.Fatalf("pattern %q did not decode: %s", name, r.Pattern)
			}
			return p
		}
	}
	t.Fatalf("pattern %q not found", name)
	return Pattern{}
}
