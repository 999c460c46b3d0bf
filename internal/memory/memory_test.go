package memory

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/marko/rafi/internal/db"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(d), d
}

func TestDailyTipPeriods(t *testing.T) {
	cases := []struct {
		hour   int
		period string
	}{
		{5, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{17, "afternoon"},
		{18, "evening"},
		{23, "evening"},
		{0, "evening"},
		{4, "evening"},
	}
	for _, c := range cases {
		s, _ := newTestService(t)
		got := s.DailyTip(c.hour)
		if got != tips[c.period][0] {
			t.Errorf("DailyTip(%d) = %q, want first %s tip", c.hour, got, c.period)
		}
	}
}

func TestDailyTipRotation(t *testing.T) {
	s, _ := newTestService(t)

	morning := tips["morning"]
	for round := 0; round < 2; round++ {
		for i := range morning {
			got := s.DailyTip(9)
			if got != morning[i] {
				t.Fatalf("round %d tip %d: got %q, want %q", round, i, got, morning[i])
			}
		}
	}
}

func TestDailyTipPeriodsRotateIndependently(t *testing.T) {
	s, _ := newTestService(t)

	s.DailyTip(9) // advance morning only
	if got := s.DailyTip(14); got != tips["afternoon"][0] {
		t.Errorf("afternoon rotation affected by morning: got %q", got)
	}
	if got := s.DailyTip(9); got != tips["morning"][1] {
		t.Errorf("expected second morning tip, got %q", got)
	}
}

func TestUserProfileEmpty(t *testing.T) {
	s, _ := newTestService(t)

	p, err := s.UserProfile()
	if err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	if p.TotalTasks != 0 || p.CompletedTasks != 0 {
		t.Errorf("expected zero task counts, got %+v", p)
	}
	if p.CompletionRate != 0 {
		t.Errorf("expected completion rate 0 on empty db, got %v", p.CompletionRate)
	}
	if len(p.PeakHours) != 0 {
		t.Errorf("expected no peak hours, got %v", p.PeakHours)
	}
}

func TestUserProfileCompletionRate(t *testing.T) {
	s, d := newTestService(t)

	var ids []int64
	for i := 0; i < 4; i++ {
		id, _ := d.CreateTask("t", "", "", "")
		ids = append(ids, id)
	}
	d.CompleteTask(ids[0])
	d.CompleteTask(ids[1])

	p, err := s.UserProfile()
	if err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	if p.TotalTasks != 4 || p.CompletedTasks != 2 {
		t.Errorf("expected 2 of 4 completed, got %+v", p)
	}
	if p.CompletionRate != 0.5 {
		t.Errorf("expected rate 0.5, got %v", p.CompletionRate)
	}
}

func TestUserProfilePeakHours(t *testing.T) {
	s, d := newTestService(t)

	log := func(hour, times int) {
		for i := 0; i < times; i++ {
			d.LogAction("chat_message", "{}", timestamp(hour))
		}
	}
	log(9, 3)
	log(14, 2)
	log(20, 2) // ties with 14; earlier hour wins
	log(7, 1)
	log(22, 1)

	p, err := s.UserProfile()
	if err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	want := []int{9, 14, 20}
	if !reflect.DeepEqual(p.PeakHours, want) {
		t.Errorf("expected peak hours %v, got %v", want, p.PeakHours)
	}
}

func TestUserProfilePreferencesAndRoutines(t *testing.T) {
	s, d := newTestService(t)

	d.SetPreference("work_start_hour", "9")
	d.SaveRoutine("morning", "{}", "daily", "")

	p, err := s.UserProfile()
	if err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	if p.Preferences["work_start_hour"] != "9" {
		t.Errorf("expected preference in profile, got %v", p.Preferences)
	}
	if p.RoutineCount != 1 {
		t.Errorf("expected routine count 1, got %d", p.RoutineCount)
	}
}

func TestTopHours(t *testing.T) {
	var counts [24]int
	counts[8] = 5
	counts[13] = 5
	counts[19] = 2
	counts[3] = 1

	got := topHours(counts, 3)
	want := []int{8, 13, 19}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topHours = %v, want %v", got, want)
	}

	if got := topHours([24]int{}, 3); len(got) != 0 {
		t.Errorf("expected empty result for no activity, got %v", got)
	}
}

func timestamp(hour int) string {
	return fmt.Sprintf("2026-03-02 %02d:00:00", hour)
}
