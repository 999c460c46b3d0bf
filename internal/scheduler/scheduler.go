package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marko/rafi/internal/agent"
	"github.com/marko/rafi/internal/db"
)

// Scheduler runs the recurring jobs: the daily check-in, an hourly proactive
// suggestion sweep, and a reminder poll. Output is delivered by DM when a
// Discord user is known, falling back to the webhook.
type Scheduler struct {
	cron       *cron.Cron
	db         *db.DB
	agent      *agent.Agent
	webhookURL string
	dmSend     func(userID, content string) error

	done     chan struct{}
	stopOnce sync.Once
}

func New(database *db.DB, ag *agent.Agent, webhookURL string, dmSend func(userID, content string) error) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		db:         database,
		agent:      ag,
		webhookURL: webhookURL,
		dmSend:     dmSend,
		done:       make(chan struct{}),
	}
}

// Start registers the jobs and starts the cron loop. checkInCron is the cron
// expression for the daily check-in, e.g. "0 9 * * *".
func (s *Scheduler) Start(checkInCron string) error {
	if checkInCron != "" {
		if _, err := s.cron.AddFunc(checkInCron, s.runCheckIn); err != nil {
			return fmt.Errorf("invalid check-in cron %q: %w", checkInCron, err)
		}
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.runProactiveSweep); err != nil {
		return fmt.Errorf("registering proactive sweep: %w", err)
	}
	s.cron.Start()

	// Poll for due reminders every 60 seconds until Stop.
	go func() {
		t := time.NewTicker(60 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.fireReminders()
			case <-s.done:
				return
			}
		}
	}()

	log.Println("scheduler started")
	return nil
}

// Stop halts the cron jobs and ends the reminder poll. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Scheduler) runCheckIn() {
	prompt, err := s.agent.BuildCheckInPrompt()
	if err != nil {
		log.Printf("check-in: building prompt: %v", err)
		return
	}

	reply, _, err := s.agent.Run(context.Background(), nil, prompt)
	if err != nil {
		log.Printf("check-in: agent error: %v", err)
		return
	}

	s.deliver("check-in", reply)
	log.Println("check-in: completed")
}

// runProactiveSweep surfaces at most one unprompted suggestion per hour.
func (s *Scheduler) runProactiveSweep() {
	msg, ok := s.agent.ProactiveSuggestion()
	if !ok {
		return
	}
	s.deliver("proactive", msg)
}

func (s *Scheduler) fireReminders() {
	due, err := s.db.ListDueReminders(time.Now())
	if err != nil {
		log.Printf("scheduler: listing reminders: %v", err)
		return
	}
	for _, r := range due {
		msg := fmt.Sprintf("A reminder you set: %s", r.Message)
		reply, _, err := s.agent.Run(context.Background(), nil, msg)
		if err != nil {
			log.Printf("scheduler: reminder %d agent error: %v", r.ID, err)
			continue
		}
		if err := s.db.MarkReminderSent(r.ID); err != nil {
			log.Printf("scheduler: marking reminder %d sent: %v", r.ID, err)
		}
		s.deliver(fmt.Sprintf("reminder[%d]", r.ID), reply)
		log.Printf("scheduler: fired reminder %d", r.ID)
	}
}

func (s *Scheduler) deliver(label, content string) {
	// Try DM first
	if s.dmSend != nil {
		userID, err := s.db.GetPreference("discord_user_id")
		if err == nil && userID != "" {
			if err := s.dmSend(userID, content); err != nil {
				log.Printf("%s: DM send failed: %v", label, err)
			} else {
				return
			}
		}
	}
	// Fall back to webhook
	if s.webhookURL != "" {
		if err := postWebhook(s.webhookURL, content); err != nil {
			log.Printf("%s: webhook failed: %v", label, err)
		}
		return
	}
	log.Printf("%s: no delivery method available (no DM user and no webhook)", label)
}

func postWebhook(url, content string) error {
	payload := map[string]string{"content": content}
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
