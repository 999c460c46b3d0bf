package agent

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/marko/rafi/internal/llm"
)

// Session owns the conversation history for one chat session. Sends on the
// same session are serialized: the mutex is held across the whole exchange,
// so two overlapping sends can never interleave their histories.
type Session struct {
	agent *Agent
	id    string

	mu      sync.Mutex
	history []llm.Message
}

func (a *Agent) NewSession() *Session {
	return &Session{agent: a, id: uuid.NewString()}
}

func (s *Session) ID() string { return s.id }

// Send runs one user turn through the tool loop. On error the session
// history is left exactly as it was before the call.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, newHistory, err := s.agent.Run(ctx, s.history, text)
	if err != nil {
		return "", err
	}
	s.history = newHistory

	// Transcript rows are best-effort; a persistence hiccup doesn't fail
	// a reply the user already has.
	if err := s.agent.db.SaveConversationMessage(s.id, "user", text); err != nil {
		log.Printf("saving transcript: %v", err)
	}
	if err := s.agent.db.SaveConversationMessage(s.id, "assistant", reply); err != nil {
		log.Printf("saving transcript: %v", err)
	}
	return reply, nil
}

// Reset clears the session history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// History returns a copy of the session history.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}
