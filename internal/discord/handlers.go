package discord

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/marko/rafi/internal/agent"
	"github.com/marko/rafi/internal/routine"
)

// Per-channel chat sessions.
var (
	sessions   = make(map[string]*agent.Session)
	sessionsMu sync.Mutex
)

func (b *Bot) channelSession(channelID string) *agent.Session {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	s, ok := sessions[channelID]
	if !ok {
		s = b.agent.NewSession()
		sessions[channelID] = s
	}
	return s
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages
	if m.Author.ID == s.State.User.ID {
		return
	}

	// Only respond to DMs or when mentioned
	isDM := m.GuildID == ""
	isMentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			isMentioned = true
			break
		}
	}

	if !isDM && !isMentioned {
		return
	}

	if isDM {
		_ = b.db.SetPreference("discord_user_id", m.Author.ID)
	}

	content := strings.TrimSpace(m.Content)
	content = strings.TrimSpace(stripMention(content, s.State.User.ID))
	if content == "" {
		return
	}

	sess := b.channelSession(m.ChannelID)

	if content == "!reset" {
		sess.Reset()
		s.ChannelMessageSend(m.ChannelID, "Conversation cleared.")
		return
	}

	// Every inbound message is an action the routine miner can learn from.
	now := b.agent.Now()
	if err := b.routines.Record(routine.ActionChatMessage, map[string]any{
		"hour": now.Hour(), "day_of_week": int(now.Weekday()),
	}); err != nil {
		log.Printf("recording chat action: %v", err)
	}

	// Show typing indicator
	s.ChannelTyping(m.ChannelID)

	reply, err := sess.Send(context.Background(), content)
	if err != nil {
		log.Printf("agent error: %v", err)
		s.ChannelMessageSend(m.ChannelID, "Something went wrong. Try again?")
		return
	}

	// Discord has a 2000 char limit; split if needed
	for _, chunk := range splitMessage(reply, 2000) {
		s.ChannelMessageSend(m.ChannelID, chunk)
	}
}

func stripMention(s, userID string) string {
	s = strings.ReplaceAll(s, "<@"+userID+">", "")
	s = strings.ReplaceAll(s, "<@!"+userID+">", "")
	return s
}

func splitMessage(s string, maxLen int) []string {
	if len(s) <= maxLen {
		return []string{s}
	}
	var chunks []string
	for len(s) > 0 {
		end := maxLen
		if end > len(s) {
			end = len(s)
		}
		// Try to split at a newline
		if idx := strings.LastIndex(s[:end], "\n"); idx > 0 {
			end = idx + 1
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
