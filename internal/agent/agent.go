package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/marko/rafi/internal/db"
	"github.com/marko/rafi/internal/insight"
	"github.com/marko/rafi/internal/llm"
	"github.com/marko/rafi/internal/memory"
	"github.com/marko/rafi/internal/planner"
	"github.com/marko/rafi/internal/routine"
	"github.com/marko/rafi/internal/search"
)

// maxToolRounds caps LLM round-trips for a single send.
const maxToolRounds = 5

const (
	exhaustedReply = "Sorry, that took too many steps to work out."
	emptyReply     = "I don't have an answer for that."
)

type Agent struct {
	db       *db.DB
	client   llm.Client
	routines *routine.Tracker
	memory   *memory.Service
	planner  *planner.Service
	insights *insight.Optimizer
	search   *search.Client
	now      func() time.Time
}

func New(database *db.DB, client llm.Client, routines *routine.Tracker, mem *memory.Service, plan *planner.Service, insights *insight.Optimizer, searcher *search.Client) *Agent {
	return &Agent{
		db:       database,
		client:   client,
		routines: routines,
		memory:   mem,
		planner:  plan,
		insights: insights,
		search:   searcher,
		now:      time.Now,
	}
}

// Now exposes the agent's clock so callers stamp actions consistently.
func (a *Agent) Now() time.Time { return a.now() }

// Run takes a user message, drives the bounded tool-calling loop, and returns
// the final text plus the new history. On error the returned history is nil
// and the caller's history is untouched, so a failed send never leaves an
// unanswered user turn behind. On exhaustion the tool exchanges of the failed
// loop are dropped; only the user turn and the apology are committed.
func (a *Agent) Run(ctx context.Context, history []llm.Message, userMessage string) (string, []llm.Message, error) {
	committed := make([]llm.Message, len(history), len(history)+2)
	copy(committed, history)
	committed = append(committed, llm.Message{Role: "user", Content: userMessage})

	working := make([]llm.Message, len(committed))
	copy(working, committed)

	for i := 0; i < maxToolRounds; i++ {
		resp, err := a.client.Chat(ctx, llm.SystemPrompt, working, llm.AgentTools)
		if err != nil {
			return "", nil, fmt.Errorf("llm chat: %w", err)
		}

		// No tool calls — we have a final answer.
		if len(resp.ToolCalls) == 0 {
			reply := resp.Content
			if reply == "" {
				reply = emptyReply
			}
			working = append(working, llm.Message{Role: "assistant", Content: reply})
			return reply, working, nil
		}

		working = append(working, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result := a.executeTool(ctx, tc.Name, tc.Params)
			log.Printf("tool %s → %s", tc.Name, truncate(result, 200))
			working = append(working, llm.Message{
				Role:       "user",
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	return exhaustedReply, append(committed, llm.Message{Role: "assistant", Content: exhaustedReply}), nil
}

// executeTool dispatches a tool call and returns a JSON result string.
// Handlers never panic outward; every failure becomes an {error, message}
// payload so the loop keeps running and the model can react.
func (a *Agent) executeTool(ctx context.Context, name string, params map[string]any) string {
	var result any
	var err error

	switch name {
	case "create_task":
		title, ok := getString(params, "title")
		if !ok || title == "" {
			err = fmt.Errorf("title is required")
			break
		}
		description, _ := getString(params, "description")
		dueDate, _ := getString(params, "due_date")
		priority, _ := getString(params, "priority")
		id, e := a.db.CreateTask(title, description, dueDate, priority)
		if e != nil {
			err = e
			break
		}
		a.recordAction(routine.ActionTaskCreated, map[string]any{
			"title": title, "priority": priority, "hour": a.now().Hour(),
		})
		result = map[string]any{"success": true, "task_id": id, "message": fmt.Sprintf("Task %q created.", title)}

	case "list_tasks":
		status, _ := getString(params, "status")
		if status == "" {
			status = "pending"
		}
		date, _ := getString(params, "date")
		result, err = a.db.GetTasks(status, date)

	case "complete_task":
		id, ok := getInt(params, "task_id")
		if !ok {
			err = fmt.Errorf("task_id is required")
			break
		}
		if err = a.db.CompleteTask(id); err != nil {
			break
		}
		a.recordAction(routine.ActionTaskCompleted, map[string]any{
			"task_id": id, "hour": a.now().Hour(),
		})
		result = map[string]any{"success": true, "message": fmt.Sprintf("Task #%d marked as completed.", id)}

	case "edit_task":
		id, ok := getInt(params, "task_id")
		if !ok {
			err = fmt.Errorf("task_id is required")
			break
		}
		fields := make(map[string]any)
		for _, k := range []string{"title", "description", "due_date", "priority"} {
			if v, ok := params[k]; ok {
				fields[k] = v
			}
		}
		if err = a.db.EditTask(id, fields); err == nil {
			result = map[string]any{"success": true, "message": fmt.Sprintf("Task #%d updated.", id)}
		}

	case "delete_task":
		id, ok := getInt(params, "task_id")
		if !ok {
			err = fmt.Errorf("task_id is required")
			break
		}
		if err = a.db.DeleteTask(id); err == nil {
			result = map[string]any{"success": true, "message": fmt.Sprintf("Task #%d deleted.", id)}
		}

	case "read_calendar":
		now := a.now()
		start, _ := getString(params, "start_date")
		if start == "" {
			start = now.Format("2006-01-02 15:04:05")
		}
		end, _ := getString(params, "end_date")
		if end == "" {
			end = now.AddDate(0, 0, 7).Format("2006-01-02 15:04:05")
		}
		limit, _ := getInt(params, "limit")
		events, e := a.db.GetEvents(start, end, int(limit))
		if e != nil {
			err = e
			break
		}
		msg := "No events in that period."
		if len(events) > 0 {
			msg = fmt.Sprintf("Found %d events.", len(events))
		}
		result = map[string]any{"success": true, "events": events, "message": msg}

	case "create_event":
		title, ok := getString(params, "title")
		if !ok || title == "" {
			err = fmt.Errorf("title is required")
			break
		}
		startStr, _ := getString(params, "start_date")
		start, okStart := db.ParseWhen(startStr)
		if !okStart {
			err = fmt.Errorf("invalid start_date %q", startStr)
			break
		}
		endStr, _ := getString(params, "end_date")
		if endStr == "" {
			endStr = start.Add(time.Hour).Format("2006-01-02 15:04:05")
		}
		location, _ := getString(params, "location")
		notes, _ := getString(params, "notes")
		id, e := a.db.CreateEvent(title, startStr, endStr, location, notes)
		if e != nil {
			err = e
			break
		}
		result = map[string]any{"success": true, "event_id": id, "message": fmt.Sprintf("Event %q added to the calendar for %s.", title, startStr)}

	case "set_reminder":
		message, ok := getString(params, "message")
		if !ok || message == "" {
			err = fmt.Errorf("message is required")
			break
		}
		at, _ := getString(params, "datetime")
		id, e := a.db.CreateReminder(message, at)
		if e != nil {
			err = e
			break
		}
		result = map[string]any{"success": true, "reminder_id": id, "message": fmt.Sprintf("Reminder set for %s.", at)}

	case "list_reminders":
		includeSent, _ := getBool(params, "include_sent")
		result, err = a.db.ListReminders(includeSent)

	case "cancel_reminder":
		id, ok := getInt(params, "reminder_id")
		if !ok {
			err = fmt.Errorf("reminder_id is required")
			break
		}
		if err = a.db.CancelReminder(id); err == nil {
			result = map[string]any{"success": true, "message": fmt.Sprintf("Reminder #%d canceled.", id)}
		}

	case "get_routine_info":
		routines, e := a.routines.ActiveRoutines()
		if e != nil {
			err = e
			break
		}
		suggestions, e := a.routines.Suggestions()
		if e != nil {
			err = e
			break
		}
		result = map[string]any{"routines": routines, "suggestions": suggestions}

	case "save_preference":
		key, ok := getString(params, "key")
		if !ok || key == "" {
			err = fmt.Errorf("key is required")
			break
		}
		value, _ := getString(params, "value")
		if err = a.db.SetPreference(key, value); err == nil {
			result = map[string]any{"success": true, "message": fmt.Sprintf("Preference %q saved.", key)}
		}

	case "suggest_schedule":
		result, err = a.planner.SuggestSchedule()

	case "get_productivity_score":
		result, err = a.planner.ProductivityScore()

	case "get_insights":
		result, err = a.insights.Insights()

	case "web_search":
		query, ok := getString(params, "query")
		if !ok || query == "" {
			err = fmt.Errorf("query is required")
			break
		}
		n, _ := getInt(params, "num_results")
		result, err = a.search.Search(ctx, query, int(n))

	case "get_daily_summary":
		result, err = a.DailySummary()

	default:
		err = fmt.Errorf("unknown tool: %s", name)
	}

	if err != nil {
		result = map[string]any{"error": true, "message": err.Error()}
	}

	b, _ := json.Marshal(result) // result is always a simple map or slice; marshal cannot fail
	return string(b)
}

// recordAction feeds the routine tracker; mining failures are logged, never
// allowed to break a tool call that already succeeded.
func (a *Agent) recordAction(kind string, payload map[string]any) {
	if err := a.routines.Record(kind, payload); err != nil {
		log.Printf("recording %s action: %v", kind, err)
	}
}

// Param extraction helpers — LLMs send numbers as float64 in JSON.
func getInt(params map[string]any, key string) (int64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func getString(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getBool(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
