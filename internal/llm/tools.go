package llm

// AgentTools is the fixed tool catalogue offered to the model. The schemas
// are part of the wire contract; changing them changes model behavior.
var AgentTools = []Tool{
	{
		Name:        "create_task",
		Description: "Create a new task for the user. Use for any request like 'remind me to', 'add a task', 'I have to...'.",
		Parameters: objReq(map[string]any{
			"title":       prop("string", "Task title"),
			"description": prop("string", "Longer description (optional)"),
			"due_date":    prop("string", "Due datetime, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS (optional)"),
			"priority":    enumProp("Task priority", "low", "medium", "high"),
		}, "title"),
	},
	{
		Name:        "list_tasks",
		Description: "List the user's tasks. Use when asked 'what do I have today', 'my tasks', etc.",
		Parameters: obj(map[string]any{
			"status": enumProp("Filter by status", "pending", "completed", "all"),
			"date":   prop("string", "Filter by due date (YYYY-MM-DD)"),
		}),
	},
	{
		Name:        "complete_task",
		Description: "Mark a task as completed.",
		Parameters: objReq(map[string]any{
			"task_id": prop("integer", "ID of the task to complete"),
		}, "task_id"),
	},
	{
		Name:        "edit_task",
		Description: "Edit a task by ID. Can change title, description, due_date, or priority.",
		Parameters: objReq(map[string]any{
			"task_id":     prop("integer", "Task ID"),
			"title":       prop("string", "New title"),
			"description": prop("string", "New description"),
			"due_date":    prop("string", "New due datetime"),
			"priority":    enumProp("New priority", "low", "medium", "high"),
		}, "task_id"),
	},
	{
		Name:        "delete_task",
		Description: "Delete a task by ID. Only on explicit user request.",
		Parameters: objReq(map[string]any{
			"task_id": prop("integer", "Task ID to delete"),
		}, "task_id"),
	},
	{
		Name:        "read_calendar",
		Description: "Read calendar events in a date range. Defaults to the next 7 days.",
		Parameters: obj(map[string]any{
			"start_date": prop("string", "Range start (YYYY-MM-DD), default now"),
			"end_date":   prop("string", "Range end (YYYY-MM-DD), default +7 days"),
			"limit":      prop("integer", "Max events to return (default 20)"),
		}),
	},
	{
		Name:        "create_event",
		Description: "Create a calendar event.",
		Parameters: objReq(map[string]any{
			"title":      prop("string", "Event title"),
			"start_date": prop("string", "Start datetime (YYYY-MM-DD HH:MM:SS)"),
			"end_date":   prop("string", "End datetime; default one hour after start"),
			"location":   prop("string", "Location (optional)"),
			"notes":      prop("string", "Notes (optional)"),
		}, "title", "start_date"),
	},
	{
		Name:        "set_reminder",
		Description: "Set a reminder notification for a specific time.",
		Parameters: objReq(map[string]any{
			"message":  prop("string", "Reminder text"),
			"datetime": prop("string", "When to fire (YYYY-MM-DD HH:MM:SS)"),
		}, "message", "datetime"),
	},
	{
		Name:        "list_reminders",
		Description: "List reminders. By default only upcoming unfired reminders.",
		Parameters: obj(map[string]any{
			"include_sent": prop("boolean", "Include already fired reminders (default false)"),
		}),
	},
	{
		Name:        "cancel_reminder",
		Description: "Cancel a pending reminder by ID.",
		Parameters: objReq(map[string]any{
			"reminder_id": prop("integer", "Reminder ID to cancel"),
		}, "reminder_id"),
	},
	{
		Name:        "get_routine_info",
		Description: "Get the behavioral routines RAFI has learned about the user. Use for advice about scheduling and habits.",
		Parameters:  obj(nil),
	},
	{
		Name:        "save_preference",
		Description: "Persist a lasting user preference as a key/value pair.",
		Parameters: objReq(map[string]any{
			"key":   prop("string", "Preference key, e.g. 'work_start_hour'"),
			"value": prop("string", "Preference value"),
		}, "key", "value"),
	},
	{
		Name:        "suggest_schedule",
		Description: "Build a time-blocked schedule suggestion for the pending tasks.",
		Parameters:  obj(nil),
	},
	{
		Name:        "get_productivity_score",
		Description: "Compute the user's 0-100 productivity score.",
		Parameters:  obj(nil),
	},
	{
		Name:        "get_insights",
		Description: "Get ranked productivity insights: achievements, warnings, patterns, and a daily tip.",
		Parameters:  obj(nil),
	},
	{
		Name:        "web_search",
		Description: "Search the web for current information. Use only when local data cannot answer.",
		Parameters: objReq(map[string]any{
			"query":       prop("string", "Search query"),
			"num_results": prop("integer", "Result count, max 10 (default 5)"),
		}, "query"),
	},
	{
		Name:        "get_daily_summary",
		Description: "Get today's overview: pending tasks, completions, upcoming reminders, routine suggestions, and a tip.",
		Parameters:  obj(nil),
	},
}

// Helper functions for building JSON Schema objects.

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func enumProp(desc string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": desc}
}

func obj(properties map[string]any) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func objReq(properties map[string]any, required ...string) map[string]any {
	s := obj(properties)
	s["required"] = required
	return s
}
