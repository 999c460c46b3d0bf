package routine

// Action kinds fed into the tracker. These are the only kinds the detectors
// know about; unknown kinds still count toward hour/day activity.
const (
	ActionTaskCreated   = "task_created"
	ActionTaskCompleted = "task_completed"
	ActionChatMessage   = "chat_message"
	ActionAppOpened     = "app_opened"
)

// Pattern kinds.
const (
	TimeBased      = "time_based"
	FrequencyBased = "frequency_based"
	SequenceBased  = "sequence_based"
)

// patternSchemaVersion tags stored pattern blobs. Blobs with a different
// version are skipped on read rather than guessed at.
const patternSchemaVersion = 1

// Pattern is a derived hypothesis that the user behaves predictably at a
// given time or frequency. Confidence never asserts full certainty; it is
// capped at 0.95.
type Pattern struct {
	SchemaVersion int     `json:"schema_version"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Hour          *int    `json:"hour,omitempty"`
	Frequency     string  `json:"frequency"`
	Confidence    float64 `json:"confidence"`
	Occurrences   int     `json:"occurrences"`
	LastSeen      string  `json:"last_seen"`
}
