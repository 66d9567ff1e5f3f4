package llm

import "context"

// Message roles accepted by chat-completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Task types selecting prompt and sampling behavior.
const (
	TaskCleaning = "cleaning"
	TaskLabeling = "labeling"
	TaskChat     = "chat"
)

// Limits enforced uniformly across providers.
const (
	MaxOutputTokens = 3072
	RequestTimeout  = 180 // seconds
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client abstracts a remote chat-completion provider.
type Client interface {
	// ChatCompletion sends the ordered messages and returns the raw reply text.
	// taskType selects the sampling temperature; messages must be non-empty.
	ChatCompletion(ctx context.Context, messages []Message, taskType string) (string, error)
	// ValidateAPIKey issues a minimal single-turn request and reports success
	// iff a non-empty reply came back.
	ValidateAPIKey(ctx context.Context) error
}

var taskTemperatures = map[string]float32{
	TaskCleaning: 0.2,
	TaskLabeling: 0.2,
	TaskChat:     0.9,
}

// TemperatureFor returns the sampling temperature for a task type.
// Extraction tasks need determinism, conversation needs variety.
func TemperatureFor(taskType string) float32 {
	if t, ok := taskTemperatures[taskType]; ok {
		return t
	}
	return 0.8
}
