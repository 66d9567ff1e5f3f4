package prompts

import "time"

// Prompt type constants mirror the processing task types.
const (
	TypeCleaning = "cleaning"
	TypeLabeling = "labeling"
	TypeChat     = "chat"
)

// SystemPrompt is an instruction template sent as the system message of an
// LLM conversation. At most one prompt per type is the default.
type SystemPrompt struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	JSONSchema string    `json:"jsonSchema,omitempty"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
