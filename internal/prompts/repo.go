package prompts

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no prompt matches the requested type.
var ErrNotFound = errors.New("prompt not found")

// Repo defines persistence operations for system prompts. The pipeline and
// chat flow only resolve the default prompt per type; prompt rows are
// managed by migration seeds.
type Repo interface {
	Default(ctx context.Context, promptType string) (SystemPrompt, error)
}
