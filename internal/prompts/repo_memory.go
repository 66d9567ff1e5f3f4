package prompts

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores prompts in memory and is safe for concurrent use.
// It is seeded with the default prompt for each type so the service works
// without a database.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]SystemPrompt
}

// NewMemoryRepo constructs a MemoryRepo seeded with default prompts.
func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{byID: make(map[int64]SystemPrompt), nextID: 1}
	seed := []SystemPrompt{
		{
			Type:      TypeCleaning,
			Content:   "You are a data cleaning assistant. Clean the provided text according to the listed dimensions and reply with a JSON object describing the cleaned text and the corrections made.",
			IsDefault: true,
		},
		{
			Type:       TypeLabeling,
			Content:    "You are a data labeling assistant. Label the provided text along the listed dimensions and reply with a JSON object holding one value per dimension.",
			JSONSchema: `{"intent": "...", "role": "...", "sentiment": "...", "topic": "...", "keywords": ["..."]}`,
			IsDefault:  true,
		},
		{
			Type:      TypeChat,
			Content:   "You are a helpful assistant for a data cleaning and labeling workbench.",
			IsDefault: true,
		},
	}
	for _, p := range seed {
		now := time.Now().UTC()
		p.ID = r.nextID
		p.CreatedAt = now
		p.UpdatedAt = now
		r.byID[p.ID] = p
		r.nextID++
	}
	return r
}

// Default returns the default prompt for a type.
func (r *MemoryRepo) Default(ctx context.Context, promptType string) (SystemPrompt, error) {
	if err := ctx.Err(); err != nil {
		return SystemPrompt{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if p.Type == promptType && p.IsDefault {
			return p, nil
		}
	}
	return SystemPrompt{}, ErrNotFound
}
