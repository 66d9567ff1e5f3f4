package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores chat messages in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	nextID    int64
	bySession map[string][]Message
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{bySession: make(map[string][]Message), nextID: 1}
}

// ListRecent returns up to limit non-validation messages for a session in
// chronological order, keeping the newest when over the limit.
func (r *MemoryRepo) ListRecent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var eligible []Message
	for _, m := range r.bySession[sessionID] {
		if !m.IsValidation {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) > limit {
		eligible = eligible[len(eligible)-limit:]
	}
	out := make([]Message, len(eligible))
	copy(out, eligible)
	return out, nil
}

// ListBySession returns every message of a session in chronological order.
func (r *MemoryRepo) ListBySession(ctx context.Context, sessionID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.bySession[sessionID]
	out := make([]Message, len(stored))
	copy(out, stored)
	return out, nil
}

// Create stores a message.
func (r *MemoryRepo) Create(ctx context.Context, msg Message) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = r.nextID
	msg.CreatedAt = time.Now().UTC()
	r.nextID++
	r.bySession[msg.SessionID] = append(r.bySession[msg.SessionID], msg)
	return msg, nil
}

// UpdateStatus sets the status of an existing message.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for sessionID, msgs := range r.bySession {
		for i, m := range msgs {
			if m.ID == id {
				msgs[i].Status = status
				r.bySession[sessionID] = msgs
				return nil
			}
		}
	}
	return nil
}

// DeleteBySession removes all messages of a session and reports the count.
func (r *MemoryRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := int64(len(r.bySession[sessionID]))
	delete(r.bySession, sessionID)
	return count, nil
}
