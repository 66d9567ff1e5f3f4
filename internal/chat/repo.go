package chat

import "context"

// Repo defines persistence operations for chat messages.
type Repo interface {
	// ListRecent returns up to limit prior messages for a session in
	// chronological order, excluding validation artifacts.
	ListRecent(ctx context.Context, sessionID string, limit int) ([]Message, error)
	// ListBySession returns every message of a session in chronological order.
	ListBySession(ctx context.Context, sessionID string) ([]Message, error)
	Create(ctx context.Context, msg Message) (Message, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
