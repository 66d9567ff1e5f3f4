package apiconfig

import "context"

// Repo defines persistence operations for provider credentials.
type Repo interface {
	Latest(ctx context.Context) (Config, error)
	Upsert(ctx context.Context, cfg Config) (Config, error)
}
