package apiconfig

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores provider credentials in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	byType map[string]Config
	latest string
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byType: make(map[string]Config), nextID: 1}
}

// Latest returns the most recently updated credentials.
func (r *MemoryRepo) Latest(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.byType[r.latest]
	if !ok {
		return Config{}, ErrNotConfigured
	}
	return cfg, nil
}

// Upsert updates the entry for the service type or creates a new one.
func (r *MemoryRepo) Upsert(ctx context.Context, cfg Config) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.byType[cfg.ServiceType]; ok {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	} else {
		cfg.ID = r.nextID
		cfg.CreatedAt = now
		r.nextID++
	}
	cfg.UpdatedAt = now
	r.byType[cfg.ServiceType] = cfg
	r.latest = cfg.ServiceType
	return cfg, nil
}
