package dimensions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores dimensions in memory and is safe for concurrent use.
// It is seeded with the default dimension set for each type.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Dimension
}

// NewMemoryRepo constructs a MemoryRepo seeded with default dimensions.
func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{byID: make(map[int64]Dimension), nextID: 1}
	defaults := map[string][]string{
		TypeCleaning: {
			"Typo correction",
			"Punctuation normalization",
			"Format consistency",
			"Grammar cleanup",
			"Terminology consistency",
		},
		TypeLabeling: {
			"Intent",
			"Role",
			"Sentiment",
			"Topic",
			"Keywords",
		},
	}
	for _, dimType := range []string{TypeCleaning, TypeLabeling} {
		for ord, name := range defaults[dimType] {
			now := time.Now().UTC()
			r.byID[r.nextID] = Dimension{
				ID:          r.nextID,
				Type:        dimType,
				Name:        name,
				Description: "Default " + dimType + " dimension: " + name,
				IsDefault:   true,
				Ord:         ord,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			r.nextID++
		}
	}
	return r
}

// ListByType returns dimensions of a type ordered by their display order.
func (r *MemoryRepo) ListByType(ctx context.Context, dimensionType string) ([]Dimension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Dimension
	for _, d := range r.byID {
		if d.Type == dimensionType {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ord == result[j].Ord {
			return result[i].ID < result[j].ID
		}
		return result[i].Ord < result[j].Ord
	})
	return result, nil
}

// NamesByIDs resolves dimension names for the given IDs, preserving the
// caller's ID order. Unknown IDs are skipped.
func (r *MemoryRepo) NamesByIDs(ctx context.Context, dimensionType string, ids []int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.byID[id]; ok && d.Type == dimensionType {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

// Create stores a new dimension at the end of its type's order.
func (r *MemoryRepo) Create(ctx context.Context, dim Dimension) (Dimension, error) {
	if err := ctx.Err(); err != nil {
		return Dimension{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	maxOrd := -1
	for _, d := range r.byID {
		if d.Type != dim.Type {
			continue
		}
		if d.Name == dim.Name {
			return Dimension{}, ErrDuplicateName
		}
		if d.Ord > maxOrd {
			maxOrd = d.Ord
		}
	}
	now := time.Now().UTC()
	dim.ID = r.nextID
	dim.IsDefault = false
	dim.Ord = maxOrd + 1
	dim.CreatedAt = now
	dim.UpdatedAt = now
	r.byID[dim.ID] = dim
	r.nextID++
	return dim, nil
}

// Delete removes a non-default dimension and compacts the remaining order.
func (r *MemoryRepo) Delete(ctx context.Context, dimensionType string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok || d.Type != dimensionType {
		return ErrNotFound
	}
	if d.IsDefault {
		return ErrDefaultProtected
	}
	delete(r.byID, id)

	var remaining []Dimension
	for _, rd := range r.byID {
		if rd.Type == dimensionType {
			remaining = append(remaining, rd)
		}
	}
	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].Ord == remaining[j].Ord {
			return remaining[i].ID < remaining[j].ID
		}
		return remaining[i].Ord < remaining[j].Ord
	})
	for ord, rd := range remaining {
		if rd.Ord != ord {
			rd.Ord = ord
			rd.UpdatedAt = time.Now().UTC()
			r.byID[rd.ID] = rd
		}
	}
	return nil
}
