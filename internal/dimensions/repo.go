package dimensions

import "context"

// Repo defines persistence operations for dimensions.
type Repo interface {
	ListByType(ctx context.Context, dimensionType string) ([]Dimension, error)
	NamesByIDs(ctx context.Context, dimensionType string, ids []int64) ([]string, error)
	Create(ctx context.Context, dim Dimension) (Dimension, error)
	Delete(ctx context.Context, dimensionType string, id int64) error
}
