package dimensions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ListByType returns dimensions of a type ordered by their display order.
func (r *PGRepo) ListByType(ctx context.Context, dimensionType string) ([]Dimension, error) {
	const query = `
SELECT id, type, name, description, is_default, ord, created_at, updated_at
FROM dimensions
WHERE type = $1
ORDER BY ord, id`
	rows, err := r.DB.QueryContext(ctx, query, dimensionType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Dimension
	for rows.Next() {
		var d Dimension
		var description sql.NullString
		if err := rows.Scan(&d.ID, &d.Type, &d.Name, &description, &d.IsDefault, &d.Ord, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			d.Description = description.String
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// NamesByIDs resolves dimension names for the given IDs, preserving the
// caller's ID order. Unknown IDs are skipped.
func (r *PGRepo) NamesByIDs(ctx context.Context, dimensionType string, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
SELECT id, name
FROM dimensions
WHERE type = $1 AND id = ANY($2)`
	rows, err := r.DB.QueryContext(ctx, query, dimensionType, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		byID[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Create inserts a new dimension at the end of its type's order.
func (r *PGRepo) Create(ctx context.Context, dim Dimension) (Dimension, error) {
	const query = `
INSERT INTO dimensions (type, name, description, is_default, ord)
VALUES ($1, $2, NULLIF($3, ''), FALSE,
        (SELECT COALESCE(MAX(ord), -1) + 1 FROM dimensions WHERE type = $1))
RETURNING id, is_default, ord, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, dim.Type, dim.Name, dim.Description).
		Scan(&dim.ID, &dim.IsDefault, &dim.Ord, &dim.CreatedAt, &dim.UpdatedAt)
	if isUniqueViolation(err) {
		return Dimension{}, ErrDuplicateName
	}
	if err != nil {
		return Dimension{}, err
	}
	return dim, nil
}

// Delete removes a non-default dimension and compacts the remaining order.
func (r *PGRepo) Delete(ctx context.Context, dimensionType string, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var isDefault bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_default FROM dimensions WHERE type = $1 AND id = $2 FOR UPDATE`,
		dimensionType, id,
	).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if isDefault {
		return ErrDefaultProtected
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dimensions WHERE id = $1`, id); err != nil {
		return err
	}

	// Reassign ord so the list stays dense after removal.
	const reorder = `
UPDATE dimensions d
SET ord = ranked.new_ord, updated_at = now()
FROM (
	SELECT id, ROW_NUMBER() OVER (ORDER BY ord, id) - 1 AS new_ord
	FROM dimensions
	WHERE type = $1
) ranked
WHERE d.id = ranked.id AND d.ord <> ranked.new_ord`
	if _, err := tx.ExecContext(ctx, reorder, dimensionType); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
