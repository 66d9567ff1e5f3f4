package prompts

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Default returns the default prompt for a type.
func (r *PGRepo) Default(ctx context.Context, promptType string) (SystemPrompt, error) {
	const query = `
SELECT id, type, content, json_schema, is_default, created_at, updated_at
FROM system_prompts
WHERE type = $1 AND is_default
LIMIT 1`
	return scanPrompt(r.DB.QueryRowContext(ctx, query, promptType))
}

func scanPrompt(row *sql.Row) (SystemPrompt, error) {
	var p SystemPrompt
	var schema sql.NullString
	err := row.Scan(&p.ID, &p.Type, &p.Content, &schema, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SystemPrompt{}, ErrNotFound
	}
	if err != nil {
		return SystemPrompt{}, err
	}
	if schema.Valid {
		p.JSONSchema = schema.String
	}
	return p, nil
}
