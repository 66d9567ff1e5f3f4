package apiconfig

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Latest returns the most recently updated credentials.
func (r *PGRepo) Latest(ctx context.Context) (Config, error) {
	const query = `
SELECT id, service_type, api_key, base_url, created_at, updated_at
FROM api_config
ORDER BY updated_at DESC, id DESC
LIMIT 1`
	var cfg Config
	var baseURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query).
		Scan(&cfg.ID, &cfg.ServiceType, &cfg.APIKey, &baseURL, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, ErrNotConfigured
	}
	if err != nil {
		return Config{}, err
	}
	if baseURL.Valid {
		cfg.BaseURL = baseURL.String
	}
	return cfg, nil
}

// Upsert updates the row for the service type or inserts a new one.
func (r *PGRepo) Upsert(ctx context.Context, cfg Config) (Config, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Config{}, err
	}
	defer tx.Rollback()

	const update = `
UPDATE api_config
SET api_key = $2, base_url = NULLIF($3, ''), updated_at = now()
WHERE service_type = $1
RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, update, cfg.ServiceType, cfg.APIKey, cfg.BaseURL).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		const insert = `
INSERT INTO api_config (service_type, api_key, base_url)
VALUES ($1, $2, NULLIF($3, ''))
RETURNING id, created_at, updated_at`
		err = tx.QueryRowContext(ctx, insert, cfg.ServiceType, cfg.APIKey, cfg.BaseURL).
			Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	}
	if err != nil {
		return Config{}, err
	}
	if err := tx.Commit(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
