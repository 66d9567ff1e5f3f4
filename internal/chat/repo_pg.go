package chat

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// ListRecent returns up to limit non-validation messages for a session in
// chronological order. The newest messages win when the session is longer
// than the limit.
func (r *PGRepo) ListRecent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	const query = `
SELECT id, session_id, role, content, status, is_validation, created_at
FROM (
	SELECT id, session_id, role, content, status, is_validation, created_at
	FROM chat_messages
	WHERE session_id = $1 AND NOT is_validation
	ORDER BY created_at DESC, id DESC
	LIMIT $2
) recent
ORDER BY created_at, id`
	return r.queryMessages(ctx, query, sessionID, limit)
}

// ListBySession returns every message of a session in chronological order.
func (r *PGRepo) ListBySession(ctx context.Context, sessionID string) ([]Message, error) {
	const query = `
SELECT id, session_id, role, content, status, is_validation, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at, id`
	return r.queryMessages(ctx, query, sessionID)
}

// Create inserts a message and returns it with its generated ID.
func (r *PGRepo) Create(ctx context.Context, msg Message) (Message, error) {
	const query = `
INSERT INTO chat_messages (session_id, role, content, status, is_validation)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		msg.SessionID, msg.Role, msg.Content, msg.Status, msg.IsValidation,
	).Scan(&msg.ID, &msg.CreatedAt)
	return msg, err
}

// UpdateStatus sets the status of an existing message.
func (r *PGRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE chat_messages SET status = $2 WHERE id = $1`, id, status)
	return err
}

// DeleteBySession removes all messages of a session and reports the count.
func (r *PGRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Status, &m.IsValidation, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
