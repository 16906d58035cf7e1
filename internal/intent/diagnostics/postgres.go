package diagnostics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresWriter appends to
//
//	error_logs(id uuid pk, message text, details jsonb, user_id text null, created_at timestamptz)
type PostgresWriter struct {
	db *sql.DB
}

func NewPostgresWriter(db *sql.DB) *PostgresWriter {
	return &PostgresWriter{db: db}
}

const insertErrorLogSQL = `INSERT INTO error_logs (id, message, details, user_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

func (w *PostgresWriter) Write(ctx context.Context, e Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode diagnostic details: %w", err)
	}

	userID := sql.NullString{String: e.UserID, Valid: e.UserID != ""}
	if _, err := w.db.ExecContext(ctx, insertErrorLogSQL, e.ID, e.Message, details, userID, e.Timestamp); err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}
