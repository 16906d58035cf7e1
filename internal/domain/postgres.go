package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore keeps every domain's records as JSONB rows in
//
//	user_records(id uuid pk, user_id text, domain text, payload jsonb,
//	             created_at timestamptz, updated_at timestamptz)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Services returns one Service per domain, all backed by this store.
func (s *PostgresStore) Services() Services {
	return Services{
		Schedule:    s.For(Schedule),
		Transaction: s.For(Transaction),
		Workout:     s.For(Workout),
		FoodEntry:   s.For(FoodEntry),
		CheckIn:     s.For(CheckIn),
		Goal:        s.For(Goal),
	}
}

func (s *PostgresStore) For(kind Kind) Service {
	return &pgService{db: s.db, kind: kind}
}

type pgService struct {
	db   *sql.DB
	kind Kind
}

const (
	listSQL = `SELECT id, payload FROM user_records
WHERE user_id = $1 AND domain = $2
ORDER BY created_at DESC`

	createSQL = `INSERT INTO user_records (id, user_id, domain, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id, payload`

	updateSQL = `UPDATE user_records SET payload = payload || $4::jsonb, updated_at = NOW()
WHERE id = $1 AND user_id = $2 AND domain = $3
RETURNING id, payload`

	removeSQL = `DELETE FROM user_records WHERE id = $1 AND user_id = $2 AND domain = $3`
)

func (p *pgService) List(ctx context.Context, userID string) ([]Record, error) {
	rows, err := p.db.QueryContext(ctx, listSQL, userID, string(p.kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.kind, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p.kind, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", p.kind, err)
	}
	return out, nil
}

func (p *pgService) Create(ctx context.Context, userID string, payload map[string]interface{}) (Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", p.kind, err)
	}
	row := p.db.QueryRowContext(ctx, createSQL, uuid.NewString(), userID, string(p.kind), body)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", p.kind, err)
	}
	return rec, nil
}

func (p *pgService) Update(ctx context.Context, userID, id string, patch map[string]interface{}) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s patch: %w", p.kind, err)
	}
	row := p.db.QueryRowContext(ctx, updateSQL, id, userID, string(p.kind), body)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("update %s: %w", p.kind, err)
	}
	return rec, nil
}

func (p *pgService) Remove(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, removeSQL, id, userID, string(p.kind))
	if err != nil {
		return fmt.Errorf("remove %s: %w", p.kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s: %w", p.kind, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec     Record
		payload []byte
	)
	if err := s.Scan(&rec.ID, &payload); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(payload, &rec.Fields); err != nil {
		return Record{}, fmt.Errorf("decode payload: %w", err)
	}
	return rec, nil
}
