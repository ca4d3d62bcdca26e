// Package repo persists calculation history in Postgres.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Record is one stored calculation request and its result.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	Warnings  []string        `json:"warnings"`
	CreatedAt time.Time       `json:"createdAt"`
}

type HistoryRepository interface {
	Insert(ctx context.Context, rec Record) error
	List(ctx context.Context, kind string, limit int) ([]Record, error)
}

type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryDB(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Open connects to Postgres and pings it. A URL without an sslmode gets
// sslmode=require.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr += sep + "sslmode=require"
		} else {
			connStr += " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS calculation_history (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	input      JSONB,
	result     JSONB,
	warnings   TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS calculation_history_kind_created ON calculation_history (kind, created_at DESC)`

func (r *PostgresHistoryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresHistoryRepository) Insert(ctx context.Context, rec Record) error {
	if rec.Warnings == nil {
		rec.Warnings = []string{}
	}
	query := "INSERT INTO calculation_history (id, kind, input, result, warnings, created_at) VALUES ($1, $2, $3, $4, $5, $6)"
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.Kind, nullJSON(rec.Input), nullJSON(rec.Result), pq.Array(rec.Warnings), rec.CreatedAt)
	return err
}

// List returns the newest records first. An empty kind lists every kind.
func (r *PostgresHistoryRepository) List(ctx context.Context, kind string, limit int) ([]Record, error) {
	query := `SELECT id, kind, input, result, warnings, created_at FROM calculation_history
		WHERE ($1 = '' OR kind = $1) ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var input, result []byte
		if err := rows.Scan(&rec.ID, &rec.Kind, &input, &result, pq.Array(&rec.Warnings), &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Input, rec.Result = input, result
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
