// internal/storage/signal/postgres.go
package signal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/newthinker/marketmind/internal/core"
)

// Schema creates the score history table and its lookup index.
const Schema = `
CREATE TABLE IF NOT EXISTS credit_scores (
	id          UUID PRIMARY KEY,
	ticker      VARCHAR(16) NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	bias        VARCHAR(16) NOT NULL DEFAULT '',
	mode        VARCHAR(8) NOT NULL DEFAULT '',
	features    JSONB,
	explanation JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ticker_created_at ON credit_scores (ticker, created_at DESC);
`

const recordColumns = `id, ticker, score, bias, mode, features, explanation, created_at`

// PostgresStore keeps score history in PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("opening database: %w", err))
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("connecting to database: %w", err))
	}

	s := NewPostgresStoreFromDB(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an existing connection.
func NewPostgresStoreFromDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies Schema.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("applying schema: %w", err))
	}
	return nil
}

// Save inserts a record.
func (p *PostgresStore) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Ticker = normalizeTicker(rec.Ticker)

	query := `
	INSERT INTO credit_scores (` + recordColumns + `)
	VALUES (:id, :ticker, :score, :bias, :mode, :features, :explanation, :created_at)
	`
	if _, err := p.db.NamedExecContext(ctx, query, rec); err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("inserting record for %s: %w", rec.Ticker, err))
	}
	return nil
}

// GetByID retrieves a record by ID.
func (p *PostgresStore) GetByID(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM credit_scores WHERE id = $1`

	var rec Record
	if err := p.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrRecordNotFound
		}
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("getting record %s: %w", id, err))
	}
	return &rec, nil
}

// List returns records matching the filter, newest first.
func (p *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query, args := listQuery(filter)

	records := []Record{}
	if err := p.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("listing records: %w", err))
	}
	return records, nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func listQuery(filter ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Ticker != "" {
		add("ticker = $%d", normalizeTicker(filter.Ticker))
	}
	if !filter.From.IsZero() {
		add("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at <= $%d", filter.To)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + recordColumns + ` FROM credit_scores`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
