package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresTable = "folio_kv"

// Postgres stores slots in a single table of a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPostgres connects to databaseURL, verifies the connection and creates
// the kv table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	p := &Postgres{pool: pool, sb: newPostgresBuilder()}
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS `+postgresTable+` (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

func newPostgresBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func getQuery(sb sq.StatementBuilderType, key string) (string, []any, error) {
	return sb.Select("value").From(postgresTable).Where(sq.Eq{"key": key}).ToSql()
}

func setQuery(sb sq.StatementBuilderType, key string, value []byte) (string, []any, error) {
	return sb.Insert(postgresTable).
		Columns("key", "value", "updated_at").
		Values(key, value, sq.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := getQuery(p.sb, key)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var value []byte
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := setQuery(p.sb, key, value)
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
