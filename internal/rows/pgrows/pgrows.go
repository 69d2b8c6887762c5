// Package pgrows reads rows straight from Postgres with pgx and squirrel.
package pgrows

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

// queryer is the part of *pgxpool.Pool the store uses.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store answers row queries from a Postgres database.
type Store struct {
	db queryer
	sb squirrel.StatementBuilderType
}

var _ rows.Querier = (*Store)(nil)

// Open connects a pool to dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", apperr.ErrValidation)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConnLifetime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", apperr.ErrTransport, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", apperr.ErrTransport, err)
	}
	return pool, nil
}

// New wraps a pool.
func New(pool *pgxpool.Pool) *Store {
	return newStore(pool)
}

func newStore(db queryer) *Store {
	return &Store{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Select runs q against table.
func (s *Store) Select(ctx context.Context, table string, q rows.Query) ([]rows.Row, error) {
	sql, args, err := s.build(table, q)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", apperr.ErrTransport, table, err)
	}
	maps, err := pgx.CollectRows(res, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", apperr.ErrTransport, table, err)
	}
	out := make([]rows.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, normalize(m))
	}
	return out, nil
}

func (s *Store) build(table string, q rows.Query) (string, []any, error) {
	if err := q.Validate(table); err != nil {
		return "", nil, err
	}
	where := squirrel.Eq{}
	for col, v := range q.Eq {
		where[col] = v
	}
	for col, values := range q.In {
		where[col] = values
	}
	stmt := s.sb.Select(q.Cols...).From(table)
	if len(where) > 0 {
		stmt = stmt.Where(where)
	}
	sql, args, err := stmt.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build %s query: %w", table, err)
	}
	return sql, args, nil
}

// normalize turns driver values into the shapes rows.Row readers expect.
func normalize(m map[string]any) rows.Row {
	out := make(rows.Row, len(m))
	for k, v := range m {
		switch tv := v.(type) {
		case [16]byte:
			out[k] = uuid.UUID(tv).String()
		case int16:
			out[k] = int64(tv)
		default:
			out[k] = v
		}
	}
	return out
}
