package storage

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const storageTable = "portal_storage"

// PgxQuerier is the subset of *pgxpool.Pool the postgres backend needs.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend persists scopes in the portal_storage table (see internal/db/migrations).
type PostgresBackend struct {
	db          PgxQuerier
	sessionIdle time.Duration
	now         func() time.Time
	builder     sq.StatementBuilderType
}

var _ Backend = (*PostgresBackend)(nil)

func NewPostgresBackend(db PgxQuerier, sessionIdle time.Duration) *PostgresBackend {
	return &PostgresBackend{
		db:          db,
		sessionIdle: sessionIdle,
		now:         time.Now,
		builder:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func notExpired() sq.Sqlizer {
	return sq.Or{sq.Eq{"expires_at": nil}, sq.Expr("expires_at > now()")}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := p.builder.
		Select("value").
		From(storageTable).
		Where(sq.Eq{"key": key}).
		Where(notExpired()).
		ToSql()
	if err != nil {
		return "", false, errors.Wrap(err, "build select")
	}

	var value string
	err = p.db.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string) error {
	var expiresAt *time.Time
	if p.sessionIdle > 0 && IsSessionKey(key) {
		t := p.now().Add(p.sessionIdle)
		expiresAt = &t
	}

	query, args, err := p.builder.
		Insert(storageTable).
		Columns("key", "value", "expires_at").
		Values(key, value, expiresAt).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build upsert")
	}

	_, err = p.db.Exec(ctx, query, args...)
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := p.builder.
		Delete(storageTable).
		Where(sq.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete")
	}
	_, err = p.db.Exec(ctx, query, args...)
	return err
}

func (p *PostgresBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := p.builder.
		Select("key").
		From(storageTable).
		Where(sq.Like{"key": escapeLike(prefix) + "%"}).
		Where(notExpired()).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build key scan")
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Sweep deletes rows whose idle expiry has passed and returns how many were removed.
func (p *PostgresBackend) Sweep(ctx context.Context) (int64, error) {
	query, args, err := p.builder.
		Delete(storageTable).
		Where(sq.Expr("expires_at IS NOT NULL AND expires_at <= now()")).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build sweep")
	}
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close is a no-op: the pool belongs to the caller.
func (p *PostgresBackend) Close() error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
