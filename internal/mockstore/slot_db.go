package mockstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

type dialect struct {
	name   string
	schema string
	get    string
	put    string
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`,
		get:    `SELECT value FROM kv WHERE key = ?`,
		put: `
			INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`,
	}

	postgresDialect = dialect{
		name:   "pgx",
		schema: `CREATE TABLE IF NOT EXISTS kv_slots (key TEXT PRIMARY KEY, value JSONB NOT NULL)`,
		get:    `SELECT value FROM kv_slots WHERE key = $1`,
		put: `
			INSERT INTO kv_slots (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`,
	}
)

// DBSlot keeps slots in a single two-column table.
type DBSlot struct {
	db *sql.DB
	d  dialect
}

func NewSQLiteSlot(dsn string) (*DBSlot, error) {
	return openDBSlot(sqliteDialect, dsn)
}

func NewPostgresSlot(dsn string) (*DBSlot, error) {
	return openDBSlot(postgresDialect, dsn)
}

func openDBSlot(d dialect, dsn string) (*DBSlot, error) {
	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}

	s := &DBSlot{db: db, d: d}
	err = withTimeout(context.Background(), queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, d.schema)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init %s schema: %w", d.name, err)
	}
	return s, nil
}

func (s *DBSlot) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *DBSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, s.d.get, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *DBSlot) Put(ctx context.Context, key string, value []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.d.put, key, value)
		return err
	})
}

func (s *DBSlot) Close() error { return s.db.Close() }

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
