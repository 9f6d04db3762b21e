package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable record store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const recordSchema = `CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	version INTEGER NOT NULL,
	last_updated TEXT NOT NULL
);`

// OpenSQLite opens (or creates) a SQLite database at path and ensures the
// records schema. Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, recordSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure records schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, value string) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		Value:       value,
		Version:     1,
		LastUpdated: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, value, version, last_updated) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Value, rec.Version, formatTime(rec.LastUpdated),
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`SELECT id, value, version, last_updated FROM records WHERE id = ?`, id))
}

// Update increments the version inside a transaction so the read-modify-write
// is atomic per record.
func (s *SQLiteStore) Update(ctx context.Context, id, value string) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE records SET value = ?, version = version + 1, last_updated = ? WHERE id = ?`,
		value, formatTime(now), id,
	)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	rec, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT id, value, version, last_updated FROM records WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, value, version, last_updated FROM records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var updated string
		if err := rows.Scan(&rec.ID, &rec.Value, &rec.Version, &updated); err != nil {
			return nil, err
		}
		rec.LastUpdated = parseTime(updated)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var updated string
	err := row.Scan(&rec.ID, &rec.Value, &rec.Version, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.LastUpdated = parseTime(updated)
	return &rec, nil
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}
