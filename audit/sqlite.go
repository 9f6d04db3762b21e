package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteLog is the durable event log implementation.
type SQLiteLog struct {
	db *sql.DB
}

var _ Log = (*SQLiteLog)(nil)

const eventSchema = `CREATE TABLE IF NOT EXISTS invalidation_events (
	id TEXT PRIMARY KEY,
	record_id TEXT NOT NULL,
	record_version INTEGER NOT NULL,
	cache_version INTEGER,
	status TEXT NOT NULL,
	reason TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invalidation_events_ts ON invalidation_events (timestamp);`

// OpenSQLite opens (or creates) a SQLite database at path and ensures the
// events schema. Use ":memory:" for an ephemeral log.
func OpenSQLite(ctx context.Context, path string) (*SQLiteLog, error) {
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
	if _, err := db.ExecContext(ctx, eventSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure events schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

// Close closes the database connection.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

func (l *SQLiteLog) Append(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO invalidation_events
			(id, record_id, record_version, cache_version, status, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.RecordID, event.RecordVersion, event.CacheVersion,
		string(event.Status), event.Reason, formatTime(event.Timestamp),
	)
	return err
}

func (l *SQLiteLog) ListAll(ctx context.Context) ([]*Event, error) {
	return l.query(ctx, `
		SELECT id, record_id, record_version, cache_version, status, reason, timestamp
		FROM invalidation_events ORDER BY timestamp ASC`)
}

func (l *SQLiteLog) ListRecent(ctx context.Context, n int) ([]*Event, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	return l.query(ctx, `
		SELECT id, record_id, record_version, cache_version, status, reason, timestamp
		FROM invalidation_events ORDER BY timestamp DESC LIMIT ?`, n)
}

func (l *SQLiteLog) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invalidation_events WHERE status = ?`,
		string(status),
	).Scan(&count)
	return count, err
}

func (l *SQLiteLog) query(ctx context.Context, q string, args ...any) ([]*Event, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var e Event
		var status, ts string
		var cacheVersion sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RecordID, &e.RecordVersion, &cacheVersion, &status, &e.Reason, &ts); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		if cacheVersion.Valid {
			v := cacheVersion.Int64
			e.CacheVersion = &v
		}
		e.Timestamp = parseTime(ts)
		out = append(out, &e)
	}
	return out, rows.Err()
}

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}
