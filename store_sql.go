package driftwatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlStore persists entries in a relational table. One implementation serves
// sqlite, mysql, and postgres; only the schema and placeholder style differ.
type sqlStore struct {
	db         *sql.DB
	table      string
	driverName string
	prefix     string

	getStmt    *sql.Stmt
	upsertStmt *sql.Stmt
	deleteStmt *sql.Stmt
	listStmt   *sql.Stmt
	flushStmt  *sql.Stmt
}

var sqlIdentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func newSQLStore(cfg StoreConfig) (EntryStore, error) {
	if cfg.SQLDriverName == "" || cfg.SQLDSN == "" {
		return nil, errors.New("sql driver requires driver name and dsn")
	}
	db, err := sql.Open(cfg.SQLDriverName, cfg.SQLDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if !sqlIdentRE.MatchString(cfg.SQLTable) {
		return nil, fmt.Errorf("invalid cache table name %q", cfg.SQLTable)
	}
	s := &sqlStore{
		db:         db,
		table:      cfg.SQLTable,
		driverName: cfg.SQLDriverName,
		prefix:     cfg.Prefix,
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if err := s.prepareStatements(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) Driver() Driver { return DriverSQL }

func (s *sqlStore) ensureSchema() error {
	var stmt string
	switch s.driverName {
	case "postgres", "pgx":
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k TEXT PRIMARY KEY,
			doc BYTEA NOT NULL
		);`, s.table)
	case "mysql":
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k VARBINARY(255) PRIMARY KEY,
			doc LONGBLOB NOT NULL
		) ENGINE=InnoDB;`, s.table)
	default: // sqlite
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k TEXT PRIMARY KEY,
			doc BLOB NOT NULL
		);`, s.table)
	}
	_, err := s.db.Exec(stmt)
	return err
}

func (s *sqlStore) prepareStatements() error {
	var err error
	if s.getStmt, err = s.db.Prepare(fmt.Sprintf("SELECT doc FROM %s WHERE k = %s", s.table, s.ph(1))); err != nil {
		return err
	}
	if s.upsertStmt, err = s.db.Prepare(s.upsertSQL()); err != nil {
		return err
	}
	if s.deleteStmt, err = s.db.Prepare(fmt.Sprintf("DELETE FROM %s WHERE k = %s", s.table, s.ph(1))); err != nil {
		return err
	}
	if s.listStmt, err = s.db.Prepare(fmt.Sprintf("SELECT k, doc FROM %s WHERE k LIKE %s", s.table, s.ph(1))); err != nil {
		return err
	}
	if s.flushStmt, err = s.db.Prepare(fmt.Sprintf("DELETE FROM %s WHERE k LIKE %s", s.table, s.ph(1))); err != nil {
		return err
	}
	return nil
}

func (s *sqlStore) upsertSQL() string {
	p1, p2, p3 := s.ph(1), s.ph(2), s.ph(3)
	switch s.driverName {
	case "postgres", "pgx":
		return fmt.Sprintf("INSERT INTO %s (k, doc) VALUES (%s, %s) ON CONFLICT (k) DO UPDATE SET doc = %s", s.table, p1, p2, p3)
	case "mysql":
		return fmt.Sprintf("INSERT INTO %s (k, doc) VALUES (%s, %s) ON DUPLICATE KEY UPDATE doc = %s", s.table, p1, p2, p3)
	default: // sqlite
		return fmt.Sprintf("INSERT INTO %s (k, doc) VALUES (%s, %s) ON CONFLICT(k) DO UPDATE SET doc = %s", s.table, p1, p2, p3)
	}
}

// ph returns the positional placeholder for the driver dialect.
func (s *sqlStore) ph(n int) string {
	if s.driverName == "postgres" || s.driverName == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *sqlStore) Get(ctx context.Context, id string) (*Entry, bool, error) {
	var doc []byte
	err := s.getStmt.QueryRowContext(ctx, s.cacheKey(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	entry, err := decodeEntry(doc)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

func (s *sqlStore) Put(ctx context.Context, id string, entry *Entry) error {
	doc, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	_, err = s.upsertStmt.ExecContext(ctx, s.cacheKey(id), doc, doc)
	return err
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	_, err := s.deleteStmt.ExecContext(ctx, s.cacheKey(id))
	return err
}

func (s *sqlStore) List(ctx context.Context) (map[string]*Entry, error) {
	rows, err := s.listStmt.QueryContext(ctx, s.keyPattern())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]*Entry)
	for rows.Next() {
		var key string
		var doc []byte
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, err
		}
		entry, err := decodeEntry(doc)
		if err != nil {
			return nil, err
		}
		entries[entry.ID] = entry
	}
	return entries, rows.Err()
}

func (s *sqlStore) Flush(ctx context.Context) (int, error) {
	res, err := s.flushStmt.ExecContext(ctx, s.keyPattern())
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (s *sqlStore) cacheKey(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + ":" + id
}

func (s *sqlStore) keyPattern() string {
	if s.prefix == "" {
		return "%"
	}
	return s.prefix + ":%"
}
