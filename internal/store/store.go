package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver, registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds a SQL connection shared by the SQL-backed repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

// Open connects to the database and ensures the schema exists. driver is
// "sqlite" (modernc) or "postgres" (pgx). SQLite gets a single connection
// so the pragmas below hold for every statement.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		drvName string
		dia     string
	)
	switch driver {
	case "sqlite":
		drvName, dia = "sqlite", dialect.SQLite
		if err := ensureDir(dsn); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	case "postgres":
		drvName, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dia == dialect.SQLite {
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := ensureSchema(ctx, db, dia); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		drv:     entsql.OpenDB(dia, db),
		dialect: dia,
		seq:     seq,
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// HistoryRepo returns a HistoryRepo backed by this store.
func (s *Store) HistoryRepo() HistoryRepo {
	return &sqlRepo{drv: s.drv, dialect: s.dialect, seq: s.seq}
}

// applyPragmas configures SQLite for concurrent readers and durable writes.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB, dia string) error {
	stmts := schemaSQLite
	if dia == dialect.Postgres {
		stmts = schemaPostgres
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		test_id TEXT NOT NULL,
		test_name TEXT NOT NULL,
		correct_count INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		percentage REAL NOT NULL,
		details TEXT NOT NULL,
		completed_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_user_sequence ON attempts (user_id, sequence)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		sequence BIGINT NOT NULL UNIQUE,
		user_id BIGINT NOT NULL,
		test_id TEXT NOT NULL,
		test_name TEXT NOT NULL,
		correct_count INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		details TEXT NOT NULL,
		completed_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_user_sequence ON attempts (user_id, sequence)`,
}

// ensureDir creates the parent directory of a plain sqlite file path.
// URIs and in-memory databases are left alone.
func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0o755)
}
