// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It backs local development (STORE_DRIVER=sqlite) and the test
// suites, where ":memory:" gives every test a fresh store.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross-compiles
// like any other Go package.
//
// DOCUMENTS AS ROWS:
// The two collections map onto two tables. Nested fields (buyer.email, ...)
// are flattened into buyer_* columns. Ids use the same 12-byte object id shape
// as MongoDB (generated with rs/xid, hex encoded), so URLs look the same no
// matter which backend is running.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/jobpost-server/internal/repository"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out the per-collection repositories.
type DB struct {
	conn *sql.DB
	jobs *jobRepo
	bids *bidRepo
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/jobpost.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// Every connection to ":memory:" is a separate, empty database, and SQLite
	// serialises writers anyway. A single pooled connection keeps both cases
	// correct; concurrent requests simply queue on it.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{
		conn: conn,
		jobs: &jobRepo{conn: conn},
		bids: &bidRepo{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Jobs() repository.JobRepository { return db.jobs }

func (db *DB) Bids() repository.BidRepository { return db.bids }

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool. The context is unused; it is part of the
// Store contract because the MongoDB client needs one to disconnect.
func (db *DB) Close(context.Context) error {
	return db.conn.Close()
}

// migrate creates the tables. CREATE ... IF NOT EXISTS makes it safe to run on
// every start.
func (db *DB) migrate() error {
	// title_fold holds the Go-lower-cased title: SQLite's LIKE and lower() only
	// fold ASCII, and search must be case-insensitive for any script.
	// deadline is unix milliseconds so ORDER BY deadline is a numeric sort.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id          TEXT PRIMARY KEY,
			job_title   TEXT NOT NULL,
			title_fold  TEXT NOT NULL,
			category    TEXT NOT NULL,
			deadline    INTEGER NOT NULL,
			min_price   REAL NOT NULL DEFAULT 0,
			max_price   REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			buyer_email TEXT NOT NULL,
			buyer_name  TEXT NOT NULL DEFAULT '',
			buyer_photo TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_buyer_email ON jobs(buyer_email);
		CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);
		CREATE INDEX IF NOT EXISTS idx_jobs_deadline ON jobs(deadline);
	`)
	if err != nil {
		return fmt.Errorf("creating jobs table: %w", err)
	}

	// UNIQUE (email, job_id) is what actually enforces one bid per bidder per
	// job; the service-level existence check only produces the nicer message.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS bids (
			id          TEXT PRIMARY KEY,
			job_id      TEXT NOT NULL,
			job_title   TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			email       TEXT NOT NULL,
			price       REAL NOT NULL DEFAULT 0,
			comment     TEXT NOT NULL DEFAULT '',
			deadline    INTEGER NOT NULL DEFAULT 0,
			status      TEXT NOT NULL,
			buyer_email TEXT NOT NULL DEFAULT '',
			buyer_name  TEXT NOT NULL DEFAULT '',
			buyer_photo TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (email, job_id)
		);
		CREATE INDEX IF NOT EXISTS idx_bids_buyer_email ON bids(buyer_email);
	`)
	if err != nil {
		return fmt.Errorf("creating bids table: %w", err)
	}

	return nil
}

// newID returns a fresh object id: an xid's 12 bytes, hex encoded.
func newID() string {
	return hex.EncodeToString(xid.New().Bytes())
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
