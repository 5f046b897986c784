// Package sqlite implements the repository interfaces using SQLite as the
// storage backend. modernc.org/sqlite is a pure Go translation of SQLite:
// no CGo, so cross-compilation stays trivial and tests can run against
// ":memory:" databases.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the four aggregate
// repositories (students, companies, internships, applications).
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests) and runs
// migrations. WAL mode allows concurrent reads during writes, which
// matters once the watch endpoints start re-querying on every change.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty
	// database, so pin the pool to one connection there.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the four collection tables. CREATE TABLE IF NOT EXISTS
// keeps this safe to run on every startup.
//
// The UNIQUE(internship_id, student_email) index on applications is the
// backstop for the one-application-per-posting rule: the service layer does
// a friendly pre-insert check for error messaging, but the constraint is
// what makes the rule hold under concurrent submissions.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL UNIQUE,
			password_hash    TEXT NOT NULL,
			first_name       TEXT NOT NULL DEFAULT '',
			last_name        TEXT NOT NULL DEFAULT '',
			school           TEXT NOT NULL DEFAULT '',
			course           TEXT NOT NULL DEFAULT '',
			year_level       TEXT NOT NULL DEFAULT '',
			city             TEXT NOT NULL DEFAULT '',
			barangay         TEXT NOT NULL DEFAULT '',
			skills           TEXT NOT NULL DEFAULT '',
			internship_types TEXT NOT NULL DEFAULT '[]',
			resume_url       TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating students table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS companies (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			industry      TEXT NOT NULL DEFAULT '',
			address       TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			logo_url      TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating companies table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS internships (
			id           TEXT PRIMARY KEY,
			company_id   TEXT NOT NULL REFERENCES companies(id),
			title        TEXT NOT NULL,
			company_name TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT '',
			location     TEXT NOT NULL DEFAULT '',
			work_type    TEXT NOT NULL DEFAULT '',
			duration     TEXT NOT NULL DEFAULT '',
			salary_range TEXT NOT NULL DEFAULT '',
			slots        INTEGER NOT NULL DEFAULT 0,
			description  TEXT NOT NULL DEFAULT '',
			requirements TEXT NOT NULL DEFAULT '',
			deadline     TEXT NOT NULL DEFAULT '',
			is_active    INTEGER NOT NULL DEFAULT 1,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_internships_company_id ON internships(company_id);
		CREATE INDEX IF NOT EXISTS idx_internships_active_created
			ON internships(is_active, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating internships table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id               TEXT PRIMARY KEY,
			internship_id    TEXT NOT NULL REFERENCES internships(id),
			internship_title TEXT NOT NULL DEFAULT '',
			company_name     TEXT NOT NULL DEFAULT '',
			student_email    TEXT NOT NULL,
			cover_letter     TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			applied_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			resume_content   TEXT NOT NULL DEFAULT '',
			resume_file_name TEXT NOT NULL DEFAULT '',
			resume_size      INTEGER NOT NULL DEFAULT 0,
			resume_mime_type TEXT NOT NULL DEFAULT '',
			UNIQUE(internship_id, student_email)
		);
		CREATE INDEX IF NOT EXISTS idx_applications_student_email
			ON applications(student_email);
		CREATE INDEX IF NOT EXISTS idx_applications_internship_id
			ON applications(internship_id);
	`)
	if err != nil {
		return fmt.Errorf("creating applications table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure on the given column spec (e.g. "applications.internship_id").
// The pure-Go driver surfaces constraint failures as plain error strings,
// so matching on the message is the available discriminator.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, column)
}
