// Package testutil provides shared database helpers for tests.
//
// Tests run their SQL against in-memory SQLite: it accepts the backtick
// quoting and ? placeholders the mergers emit, so the portable row paths can
// be exercised without a MySQL server.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// MemDB creates an in-memory database for one test.
func MemDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// Every :memory: connection is a distinct database; pin the pool to one
	// connection so the schema survives across statements.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// MustExec runs each statement, failing the test on error.
func MustExec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("statement failed (%s): %v", stmt, err)
		}
	}
}

// Count returns SELECT COUNT(*) for table, failing the test on error.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
