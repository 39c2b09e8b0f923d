// Package store wraps the two MySQL connections used by a merge run.
//
// Column sets are discovered from information_schema rather than hard-coded
// because the two servers' schemas may have drifted from each other.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Params describes one server connection from the run configuration.
type Params struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// Addr returns the host:port of the server.
func (p Params) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// ConnectionError reports an unreachable store. It is fatal and occurs before
// any transaction opens.
type ConnectionError struct {
	Role string
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s store at %s: %v", e.Role, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Execer is the subset of *sql.DB and *sql.Tx the mergers run against, so the
// same code works inside and outside a transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps one MySQL database connection.
type Store struct {
	*sql.DB
	role     string
	database string
}

// Open connects to a MySQL server and verifies it is reachable. The role
// ("target" or "source") only labels errors and reports.
func Open(role string, p Params) (*Store, error) {
	cfg := mysql.NewConfig()
	cfg.User = p.Username
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = p.Addr()
	cfg.DBName = p.Database

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, &ConnectionError{Role: role, Addr: p.Addr(), Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ConnectionError{Role: role, Addr: p.Addr(), Err: err}
	}

	return &Store{DB: db, role: role, database: p.Database}, nil
}

// Wrap adapts an already-open database handle. Used by tests and tooling
// that manage their own connection.
func Wrap(db *sql.DB, role, database string) *Store {
	return &Store{DB: db, role: role, database: database}
}

// Role returns the label this store was opened with.
func (s *Store) Role() string {
	return s.role
}

// Database returns the schema name this store is connected to.
func (s *Store) Database() string {
	return s.database
}

// ColumnExists reports whether table has a column with the given name,
// according to the live catalog.
func (s *Store) ColumnExists(table, column string) (bool, error) {
	var name string
	err := s.QueryRow(
		`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		table, column,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check column %s.%s: %w", table, column, err)
	}
	return true, nil
}

// Columns returns the ordered column list of table from the live catalog,
// excluding any of the given names. An empty result means the table does not
// exist in this schema.
func (s *Store) Columns(table string, exclude ...string) ([]string, error) {
	rows, err := s.Query(
		`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog for %s: %w", table, err)
	}
	defer rows.Close()

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if !skip[name] {
			columns = append(columns, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}

	return columns, nil
}

// RowCount returns SELECT COUNT(*) for table.
func (s *Store) RowCount(table string) (int64, error) {
	var count int64
	err := s.QueryRow("SELECT COUNT(*) FROM " + QuoteIdent(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// QuoteIdent backtick-quotes a SQL identifier.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteList backtick-quotes each identifier and joins them with commas, for
// building column lists.
func QuoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}
