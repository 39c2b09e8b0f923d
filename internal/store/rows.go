package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Row is a generic container for one result row: an ordered column list
// shared with its result set, plus tagged values as the driver returned them
// (int64, []byte, bool, time, or nil). Nothing about the record shape is
// assumed; the shape comes from the query.
type Row struct {
	columns []string
	values  map[string]any
}

// Columns returns the ordered column names of the row.
func (r Row) Columns() []string {
	return r.columns
}

// Value returns the raw driver value for a column, or nil when the column is
// absent or NULL.
func (r Row) Value(column string) any {
	return r.values[column]
}

// Int64 returns a column as int64, accepting the integer and textual forms
// drivers produce. The second result is false for NULL, absent, or
// non-numeric values.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r.values[column].(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// String returns a column as a string. The second result is false for NULL or
// absent values.
func (r Row) String(column string) (string, bool) {
	switch v := r.values[column].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// ScanAll drains a result set into generic rows. The column list is taken
// from the result set itself, never from a hard-coded record shape.
func ScanAll(rows *sql.Rows) ([]Row, []string, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		byName := make(map[string]any, len(columns))
		for i, col := range columns {
			byName[col] = values[i]
		}
		result = append(result, Row{columns: columns, values: byName})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, columns, nil
}
