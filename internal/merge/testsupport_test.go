package merge

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lherron/svmerge/internal/store"
)

// sqliteCatalog answers catalog questions from SQLite's pragma tables,
// standing in for the MySQL information_schema in tests.
type sqliteCatalog struct {
	db *sql.DB
}

func (c sqliteCatalog) ColumnExists(table, column string) (bool, error) {
	var n int
	err := c.db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?",
		table, column,
	).Scan(&n)
	return n > 0, err
}

func (c sqliteCatalog) Columns(table string, exclude ...string) ([]string, error) {
	rows, err := c.db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, err
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
			return nil, err
		}
		if !skip[name] {
			columns = append(columns, name)
		}
	}
	return columns, rows.Err()
}

// newTestRun builds a run over two test databases with the standard sv1
// naming.
func newTestRun(t *testing.T, target, source *sql.DB, offset int64, dryRun bool) *Run {
	t.Helper()
	run := NewRun(
		store.Wrap(target, "target", "target_db"),
		store.Wrap(source, "source", "source_db"),
		Options{
			IDOffset:   offset,
			ClanTable:  "clan_sv1",
			ClanColumn: "clan_id_sv1",
			DryRun:     dryRun,
		},
	)
	run.Catalog = sqliteCatalog{target}
	return run
}

// accountTableDDL builds the full-width account table from the explicit
// column list, so inserts with every enumerated column succeed.
func accountTableDDL() string {
	ddl := "CREATE TABLE account ("
	for i, col := range accountColumns {
		if i > 0 {
			ddl += ", "
		}
		ddl += fmt.Sprintf("`%s`", col)
	}
	return ddl + ")"
}
