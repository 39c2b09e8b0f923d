package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/store"
)

// fkAdjust describes one foreign-key column shifted by the offset during a
// bulk copy. Sentinel rows ("no relation") and NULLs are left alone.
type fkAdjust struct {
	column      string
	sentinel    int64
	hasSentinel bool
	skipNull    bool
}

// bulkSpec parameterizes the catalog-driven bulk strategy for one table.
//
// The strategy materializes a full copy of the source table in a transient
// staging table scoped to the target transaction's connection, applies
// arithmetic id updates there with bulk statements, and publishes the result
// with a single insert-select. It survives schema drift because the column
// list comes from the live catalog, but it cannot apply non-arithmetic
// per-column fixups.
type bulkSpec struct {
	table      string // target table
	sourceDB   string // source schema, read via qualified name
	idColumn   string
	fkAdjusts  []fkAdjust
	provenance bool // back-fill old_id on the staging copy
}

// staging returns the transient table name for the copy.
func (s bulkSpec) staging() string {
	return "temp_" + s.table
}

// planStage returns the statements that build and remap the staging copy.
// The caller may run extra per-row work (the clan members rewrite) on the
// staging table between planStage and planPublish.
func planStage(spec bulkSpec, columns []string, offset int64) []string {
	staging := store.QuoteIdent(spec.staging())
	id := store.QuoteIdent(spec.idColumn)
	cols := store.QuoteList(columns)

	stmts := []string{
		fmt.Sprintf("CREATE TEMPORARY TABLE %s AS SELECT %s FROM %s.%s",
			staging, cols, store.QuoteIdent(spec.sourceDB), store.QuoteIdent(spec.table)),
		fmt.Sprintf("UPDATE %s SET %s = %s + %d", staging, id, id, offset),
	}

	for _, fk := range spec.fkAdjusts {
		col := store.QuoteIdent(fk.column)
		switch {
		case fk.hasSentinel:
			stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s + %d WHERE %s != %d",
				staging, col, col, offset, col, fk.sentinel))
		case fk.skipNull:
			stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s + %d WHERE %s IS NOT NULL",
				staging, col, col, offset, col))
		default:
			stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s + %d",
				staging, col, col, offset))
		}
	}

	if spec.provenance {
		old := store.QuoteIdent(ProvenanceColumn)
		stmts = append(stmts,
			fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s INT NULL", staging, old),
			fmt.Sprintf("UPDATE %s SET %s = %s - %d", staging, old, id, offset),
		)
	}

	return stmts
}

// planPublish returns the statements that move the staging copy into the real
// table and discard it.
func planPublish(spec bulkSpec, columns []string) []string {
	staging := store.QuoteIdent(spec.staging())
	cols := store.QuoteList(columns)
	if spec.provenance {
		cols = cols + ", " + store.QuoteIdent(ProvenanceColumn)
	}

	return []string{
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			store.QuoteIdent(spec.table), cols, cols, staging),
		fmt.Sprintf("DROP TEMPORARY TABLE %s", staging),
	}
}

// execAll runs each statement in order, stopping at the first failure.
func execAll(db store.Execer, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("bulk statement failed (%s): %w", stmt, err)
		}
	}
	return nil
}

// sourceIDs reads the primary-key column of a source table for mapping
// generation.
func sourceIDs(db store.Execer, table, idColumn string) ([]int64, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s",
		store.QuoteIdent(idColumn), store.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s ids: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s ids: %w", table, err)
	}
	return ids, nil
}
