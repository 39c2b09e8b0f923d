package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/store"
)

// ProvenanceColumn records an entity's pre-merge identifier. It is added to
// the account and player tables, populated at insert time, and never touched
// again.
const ProvenanceColumn = "old_id"

// Catalog is the schema-inspection surface of the target store: the evolver
// checks for the provenance column and the bulk mergers discover live column
// lists through it.
type Catalog interface {
	ColumnExists(table, column string) (bool, error)
	Columns(table string, exclude ...string) ([]string, error)
}

// Evolver idempotently ensures the provenance column exists on tables that
// need old-identifier traceability.
type Evolver struct {
	catalog Catalog
	exec    store.Execer
	dryRun  bool
}

// NewEvolver returns an evolver writing through exec. In dry-run mode the
// catalog check still runs, so reporting stays accurate, but no schema change
// is issued.
func NewEvolver(catalog Catalog, exec store.Execer, dryRun bool) *Evolver {
	return &Evolver{catalog: catalog, exec: exec, dryRun: dryRun}
}

// EnsureProvenanceColumn adds the nullable old_id column to table if the
// catalog does not already have it. Returns true if the column was created.
// Calling it twice is safe; the second call is a no-op.
//
// Note: MySQL DDL implicitly commits the open transaction, so the column
// survives even a rolled-back run. The column is additive and nullable, which
// makes that acceptable.
func (e *Evolver) EnsureProvenanceColumn(table string) (bool, error) {
	exists, err := e.catalog.ColumnExists(table, ProvenanceColumn)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if e.dryRun {
		return true, nil
	}

	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s INT NULL",
		store.QuoteIdent(table), store.QuoteIdent(ProvenanceColumn))
	if _, err := e.exec.Exec(query); err != nil {
		return false, fmt.Errorf("failed to add %s column to %s: %w", ProvenanceColumn, table, err)
	}
	return true, nil
}
