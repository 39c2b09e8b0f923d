package merge

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/svmerge/internal/store"
)

// Txn coordinates one transaction per store. There is no two-phase commit:
// a fault between the two commit calls (or the two rollback calls) can leave
// one store committed and the other not. That gap is accepted and surfaced to
// the operator in the returned error rather than hidden.
//
// In dry-run mode no transaction is ever opened, so nothing can be committed
// by accident.
type Txn struct {
	target *store.Store
	source *store.Store

	targetTx *sql.Tx
	sourceTx *sql.Tx
	dryRun   bool
}

// NewTxn returns a coordinator over the two stores.
func NewTxn(target, source *store.Store, dryRun bool) *Txn {
	return &Txn{target: target, source: source, dryRun: dryRun}
}

// Begin opens one transaction per store. Skipped entirely in dry-run.
func (t *Txn) Begin() error {
	if t.dryRun {
		return nil
	}

	targetTx, err := t.target.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin target transaction: %w", err)
	}
	sourceTx, err := t.source.Begin()
	if err != nil {
		targetTx.Rollback()
		return fmt.Errorf("failed to begin source transaction: %w", err)
	}

	t.targetTx = targetTx
	t.sourceTx = sourceTx
	return nil
}

// Target returns the executor for the target store: the open transaction, or
// the plain connection when none is open.
func (t *Txn) Target() store.Execer {
	if t.targetTx != nil {
		return t.targetTx
	}
	return t.target.DB
}

// Source returns the executor for the source store.
func (t *Txn) Source() store.Execer {
	if t.sourceTx != nil {
		return t.sourceTx
	}
	return t.source.DB
}

// Commit commits the target transaction, then the source transaction. The
// order only matters for error reporting: if the target commit fails the
// source is rolled back, but if the source commit fails afterward the target
// has already committed and the error says so.
func (t *Txn) Commit() error {
	if t.targetTx == nil {
		return nil
	}

	if err := t.targetTx.Commit(); err != nil {
		rbErr := t.sourceTx.Rollback()
		t.targetTx, t.sourceTx = nil, nil
		if rbErr != nil {
			return fmt.Errorf("target commit failed (source rollback also failed: %v): %w", rbErr, err)
		}
		return fmt.Errorf("target commit failed, source rolled back: %w", err)
	}

	if err := t.sourceTx.Commit(); err != nil {
		t.targetTx, t.sourceTx = nil, nil
		return fmt.Errorf("source commit failed AFTER target committed; stores are now inconsistent: %w", err)
	}

	t.targetTx, t.sourceTx = nil, nil
	return nil
}

// Rollback rolls back both transactions best-effort and reports every
// failure. Safe to call when no transaction is open.
func (t *Txn) Rollback() error {
	if t.targetTx == nil {
		return nil
	}

	var errs []error
	if err := t.targetTx.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("target rollback failed: %w", err))
	}
	if err := t.sourceTx.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("source rollback failed: %w", err))
	}
	t.targetTx, t.sourceTx = nil, nil
	return errors.Join(errs...)
}

// Active reports whether transactions are currently open.
func (t *Txn) Active() bool {
	return t.targetTx != nil
}
