package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/progress"
	"github.com/lherron/svmerge/internal/rewrite"
	"github.com/lherron/svmerge/internal/store"
)

// ClanMerger copies the per-server clan table with the bulk strategy, plus a
// per-row pass over the staging copy that rewrites the player ids embedded in
// the serialized members JSON. It must run after PlayerMerger: the rewrite
// consults the fully-populated player mapping.
type ClanMerger struct{}

// Table returns the merged table name (clan_sv{N}).
func (ClanMerger) Table() string {
	return "clan"
}

// Merge registers the clan mapping, bulk-copies the re-keyed rows, and
// rewrites each staged members array before publishing.
func (m ClanMerger) Merge(run *Run) (int, error) {
	table := run.ClanTable

	ids, err := sourceIDs(run.Txn.Source(), table, "id")
	if err != nil {
		return 0, err
	}
	if err := run.Mappings.Generate(mapping.KindClan, ids); err != nil {
		return 0, err
	}

	if run.DryRun {
		return len(ids), nil
	}

	columns, err := run.Catalog.Columns(table)
	if err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, &SchemaMismatchError{Table: table}
	}

	spec := bulkSpec{
		table:    table,
		sourceDB: run.Source.Database(),
		idColumn: "id",
	}

	if err := execAll(run.Txn.Target(), planStage(spec, columns, run.Offset())); err != nil {
		return 0, err
	}
	if err := m.rewriteMembers(run, spec.staging()); err != nil {
		return 0, err
	}
	if err := execAll(run.Txn.Target(), planPublish(spec, columns)); err != nil {
		return 0, err
	}

	return len(ids), nil
}

// rewriteMembers updates the members JSON of every staged clan row so member
// entries reference the re-keyed player ids, preserving each array's
// encoding.
func (m ClanMerger) rewriteMembers(run *Run, staging string) error {
	rows, err := run.Txn.Target().Query(fmt.Sprintf(
		"SELECT `id`, `members` FROM %s", store.QuoteIdent(staging)))
	if err != nil {
		return fmt.Errorf("failed to read staged clans: %w", err)
	}
	clans, _, err := store.ScanAll(rows)
	if err != nil {
		return err
	}

	counter := progress.NewCounter(run.ClanTable, len(clans))
	defer counter.Finish()

	update := fmt.Sprintf("UPDATE %s SET `members` = ? WHERE `id` = ?",
		store.QuoteIdent(staging))

	for _, clan := range clans {
		counter.Increment()

		clanID, ok := clan.Int64("id")
		if !ok {
			return &SchemaMismatchError{Table: run.ClanTable, Column: "id"}
		}
		members, ok := clan.String("members")
		if !ok || members == "" {
			continue
		}

		rewritten, err := rewrite.Members(run.Mappings, members)
		if err != nil {
			return fmt.Errorf("clan %d: %w", clanID, err)
		}
		if _, err := run.Txn.Target().Exec(update, rewritten, clanID); err != nil {
			return fmt.Errorf("failed to update members of clan %d: %w", clanID, err)
		}
	}

	return nil
}
