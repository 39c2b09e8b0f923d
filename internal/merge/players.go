package merge

import (
	"github.com/lherron/svmerge/internal/mapping"
)

// PlayerMerger copies the player table using the catalog-driven bulk
// strategy: the column list comes from the live catalog, the source table is
// materialized in a transaction-scoped staging copy, ids are shifted with
// bulk arithmetic updates, and one insert-select publishes the result.
//
// Player ids are self-contained, but the player mapping must be fully
// populated here because the clan, gift-history, and auxiliary mergers all
// consult it.
type PlayerMerger struct{}

// Table returns the merged table name.
func (PlayerMerger) Table() string {
	return "player"
}

// Merge registers the player mapping and bulk-copies the re-keyed rows.
func (m PlayerMerger) Merge(run *Run) (int, error) {
	ids, err := sourceIDs(run.Txn.Source(), "player", "id")
	if err != nil {
		return 0, err
	}
	if err := run.Mappings.Generate(mapping.KindPlayer, ids); err != nil {
		return 0, err
	}

	if run.DryRun {
		return len(ids), nil
	}

	// Live column list, without the provenance column: the staging copy
	// grows its own and back-fills it.
	columns, err := run.Catalog.Columns("player", ProvenanceColumn)
	if err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, &SchemaMismatchError{Table: "player"}
	}

	spec := bulkSpec{
		table:    "player",
		sourceDB: run.Source.Database(),
		idColumn: "id",
		fkAdjusts: []fkAdjust{
			{column: "account_id", skipNull: true},
			{column: run.ClanColumn, sentinel: mapping.NoClan, hasSentinel: true},
		},
		provenance: true,
	}

	if err := execAll(run.Txn.Target(), planStage(spec, columns, run.Offset())); err != nil {
		return 0, err
	}
	if err := execAll(run.Txn.Target(), planPublish(spec, columns)); err != nil {
		return 0, err
	}

	return len(ids), nil
}
