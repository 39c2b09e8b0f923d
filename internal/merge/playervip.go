package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/progress"
	"github.com/lherron/svmerge/internal/rewrite"
	"github.com/lherron/svmerge/internal/store"
)

// VipMerger copies the auxiliary player_vip table with the explicit-column
// strategy: the player reference is rewritten and the loosely-typed vip flags
// are coerced to booleans. Not every deployment carries this table, so an
// unreadable source table is skipped rather than fatal.
type VipMerger struct{}

// Table returns the merged table name.
func (VipMerger) Table() string {
	return "player_vip"
}

// Merge reads every source player_vip row and inserts it with a re-keyed
// player_id.
func (m VipMerger) Merge(run *Run) (int, error) {
	rows, err := run.Txn.Source().Query("SELECT * FROM `player_vip`")
	if err != nil {
		// Optional table; older deployments do not have it.
		run.warnf("skipping player_vip: %v", err)
		return 0, nil
	}
	vips, _, err := store.ScanAll(rows)
	if err != nil {
		return 0, err
	}

	counter := progress.NewCounter("player_vip", len(vips))
	defer counter.Finish()

	const insert = "INSERT INTO `player_vip` (`player_id`, `vip_1`, `vip_2`) VALUES (?, ?, ?)"

	for _, row := range vips {
		counter.Increment()

		playerID, ok := row.Int64("player_id")
		if !ok {
			return 0, &SchemaMismatchError{Table: "player_vip", Column: "player_id"}
		}

		if run.DryRun {
			continue
		}

		_, err := run.Txn.Target().Exec(insert,
			run.Mappings.Lookup(mapping.KindPlayer, playerID),
			rewrite.CoerceBool(row.Value("vip_1")),
			rewrite.CoerceBool(row.Value("vip_2")),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert player_vip for player %d: %w", playerID, err)
		}
	}

	return len(vips), nil
}
