package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/progress"
	"github.com/lherron/svmerge/internal/store"
)

// HistoryMerger copies gift_code_histories with the explicit-column strategy.
// History rows keep no identity of their own across the merge (the target
// assigns fresh auto-increment ids); only the player reference is rewritten,
// via the player mapping populated upstream.
type HistoryMerger struct{}

// Table returns the merged table name.
func (HistoryMerger) Table() string {
	return "gift_code_histories"
}

// Merge reads every source history row and inserts it with a re-keyed
// player_id.
func (m HistoryMerger) Merge(run *Run) (int, error) {
	rows, err := run.Txn.Source().Query("SELECT * FROM `gift_code_histories`")
	if err != nil {
		return 0, fmt.Errorf("failed to read source gift code histories: %w", err)
	}
	histories, _, err := store.ScanAll(rows)
	if err != nil {
		return 0, err
	}

	counter := progress.NewCounter("gift_code_histories", len(histories))
	defer counter.Finish()

	const insert = "INSERT INTO `gift_code_histories` " +
		"(`player_id`, `gift_code_id`, `code`, `type_clone`, `created_at`) " +
		"VALUES (?, ?, ?, ?, ?)"

	for _, row := range histories {
		counter.Increment()

		playerID, ok := row.Int64("player_id")
		if !ok {
			return 0, &SchemaMismatchError{Table: "gift_code_histories", Column: "player_id"}
		}

		if run.DryRun {
			continue
		}

		_, err := run.Txn.Target().Exec(insert,
			run.Mappings.Lookup(mapping.KindPlayer, playerID),
			row.Value("gift_code_id"),
			row.Value("code"),
			row.Value("type_clone"),
			row.Value("created_at"),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert gift code history for player %d: %w", playerID, err)
		}
	}

	return len(histories), nil
}
