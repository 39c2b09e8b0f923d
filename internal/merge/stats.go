package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/store"
)

// TableCount holds the pre-merge row counts of one table on both stores.
type TableCount struct {
	Table  string `json:"table"`
	Target int64  `json:"target"`
	Source int64  `json:"source"`
	Total  int64  `json:"total"`
}

// CollectStats counts the rows of every merged table on both stores. It is
// printed before the first confirmation gate and backs the stats subcommand.
func CollectStats(target, source *store.Store, clanTable string) ([]TableCount, error) {
	tables := []string{"account", "player", clanTable, "gift_code_histories"}

	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		targetCount, err := target.RowCount(table)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		sourceCount, err := source.RowCount(table)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		counts = append(counts, TableCount{
			Table:  table,
			Target: targetCount,
			Source: sourceCount,
			Total:  targetCount + sourceCount,
		})
	}
	return counts, nil
}
