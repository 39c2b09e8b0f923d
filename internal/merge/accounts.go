package merge

import (
	"fmt"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/progress"
	"github.com/lherron/svmerge/internal/rewrite"
	"github.com/lherron/svmerge/internal/store"
)

// accountColumns is the explicit target column list for the account insert.
// The explicit-column strategy trades schema-drift resilience for the ability
// to apply per-column fixups (the BIT(1) columns below); a source column not
// listed here is silently dropped.
var accountColumns = []string{
	"id", "old_id", "username", "password", "create_time", "update_time",
	"ban", "point_post", "last_post", "role", "is_admin", "last_time_login",
	"last_time_logout", "ip_address", "active", "reward", "thoi_vang",
	"server_login", "new_reg", "ip", "phone", "last_server_change_time",
	"ruby", "count_card", "type_bonus", "ref", "diemgioithieu", "vnd_old",
	"tongnap_old", "gioithieu", "tongnap", "account_old", "pointNap", "vnd",
	"tongnapcu", "is_daily", "money", "isAdmin", "purchasedGifts",
	"claimed_accumulate", "ip_address_register",
}

// accountBitColumns are BIT(1) columns that arrive as raw bytes or integers
// depending on the driver and need explicit coercion.
var accountBitColumns = map[string]bool{
	"is_daily": true,
	"isAdmin":  true,
}

// AccountMerger copies the account table using the explicit-column strategy.
// Accounts carry no upstream references, so it runs first and only generates
// the account mapping.
type AccountMerger struct{}

// Table returns the merged table name.
func (AccountMerger) Table() string {
	return "account"
}

// Merge reads every source account, registers id+offset mappings, and inserts
// the re-keyed rows (with the provenance column) into the target.
func (m AccountMerger) Merge(run *Run) (int, error) {
	rows, err := run.Txn.Source().Query("SELECT * FROM `account`")
	if err != nil {
		return 0, fmt.Errorf("failed to read source accounts: %w", err)
	}
	accounts, _, err := store.ScanAll(rows)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(accounts))
	for _, row := range accounts {
		id, ok := row.Int64("id")
		if !ok {
			return 0, &SchemaMismatchError{Table: "account", Column: "id"}
		}
		ids = append(ids, id)
	}
	if err := run.Mappings.Generate(mapping.KindAccount, ids); err != nil {
		return 0, err
	}

	insert := fmt.Sprintf("INSERT INTO `account` (%s) VALUES (%s)",
		store.QuoteList(accountColumns), placeholders(len(accountColumns)))

	counter := progress.NewCounter("account", len(accounts))
	defer counter.Finish()

	for _, row := range accounts {
		oldID, _ := row.Int64("id")
		newID := run.Mappings.Lookup(mapping.KindAccount, oldID)

		if !run.DryRun {
			params := make([]any, 0, len(accountColumns))
			for _, col := range accountColumns {
				switch {
				case col == "id":
					params = append(params, newID)
				case col == ProvenanceColumn:
					params = append(params, oldID)
				case accountBitColumns[col]:
					params = append(params, rewrite.CoerceBool(row.Value(col)))
				default:
					params = append(params, row.Value(col))
				}
			}
			if _, err := run.Txn.Target().Exec(insert, params...); err != nil {
				return 0, fmt.Errorf("failed to insert account %d: %w", newID, err)
			}
		}

		counter.Increment()
	}

	return len(accounts), nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	s := "?"
	for i := 1; i < n; i++ {
		s += ", ?"
	}
	return s
}
