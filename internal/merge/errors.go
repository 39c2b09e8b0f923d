package merge

import (
	"fmt"
)

// SchemaMismatchError reports an expected table or column missing from a
// store. It is fatal for the run and triggers rollback of both stores.
type SchemaMismatchError struct {
	Table  string
	Column string
}

func (e *SchemaMismatchError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema mismatch: table %s not found", e.Table)
	}
	return fmt.Sprintf("schema mismatch: table %s has no usable %s column", e.Table, e.Column)
}
