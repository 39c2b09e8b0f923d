package rewrite

import (
	"database/sql"
)

// CoerceBool normalizes the driver representations of boolean-like columns.
//
// BIT(1) and TINYINT(1) columns arrive from the wire as raw bytes, integers,
// or booleans depending on driver and protocol. Accepted inputs:
//
//	nil            -> invalid (NULL)
//	bool           -> as-is
//	int64, uint64  -> != 0
//	[]byte         -> empty is false; "0"/"1" ASCII text by digit;
//	                  otherwise first byte != 0 (raw BIT payload)
//
// Anything else is treated as NULL.
func CoerceBool(v any) sql.NullBool {
	switch val := v.(type) {
	case nil:
		return sql.NullBool{}
	case bool:
		return sql.NullBool{Bool: val, Valid: true}
	case int64:
		return sql.NullBool{Bool: val != 0, Valid: true}
	case uint64:
		return sql.NullBool{Bool: val != 0, Valid: true}
	case []byte:
		if len(val) == 0 {
			return sql.NullBool{Bool: false, Valid: true}
		}
		if len(val) == 1 && (val[0] == '0' || val[0] == '1') {
			return sql.NullBool{Bool: val[0] == '1', Valid: true}
		}
		return sql.NullBool{Bool: val[0] != 0, Valid: true}
	default:
		return sql.NullBool{}
	}
}
