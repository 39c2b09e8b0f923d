package store

import (
	"testing"

	"github.com/lherron/svmerge/internal/testutil"
)

func TestRowInt64(t *testing.T) {
	row := Row{
		columns: []string{"a", "b", "c", "d", "e"},
		values: map[string]any{
			"a": int64(5),
			"b": uint64(7),
			"c": []byte("42"),
			"d": []byte("not a number"),
			"e": nil,
		},
	}

	tests := []struct {
		column string
		want   int64
		ok     bool
	}{
		{"a", 5, true},
		{"b", 7, true},
		{"c", 42, true},
		{"d", 0, false},
		{"e", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := row.Int64(tt.column)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int64(%q) = (%d, %v), want (%d, %v)", tt.column, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRowString(t *testing.T) {
	row := Row{
		columns: []string{"a", "b", "c"},
		values: map[string]any{
			"a": "text",
			"b": []byte("bytes"),
			"c": nil,
		},
	}

	if got, ok := row.String("a"); !ok || got != "text" {
		t.Errorf("String(a) = (%q, %v)", got, ok)
	}
	if got, ok := row.String("b"); !ok || got != "bytes" {
		t.Errorf("String(b) = (%q, %v)", got, ok)
	}
	if _, ok := row.String("c"); ok {
		t.Error("String(c) should report NULL")
	}
}

func TestScanAll(t *testing.T) {
	db := testutil.MemDB(t)
	testutil.MustExec(t, db,
		"CREATE TABLE things (id INTEGER, name TEXT, blob_col BLOB)",
		"INSERT INTO things VALUES (1, 'one', x'01')",
		"INSERT INTO things VALUES (2, NULL, NULL)",
	)

	result, err := db.Query("SELECT * FROM things ORDER BY id")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	rows, columns, err := ScanAll(result)
	if err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}

	wantColumns := []string{"id", "name", "blob_col"}
	if len(columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", columns, wantColumns)
	}
	for i, col := range wantColumns {
		if columns[i] != col {
			t.Errorf("columns[%d] = %q, want %q", i, columns[i], col)
		}
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if id, ok := rows[0].Int64("id"); !ok || id != 1 {
		t.Errorf("row 0 id = (%d, %v), want 1", id, ok)
	}
	if name, ok := rows[0].String("name"); !ok || name != "one" {
		t.Errorf("row 0 name = (%q, %v), want one", name, ok)
	}
	if _, ok := rows[1].String("name"); ok {
		t.Error("row 1 name should be NULL")
	}
	if rows[1].Value("blob_col") != nil {
		t.Errorf("row 1 blob_col = %v, want nil", rows[1].Value("blob_col"))
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent("clan_sv1"); got != "`clan_sv1`" {
		t.Errorf("QuoteIdent = %s", got)
	}
	if got := QuoteIdent("we`ird"); got != "`we``ird`" {
		t.Errorf("QuoteIdent escaped = %s", got)
	}
	if got := QuoteList([]string{"id", "name"}); got != "`id`, `name`" {
		t.Errorf("QuoteList = %s", got)
	}
}

func TestParamsAddr(t *testing.T) {
	p := Params{Host: "db.example.com", Port: 3307}
	if got := p.Addr(); got != "db.example.com:3307" {
		t.Errorf("Addr = %s", got)
	}
}
