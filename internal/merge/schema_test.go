package merge

import (
	"testing"

	"github.com/lherron/svmerge/internal/testutil"
)

func TestEnsureProvenanceColumn(t *testing.T) {
	db := testutil.MemDB(t)
	testutil.MustExec(t, db, "CREATE TABLE player (id INTEGER PRIMARY KEY)")
	catalog := sqliteCatalog{db}

	evolver := NewEvolver(catalog, db, false)

	created, err := evolver.EnsureProvenanceColumn("player")
	if err != nil {
		t.Fatalf("EnsureProvenanceColumn failed: %v", err)
	}
	if !created {
		t.Error("expected column to be created on first call")
	}

	exists, err := catalog.ColumnExists("player", ProvenanceColumn)
	if err != nil {
		t.Fatalf("ColumnExists failed: %v", err)
	}
	if !exists {
		t.Error("column missing after EnsureProvenanceColumn")
	}

	// Second call is a no-op.
	created, err = evolver.EnsureProvenanceColumn("player")
	if err != nil {
		t.Fatalf("second EnsureProvenanceColumn failed: %v", err)
	}
	if created {
		t.Error("second call should not recreate the column")
	}
}

func TestEnsureProvenanceColumnDryRun(t *testing.T) {
	db := testutil.MemDB(t)
	testutil.MustExec(t, db, "CREATE TABLE player (id INTEGER PRIMARY KEY)")
	catalog := sqliteCatalog{db}

	created, err := NewEvolver(catalog, db, true).EnsureProvenanceColumn("player")
	if err != nil {
		t.Fatalf("EnsureProvenanceColumn failed: %v", err)
	}
	if !created {
		t.Error("dry run should report that the column would be created")
	}

	exists, err := catalog.ColumnExists("player", ProvenanceColumn)
	if err != nil {
		t.Fatalf("ColumnExists failed: %v", err)
	}
	if exists {
		t.Error("dry run must not issue DDL")
	}
}
