package merge

import (
	"testing"

	"github.com/lherron/svmerge/internal/mapping"
	"github.com/lherron/svmerge/internal/testutil"
)

func TestHistoryMergerRewritesPlayerIDs(t *testing.T) {
	target := testutil.MemDB(t)
	source := testutil.MemDB(t)

	ddl := "CREATE TABLE gift_code_histories (id INTEGER PRIMARY KEY, player_id INTEGER, gift_code_id INTEGER, code TEXT, type_clone INTEGER, created_at TEXT)"
	testutil.MustExec(t, target, ddl)
	testutil.MustExec(t, source, ddl,
		"INSERT INTO gift_code_histories VALUES (1, 5, 10, 'NEWYEAR', -1, '2024-01-01 00:00:00')",
		"INSERT INTO gift_code_histories VALUES (2, 8, 11, 'SUMMER', 0, NULL)",
	)

	run := newTestRun(t, target, source, 1000, false)
	if err := run.Mappings.Generate(mapping.KindPlayer, []int64{5}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	count, err := HistoryMerger{}.Merge(run)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var code string
	if err := target.QueryRow("SELECT code FROM gift_code_histories WHERE player_id = 1005").Scan(&code); err != nil {
		t.Fatalf("remapped history not found: %v", err)
	}
	if code != "NEWYEAR" {
		t.Errorf("code = %s, want NEWYEAR", code)
	}

	// Player 8 is outside the merge scope and keeps its id.
	if err := target.QueryRow("SELECT code FROM gift_code_histories WHERE player_id = 8").Scan(&code); err != nil {
		t.Fatalf("pass-through history not found: %v", err)
	}
}

func TestVipMergerCoercesFlags(t *testing.T) {
	target := testutil.MemDB(t)
	source := testutil.MemDB(t)

	ddl := "CREATE TABLE player_vip (player_id INTEGER, vip_1 INTEGER, vip_2 INTEGER)"
	testutil.MustExec(t, target, ddl)
	testutil.MustExec(t, source,
		"CREATE TABLE player_vip (player_id INTEGER, vip_1 BLOB, vip_2 INTEGER)",
		"INSERT INTO player_vip VALUES (5, x'01', 0)",
	)

	run := newTestRun(t, target, source, 1000, false)
	if err := run.Mappings.Generate(mapping.KindPlayer, []int64{5}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	count, err := VipMerger{}.Merge(run)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	var vip1, vip2 int64
	if err := target.QueryRow("SELECT vip_1, vip_2 FROM player_vip WHERE player_id = 1005").Scan(&vip1, &vip2); err != nil {
		t.Fatalf("remapped vip row not found: %v", err)
	}
	if vip1 != 1 || vip2 != 0 {
		t.Errorf("vip flags = (%d, %d), want (1, 0)", vip1, vip2)
	}
}

func TestVipMergerSkipsMissingTable(t *testing.T) {
	target := testutil.MemDB(t)
	source := testutil.MemDB(t)

	run := newTestRun(t, target, source, 1000, false)

	count, err := VipMerger{}.Merge(run)
	if err != nil {
		t.Fatalf("Merge should skip a missing source table, got: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestPlayerMergerDryRunBuildsMapping(t *testing.T) {
	target := testutil.MemDB(t)
	source := testutil.MemDB(t)
	testutil.MustExec(t, source,
		"CREATE TABLE player (id INTEGER PRIMARY KEY, account_id INTEGER, clan_id_sv1 INTEGER)",
		"INSERT INTO player VALUES (5, 5, 3)",
		"INSERT INTO player VALUES (9, 6, -1)",
	)

	run := newTestRun(t, target, source, 1000, true)

	count, err := PlayerMerger{}.Merge(run)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if got := run.Mappings.Lookup(mapping.KindPlayer, 5); got != 1005 {
		t.Errorf("player mapping 5 -> %d, want 1005", got)
	}
	if got := run.Mappings.Lookup(mapping.KindPlayer, 9); got != 1009 {
		t.Errorf("player mapping 9 -> %d, want 1009", got)
	}
}

func TestClanMergerRewritesStagedMembers(t *testing.T) {
	target := testutil.MemDB(t)
	source := testutil.MemDB(t)
	testutil.MustExec(t, target,
		"CREATE TABLE temp_clan_sv1 (id INTEGER, members TEXT)",
		`INSERT INTO temp_clan_sv1 VALUES (1003, '[{"id":5,"name":"Goku"}]')`,
		`INSERT INTO temp_clan_sv1 VALUES (1004, '["{\"id\":9}"]')`,
		"INSERT INTO temp_clan_sv1 VALUES (1005, NULL)",
		"INSERT INTO temp_clan_sv1 VALUES (1006, '')",
	)

	run := newTestRun(t, target, source, 1000, false)
	if err := run.Mappings.Generate(mapping.KindPlayer, []int64{5, 9}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := (ClanMerger{}).rewriteMembers(run, "temp_clan_sv1"); err != nil {
		t.Fatalf("rewriteMembers failed: %v", err)
	}

	var members string
	if err := target.QueryRow("SELECT members FROM temp_clan_sv1 WHERE id = 1003").Scan(&members); err != nil {
		t.Fatalf("failed to read clan 1003: %v", err)
	}
	if want := `[{"id":1005,"name":"Goku"}]`; members != want {
		t.Errorf("clan 1003 members = %s, want %s", members, want)
	}

	if err := target.QueryRow("SELECT members FROM temp_clan_sv1 WHERE id = 1004").Scan(&members); err != nil {
		t.Fatalf("failed to read clan 1004: %v", err)
	}
	if want := `["{\"id\":1009}"]`; members != want {
		t.Errorf("clan 1004 members = %s, want %s", members, want)
	}
}
