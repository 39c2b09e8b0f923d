package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
server1:
  host: db1.example.com
  port: 3306
  database: game_sv1
  username: merge_user
  password: secret1
server2:
  host: db2.example.com
  database: game_sv2
  username: merge_user
  password: secret2
merge:
  id_offset: 100000
  target_server: 1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server1.Host != "db1.example.com" {
		t.Errorf("Server1.Host = %s", cfg.Server1.Host)
	}
	if cfg.Merge.IDOffset != 100000 {
		t.Errorf("IDOffset = %d", cfg.Merge.IDOffset)
	}

	target := cfg.Target()
	if target.Database != "game_sv1" {
		t.Errorf("Target database = %s, want game_sv1", target.Database)
	}
	source := cfg.Source()
	if source.Database != "game_sv2" {
		t.Errorf("Source database = %s, want game_sv2", source.Database)
	}
	// Unspecified port falls back to the MySQL default.
	if source.Port != 3306 {
		t.Errorf("Source port = %d, want 3306", source.Port)
	}

	if cfg.ClanTable() != "clan_sv1" {
		t.Errorf("ClanTable = %s", cfg.ClanTable())
	}
	if cfg.ClanColumn() != "clan_id_sv1" {
		t.Errorf("ClanColumn = %s", cfg.ClanColumn())
	}
}

func TestLoadTargetServer2SwapsRoles(t *testing.T) {
	content := strings.Replace(sampleConfig, "target_server: 1", "target_server: 2", 1)
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Target().Database; got != "game_sv2" {
		t.Errorf("Target database = %s, want game_sv2", got)
	}
	if got := cfg.Source().Database; got != "game_sv1" {
		t.Errorf("Source database = %s, want game_sv1", got)
	}
	if cfg.ClanTable() != "clan_sv2" {
		t.Errorf("ClanTable = %s", cfg.ClanTable())
	}
}

func TestLoadPasswordFromEnv(t *testing.T) {
	t.Setenv("SVMERGE_SERVER1_PASSWORD", "from-env")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server1.Password != "from-env" {
		t.Errorf("Server1.Password = %s, want from-env", cfg.Server1.Password)
	}
	if cfg.Server2.Password != "secret2" {
		t.Errorf("Server2.Password = %s, want secret2", cfg.Server2.Password)
	}
}

func TestLoadPasswordFromFile(t *testing.T) {
	pwPath := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(pwPath, []byte("from-file"), 0600); err != nil {
		t.Fatalf("failed to write password file: %v", err)
	}
	t.Setenv("SVMERGE_SERVER2_PASSWORD_FILE", pwPath)

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server2.Password != "from-file" {
		t.Errorf("Server2.Password = %s, want from-file", cfg.Server2.Password)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		replace string
	}{
		{"missing host", "host: db1.example.com", "host: \"\""},
		{"zero offset", "id_offset: 100000", "id_offset: 0"},
		{"bad target server", "target_server: 1", "target_server: 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(sampleConfig, tt.mutate, tt.replace, 1)
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
