// Package config loads the merge run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/svmerge/internal/store"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "config.yaml"

// Server describes one of the two database servers.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Merge holds the merge parameters.
//
// IDOffset must be chosen by the operator larger than the highest existing id
// of any merged entity kind in the target database. That is an operator
// responsibility, not a runtime check: a too-small offset causes primary-key
// collisions at insert time.
type Merge struct {
	IDOffset     int64 `yaml:"id_offset"`
	TargetServer int   `yaml:"target_server"`
}

// Config is the full run configuration.
type Config struct {
	Server1 Server `yaml:"server1"`
	Server2 Server `yaml:"server2"`
	Merge   Merge  `yaml:"merge"`
}

// Load reads configuration with precedence:
// 1. Environment variables (SVMERGE_*)
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. The YAML config file at path
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Passwords can be kept out of the config file entirely.
	if pw := getEnvOrFile("SVMERGE_SERVER1_PASSWORD", "SVMERGE_SERVER1_PASSWORD_FILE"); pw != "" {
		cfg.Server1.Password = pw
	}
	if pw := getEnvOrFile("SVMERGE_SERVER2_PASSWORD", "SVMERGE_SERVER2_PASSWORD_FILE"); pw != "" {
		cfg.Server2.Password = pw
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the parts of the configuration the merge depends on.
func (c *Config) Validate() error {
	for i, srv := range []Server{c.Server1, c.Server2} {
		if srv.Host == "" {
			return fmt.Errorf("server%d: host is required", i+1)
		}
		if srv.Database == "" {
			return fmt.Errorf("server%d: database is required", i+1)
		}
		if srv.Username == "" {
			return fmt.Errorf("server%d: username is required", i+1)
		}
	}
	if c.Merge.IDOffset <= 0 {
		return fmt.Errorf("merge.id_offset must be positive")
	}
	if c.Merge.TargetServer != 1 && c.Merge.TargetServer != 2 {
		return fmt.Errorf("merge.target_server must be 1 or 2")
	}
	return nil
}

// Target returns the connection parameters of the merge target store.
func (c *Config) Target() store.Params {
	if c.Merge.TargetServer == 2 {
		return c.Server2.params()
	}
	return c.Server1.params()
}

// Source returns the connection parameters of the merge source store.
func (c *Config) Source() store.Params {
	if c.Merge.TargetServer == 2 {
		return c.Server1.params()
	}
	return c.Server2.params()
}

// ClanTable returns the per-server clan table name, e.g. clan_sv1.
func (c *Config) ClanTable() string {
	return fmt.Sprintf("clan_sv%d", c.Merge.TargetServer)
}

// ClanColumn returns the per-server clan reference column on player,
// e.g. clan_id_sv1.
func (c *Config) ClanColumn() string {
	return fmt.Sprintf("clan_id_sv%d", c.Merge.TargetServer)
}

func (s Server) params() store.Params {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return store.Params{
		Host:     s.Host,
		Port:     port,
		Database: s.Database,
		Username: s.Username,
		Password: s.Password,
	}
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
