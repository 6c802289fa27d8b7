package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration: a YAML file overlaid with environment
// variables, so a bare binary still starts with sane defaults.
type Config struct {
	Addr   string `yaml:"addr"`
	Ledger Ledger `yaml:"ledger"`
	NPC    NPC    `yaml:"npc"`
}

type Ledger struct {
	// Mode selects the backing store: memory, sqlite or postgres.
	Mode string `yaml:"mode"`
	// DSN is the postgres connection string (postgres mode only).
	DSN string `yaml:"dsn"`
	// Path is the sqlite database file (sqlite mode only).
	Path string `yaml:"path"`
}

type NPC struct {
	// PersonaFile points at a persona roster JSON; empty means the
	// built-in roster.
	PersonaFile string `yaml:"persona_file"`
}

func Default() Config {
	return Config{
		Addr: ":8080",
		Ledger: Ledger{
			Mode: "sqlite",
		},
	}
}

// Load reads path (if non-empty), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("SERVER_ADDR")); v != "" {
		c.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGER_MODE")); v != "" {
		c.Ledger.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGER_DATABASE_DSN")); v != "" {
		c.Ledger.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGER_LOCAL_DATABASE_PATH")); v != "" {
		c.Ledger.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("NPC_PERSONA_FILE")); v != "" {
		c.NPC.PersonaFile = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Ledger.Mode)) {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid ledger mode %q (want memory, sqlite or postgres)", c.Ledger.Mode)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("empty listen address")
	}
	return nil
}
