package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override budget.yaml.
const (
	EnvDBDriver        = "BUDGET_DB_DRIVER"
	EnvDBDSN           = "BUDGET_DB_DSN"
	EnvRulesFile       = "BUDGET_RULES_FILE"
	EnvKafkaBrokers    = "BUDGET_KAFKA_BROKERS"
	EnvMetricsTextfile = "BUDGET_METRICS_TEXTFILE"
)

// EnvFile is read from the config directory when present.
const EnvFile = ".env"

// Config represents the top-level budget.yaml configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	RulesFile string          `yaml:"rules_file"`
	Accounts  []AccountConfig `yaml:"accounts"`
	Kafka     KafkaConfig     `yaml:"kafka,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
	Server    ServerConfig    `yaml:"server"`
	// RunLog is the CSV file every CLI operation is recorded in.
	RunLog string `yaml:"run_log"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-"`
}

// DatabaseConfig selects the ledger database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// AccountConfig maps an account to its statement format.
type AccountConfig struct {
	ID     string `yaml:"id"`
	Format string `yaml:"format"`
}

// KafkaConfig enables event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// MetricsConfig controls metric export for CLI runs.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// ServerConfig controls the read-only HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a budget.yaml file from disk, then applies the .env file next
// to it and the process environment, in increasing precedence.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Dir = filepath.Dir(path)
	cfg.fillDefaults()

	dotenv, err := readEnvFile(filepath.Join(cfg.Dir, EnvFile))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return &cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// ApplyEnv overrides settings from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDBDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvDBDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvRulesFile); ok && v != "" {
		c.RulesFile = v
	}
	if v, ok := lookup(EnvKafkaBrokers); ok {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup(EnvMetricsTextfile); ok {
		c.Metrics.Textfile = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	cfg := &Config{
		Accounts: []AccountConfig{
			{ID: "RAIFFEISEN_PRIVAT", Format: "raiffeisen"},
			{ID: "RAIFFEISEN_SPAR", Format: "raiffeisen"},
			{ID: "CEMBRA", Format: "cembra"},
		},
	}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "budget.db"
	}
	if c.RulesFile == "" {
		c.RulesFile = "rules.yaml"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "budget.ledger"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.RunLog == "" {
		c.RunLog = filepath.Join("logs", "run-log.csv")
	}
}

// Formats maps account IDs to statement formats.
func (c *Config) Formats() map[string]string {
	m := make(map[string]string, len(c.Accounts))
	for _, a := range c.Accounts {
		m[a.ID] = a.Format
	}
	return m
}

// Path resolves p against the config directory unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// DatabaseDSN returns the DSN with a relative sqlite path resolved. A
// "file:" prefix is dropped; query parameters are kept.
func (c *Config) DatabaseDSN() string {
	dsn := c.Database.DSN
	if c.Database.Driver != "sqlite" || dsn == "" || strings.Contains(dsn, ":memory:") {
		return dsn
	}
	path, query, hasQuery := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	path = c.Path(path)
	if hasQuery {
		path += "?" + query
	}
	return path
}
