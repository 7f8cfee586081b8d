// Package config loads the TOML configuration file used by the barserver
// command: indicator engine thresholds plus the settings needed to stand up
// the HTTP run service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/dao/inmem"
	"github.com/barscript/barscript/service/dao/sqlite"
	"github.com/barscript/barscript/ta"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(s) {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database holds the settings needed to connect to a persistence layer for
// run records.
type Database struct {
	Type DBType `toml:"type"`

	// DataDir is where on disk sqlite stores its files. Only used when Type
	// is DatabaseSQLite.
	DataDir string `toml:"data_dir"`
}

// Connect opens the configured store.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewDatastore(), nil
	case DatabaseSQLite:
		if err := os.MkdirAll(db.DataDir, 0770); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.NewDatastore(db.DataDir)
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate checks that Database carries every field required by its Type.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("data_dir not set")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// ParseDBConnString parses a connection string of the form "engine:params"
// (or bare "engine" if no params are required), e.g. "sqlite:/var/lib/bars"
// or "inmem".
func ParseDBConnString(s string) (Database, error) {
	var paramStr string
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 2 {
		paramStr = strings.TrimSpace(parts[1])
	}

	eng, err := ParseDBType(strings.TrimSpace(parts[0]))
	if err != nil {
		return Database{}, fmt.Errorf("unsupported DB engine: %w", err)
	}

	switch eng {
	case DatabaseInMemory:
		if paramStr != "" {
			return Database{}, fmt.Errorf("unsupported param(s) for in-memory DB engine: %s", paramStr)
		}
		return Database{Type: DatabaseInMemory}, nil
	case DatabaseSQLite:
		if paramStr == "" {
			return Database{}, fmt.Errorf("sqlite DB engine requires a data directory after ':'")
		}
		return Database{Type: DatabaseSQLite, DataDir: paramStr}, nil
	default:
		return Database{}, fmt.Errorf("cannot specify DB engine %q", eng.String())
	}
}

// Indicators mirrors ta.Config, broken out as its own TOML table so an
// operator can tune healing intervals and history caps without touching code.
type Indicators struct {
	HealIntervalSum      int `toml:"heal_interval_sum"`
	HealIntervalVariance int `toml:"heal_interval_variance"`
	HistoryCap           int `toml:"history_cap"`
	HistoryTrimMargin    int `toml:"history_trim_margin"`
}

// ToTAConfig converts Indicators to the ta.Config the engine actually
// consumes.
func (ind Indicators) ToTAConfig() ta.Config {
	return ta.Config{
		HealIntervalSum:      ind.HealIntervalSum,
		HealIntervalVariance: ind.HealIntervalVariance,
		HistoryCap:           ind.HistoryCap,
		HistoryTrimMargin:    ind.HistoryTrimMargin,
	}
}

func indicatorsFromTAConfig(cfg ta.Config) Indicators {
	return Indicators{
		HealIntervalSum:      cfg.HealIntervalSum,
		HealIntervalVariance: cfg.HealIntervalVariance,
		HistoryCap:           cfg.HistoryCap,
		HistoryTrimMargin:    cfg.HistoryTrimMargin,
	}
}

// Config is the top-level TOML document read by barserver (and optionally by
// barrun, for indicator tuning).
type Config struct {
	// TokenSecret is the secret used to sign run-service auth tokens. If
	// empty, a default (dev-only) key is used.
	TokenSecret string `toml:"token_secret"`

	// ListenAddress is the "host:port" the HTTP server binds to.
	ListenAddress string `toml:"listen_address"`

	DB Database `toml:"db"`

	// UnauthDelayMillis is extra latency added before responding to a failed
	// or forbidden auth attempt, as a crude anti-flood measure. Set to a
	// negative number to disable.
	UnauthDelayMillis int `toml:"unauth_delay_millis"`

	Indicators Indicators `toml:"indicators"`
}

// UnauthDelay returns UnauthDelayMillis as a time.Duration, or zero if
// disabled.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// Default returns a Config with every field set to its default value,
// including ta.DefaultConfig's indicator thresholds.
func Default() Config {
	return Config{
		TokenSecret:       "DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!",
		ListenAddress:     ":8080",
		DB:                Database{Type: DatabaseInMemory},
		UnauthDelayMillis: 1000,
		Indicators:        indicatorsFromTAConfig(ta.DefaultConfig),
	}
}

// FillDefaults returns a copy of cfg with every unset field replaced by its
// value in Default().
func (cfg Config) FillDefaults() Config {
	def := Default()
	filled := cfg

	if filled.TokenSecret == "" {
		filled.TokenSecret = def.TokenSecret
	}
	if filled.ListenAddress == "" {
		filled.ListenAddress = def.ListenAddress
	}
	if filled.DB.Type == DatabaseNone {
		filled.DB = def.DB
	}
	if filled.UnauthDelayMillis == 0 {
		filled.UnauthDelayMillis = def.UnauthDelayMillis
	}
	if filled.Indicators == (Indicators{}) {
		filled.Indicators = def.Indicators
	}

	return filled
}

// Validate returns an error if cfg has invalid or missing required fields.
// Call FillDefaults first if defaults are acceptable for unset fields.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token_secret: must be at least %d bytes, got %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token_secret: must be no more than %d bytes, got %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	return nil
}

// Load reads and decodes a Config from a TOML file at path.
func Load(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}
