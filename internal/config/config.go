package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultTimeLimit is the hard per-attempt limit. It is the only place the
// value is defined; the session manager receives it from Config.
const DefaultTimeLimit = 3900 * time.Second

// EnvPrefix namespaces every environment override (PROCTOR_TIME_LIMIT, ...).
const EnvPrefix = "PROCTOR"

// Store drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all runtime configuration.
type Config struct {
	// TimeLimit is how long a user has to finish an attempt.
	TimeLimit time.Duration `mapstructure:"time_limit"`

	// DataDir is the root for tests, booklets, stats and the sqlite file
	// unless those are set explicitly.
	DataDir  string `mapstructure:"data_dir"`
	TestsDir string `mapstructure:"tests_dir"`
	PDFDir   string `mapstructure:"pdf_dir"`

	Store    StoreConfig    `mapstructure:"store"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`

	// Admins are the user IDs allowed to request aggregate statistics.
	Admins []int64 `mapstructure:"admins"`

	// LocalUserID identifies the person at the keyboard in the terminal
	// front end.
	LocalUserID int64 `mapstructure:"local_user_id"`
}

// StoreConfig selects and configures the history backend.
type StoreConfig struct {
	Driver   string      `mapstructure:"driver"` // file | sqlite | postgres
	DSN      string      `mapstructure:"dsn"`
	StatsDir string      `mapstructure:"stats_dir"`
	Retry    RetryConfig `mapstructure:"retry"`
}

// RetryConfig bounds retries of transient store failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// TelegramConfig configures the bot front end.
type TelegramConfig struct {
	Token         string  `mapstructure:"token"`
	Debug         bool    `mapstructure:"debug"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// HTTPConfig configures the operator HTTP surface. An empty Addr disables it.
type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig configures zap and the optional rotating log file.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{
		TimeLimit: DefaultTimeLimit,
		DataDir:   "data",
		Store: StoreConfig{
			Driver: DriverFile,
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: 200 * time.Millisecond,
				MaxWait:     2 * time.Second,
				Multiplier:  2.0,
			},
		},
		Telegram: TelegramConfig{
			RatePerSecond: 25,
			Burst:         5,
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8090",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		LocalUserID: 1,
	}
	cfg.resolvePaths()
	return cfg
}

// NewViper returns a viper instance preloaded with defaults and environment
// bindings. Callers may bind flags onto it before passing it to Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("time_limit", d.TimeLimit)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("tests_dir", "")
	v.SetDefault("pdf_dir", "")
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.stats_dir", "")
	v.SetDefault("store.retry.max_attempts", d.Store.Retry.MaxAttempts)
	v.SetDefault("store.retry.initial_wait", d.Store.Retry.InitialWait)
	v.SetDefault("store.retry.max_wait", d.Store.Retry.MaxWait)
	v.SetDefault("store.retry.multiplier", d.Store.Retry.Multiplier)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.rate_per_second", d.Telegram.RatePerSecond)
	v.SetDefault("telegram.burst", d.Telegram.Burst)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("admins", []int64{})
	v.SetDefault("local_user_id", d.LocalUserID)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BOT_TOKEN is accepted for older deployments.
	_ = v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "BOT_TOKEN")

	return v
}

// Load reads configuration in priority order: flags bound on v, PROCTOR_*
// environment variables (a .env file in the working directory is loaded
// first if present), the config file at path, then defaults. An empty path
// searches for proctor.yaml in the working directory and silently skips it
// when absent.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("proctor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolvePaths()

	if err := cfg.validateCommon(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolvePaths fills directory settings left empty from DataDir.
func (c *Config) resolvePaths() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.TestsDir == "" {
		c.TestsDir = filepath.Join(c.DataDir, "tests")
	}
	if c.PDFDir == "" {
		c.PDFDir = filepath.Join(c.DataDir, "pdfs")
	}
	if c.Store.StatsDir == "" {
		c.Store.StatsDir = filepath.Join(c.DataDir, "stats")
	}
	if c.Store.DSN == "" && c.Store.Driver == DriverSQLite {
		c.Store.DSN = filepath.Join(c.DataDir, "proctor.db")
	}
}

func (c Config) validateCommon() error {
	if c.TimeLimit <= 0 {
		return fmt.Errorf("time_limit must be positive, got %s", c.TimeLimit)
	}
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if c.Store.Retry.MaxAttempts < 1 {
		return fmt.Errorf("store.retry.max_attempts must be at least 1")
	}
	return nil
}

// ValidateBot checks the settings the Telegram front end needs.
func (c Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%s_TELEGRAM_TOKEN (or BOT_TOKEN) is required for the bot", EnvPrefix)
	}
	if c.Telegram.RatePerSecond <= 0 {
		return fmt.Errorf("telegram.rate_per_second must be positive")
	}
	return nil
}

// IsAdmin reports whether userID is on the admin allow-list.
func (c Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admins, userID)
}
