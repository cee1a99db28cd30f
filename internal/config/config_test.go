package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3900*time.Second, cfg.TimeLimit)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, filepath.Join("data", "tests"), cfg.TestsDir)
	assert.Equal(t, filepath.Join("data", "pdfs"), cfg.PDFDir)
	assert.Equal(t, filepath.Join("data", "stats"), cfg.Store.StatsDir)
	assert.NoError(t, cfg.validateCommon())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proctor.yaml")
	yaml := `
time_limit: 90s
data_dir: /srv/proctor
admins: [42, 7]
store:
  driver: sqlite
telegram:
  burst: 9
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.TimeLimit)
	assert.Equal(t, filepath.Join("/srv/proctor", "tests"), cfg.TestsDir)
	assert.Equal(t, filepath.Join("/srv/proctor", "proctor.db"), cfg.Store.DSN)
	assert.Equal(t, []int64{42, 7}, cfg.Admins)
	assert.Equal(t, 9, cfg.Telegram.Burst)
	assert.Equal(t, 25.0, cfg.Telegram.RatePerSecond)
	assert.True(t, cfg.IsAdmin(7))
	assert.False(t, cfg.IsAdmin(8))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proctor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_limit: 90s\n"), 0o644))

	t.Setenv("PROCTOR_TIME_LIMIT", "2m")
	t.Setenv("BOT_TOKEN", "abc")

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.TimeLimit)
	assert.Equal(t, "abc", cfg.Telegram.Token)
	assert.NoError(t, cfg.ValidateBot())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero time limit", func(c *Config) { c.TimeLimit = 0 }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.Store.DSN = "postgres://localhost/proctor"
		}, false},
		{"no retry attempts", func(c *Config) { c.Store.Retry.MaxAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.validateCommon()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBot_RequiresToken(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.ValidateBot())
	cfg.Telegram.Token = "t"
	assert.NoError(t, cfg.ValidateBot())
}
