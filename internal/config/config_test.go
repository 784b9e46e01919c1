package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the pfgantt variables for the test and restores them
// afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvConfigFile, EnvNATSURL, EnvLogUseCases} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "gantt.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, cfg.Weekend)
	assert.Empty(t, cfg.NATSURL)
	assert.False(t, cfg.LogUseCases)
	assert.Empty(t, cfg.Holidays)
}

func TestLoad_TOMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "gantt.toml", `
[calendar]
weekend = ["friday", "Sat"]

[[holidays]]
date = "2010-06-03"
name = "Corpus Christi"

[nats]
url = "nats://file:4222"
`)
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load(filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, cfg.Weekend)
	require.Len(t, cfg.Holidays, 1)
	assert.Equal(t, domain.Date(2010, 6, 3), cfg.Holidays[0].Date)
	assert.Equal(t, "nats://file:4222", cfg.NATSURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvConfigFile, writeFile(t, dir, "gantt.toml", "[nats]\nurl = \"nats://file:4222\"\n"))
	t.Setenv(EnvNATSURL, "nats://env:4222")
	t.Setenv(EnvDB, filepath.Join(dir, "custom.db"))
	t.Setenv(EnvLogUseCases, "true")

	cfg, err := Load(filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "nats://env:4222", cfg.NATSURL)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DBPath)
	assert.True(t, cfg.LogUseCases)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "PF_GANTT_DB="+filepath.Join(dir, "from-dotenv.db")+"\nPF_GANTT_CONFIG="+filepath.Join(dir, "none.toml")+"\n")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-dotenv.db"), cfg.DBPath)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv(EnvConfigFile, writeFile(t, dir, "bad-weekday.toml", "[calendar]\nweekend = [\"caturday\"]\n"))
	_, err := Load(filepath.Join(dir, "none.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caturday")

	t.Setenv(EnvConfigFile, writeFile(t, dir, "bad-date.toml", "[[holidays]]\ndate = \"03.06.2010\"\n"))
	_, err = Load(filepath.Join(dir, "none.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holidays[0]")

	t.Setenv(EnvConfigFile, writeFile(t, dir, "broken.toml", "[calendar\n"))
	_, err = Load(filepath.Join(dir, "none.env"))
	assert.Error(t, err)
}
