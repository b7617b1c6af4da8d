package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvPageSize, "")
	t.Setenv(EnvLogLevel, "")
	return dir
}

func writeRaw(t *testing.T, home, body string) {
	t.Helper()
	cfgDir := filepath.Join(home, ".balance")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte(body), 0600))
}

func TestSaveConfigCreatesDirectories(t *testing.T) {
	isolate(t)

	cfg := Config{Token: "sk-admin"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	isolate(t)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	isolate(t)

	original := Config{
		ServerURL: "http://balance.internal:8000",
		Token:     "sk-admin",
		PageSize:  50,
		LogLevel:  "debug",
		LogFile:   "/tmp/balance.log",
	}
	require.NoError(t, original.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoadAppliesDefaults(t *testing.T) {
	home := isolate(t)
	writeRaw(t, home, "token: sk-admin\n")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.PageSize)
	assert.Equal(t, filepath.Join(home, ".balance", "balance.log"), loaded.LogFile)
	assert.Empty(t, loaded.ServerURL)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	home := isolate(t)
	writeRaw(t, home, "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	home := isolate(t)
	writeRaw(t, home, "invalid: yaml: content:")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	isolate(t)

	cfg := Config{Token: "secret"}
	require.NoError(t, cfg.Save())
	require.NoError(t, os.Chmod(Path(), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	home := isolate(t)
	writeRaw(t, home, "server_url: http://file:8000\ntoken: sk-file\npage_size: 10\n")
	t.Setenv(EnvServerURL, "http://env:9000")
	t.Setenv(EnvToken, "sk-env")
	t.Setenv(EnvPageSize, "5")
	t.Setenv(EnvLogLevel, "warn")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", loaded.ServerURL)
	assert.Equal(t, "sk-env", loaded.Token)
	assert.Equal(t, 5, loaded.PageSize)
	assert.Equal(t, "warn", loaded.LogLevel)
}

func TestInvalidPageSizeEnvIsIgnored(t *testing.T) {
	home := isolate(t)
	writeRaw(t, home, "token: sk-file\npage_size: 10\n")
	t.Setenv(EnvPageSize, "lots")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.PageSize)
}

func TestEnvTokenWithoutFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvToken, "sk-env")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", loaded.Token)
}

func TestInsecureFileIsNotBypassedByEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, (&Config{Token: "sk-file"}).Save())
	require.NoError(t, os.Chmod(Path(), 0644))
	t.Setenv(EnvToken, "sk-env")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoadEnvReadsDotenvWithoutOverriding(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BALANCE_SERVER_URL=http://dotenv:8000\nBALANCE_TOKEN=sk-dotenv\n"), 0600))
	t.Setenv(EnvToken, "sk-already-set")
	os.Unsetenv(EnvServerURL)

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "http://dotenv:8000", os.Getenv(EnvServerURL))
	assert.Equal(t, "sk-already-set", os.Getenv(EnvToken))
}

func TestLoadEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestPathReturnsCorrectLocation(t *testing.T) {
	path := Path()
	assert.Contains(t, path, ".balance")
	assert.Contains(t, path, "config")
}
