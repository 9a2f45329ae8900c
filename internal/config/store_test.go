package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverwatch/serverwatch/internal/config"
)

// fakeEnv returns an environment lookup backed by a map.
func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchdog.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newStore(t *testing.T, fileContent string, env map[string]string) *config.Store {
	t.Helper()
	return config.NewStore(config.StoreConfig{
		Path:   writeSettingsFile(t, fileContent),
		Logger: zerolog.Nop(),
		Getenv: fakeEnv(env),
	})
}

func TestStore_Load_Defaults(t *testing.T) {
	store := config.NewStore(config.StoreConfig{
		Path:   filepath.Join(t.TempDir(), "missing.env"),
		Logger: zerolog.Nop(),
		Getenv: fakeEnv(nil),
	})

	cfg := store.Load()

	assert.Equal(t, config.DefaultServerName, cfg.ServerName)
	assert.Equal(t, config.PolicyError, cfg.NotInstalledPolicy)
	assert.Equal(t, config.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, config.DefaultFrequencies(), cfg.Frequencies)
	assert.Empty(t, cfg.InfoRecipients)
	assert.Empty(t, cfg.AdminToken)
}

func TestStore_Load_FileWinsOverEnvironment(t *testing.T) {
	store := newStore(t, "serverName=from-file\n", map[string]string{
		"serverName": "from-env",
	})

	cfg := store.Load()
	assert.Equal(t, "from-file", cfg.ServerName)
}

func TestStore_Load_EnvironmentWhenFileHasNoValue(t *testing.T) {
	store := newStore(t, "serverName=\n", map[string]string{
		"serverName": "from-env",
	})

	cfg := store.Load()
	assert.Equal(t, "from-env", cfg.ServerName)
}

func TestStore_Load_UpperCaseKeyFallback(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"SERVER_NAME": "backup-name",
	})

	cfg := store.Load()
	assert.Equal(t, "backup-name", cfg.ServerName)
}

func TestStore_Load_AdminTokenEnvironmentWins(t *testing.T) {
	// The admin token is the one key where the environment beats the file,
	// so a corrupted settings file cannot lock the operator out.
	store := newStore(t, "WATCHDOG_ADMIN_TOKEN=file-token\n", map[string]string{
		"WATCHDOG_ADMIN_TOKEN": "env-token",
	})

	cfg := store.Load()
	assert.Equal(t, "env-token", cfg.AdminToken)
}

func TestStore_Load_AdminTokenFileWhenEnvUnset(t *testing.T) {
	store := newStore(t, "WATCHDOG_ADMIN_TOKEN=file-token\n", nil)

	cfg := store.Load()
	assert.Equal(t, "file-token", cfg.AdminToken)
}

func TestStore_Load_TrimsWhitespaceAndQuotes(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"serverName": `  "alpha-node"  `,
	})

	cfg := store.Load()
	assert.Equal(t, "alpha-node", cfg.ServerName)
}

func TestStore_Load_ThresholdsFromJSON(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"WATCHDOG_THRESHOLDS_JSON": `{"cpu":{"warning":"70","error":"95"}}`,
	})

	cfg := store.Load()

	got, err := cfg.Threshold(config.KeyCPU)
	require.NoError(t, err)
	assert.Equal(t, config.Threshold{Warning: "70", Error: "95"}, got)

	// Configured JSON replaces the default table entirely.
	_, err = cfg.Threshold(config.KeyDisk)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrThresholdNotFound)
	assert.Contains(t, err.Error(), config.KeyDisk)
}

func TestStore_Load_InvalidThresholdJSONFallsBack(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"WATCHDOG_THRESHOLDS_JSON": `{"cpu": not json`,
	})

	cfg := store.Load()
	assert.Equal(t, config.DefaultThresholds(), cfg.Thresholds)
}

func TestStore_Load_InvalidFrequencyJSONFallsBack(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"WATCHDOG_MESSAGE_FREQUENCY_JSON": `["not","a","map"]`,
	})

	cfg := store.Load()
	assert.Equal(t, config.DefaultFrequencies(), cfg.Frequencies)
}

func TestStore_Load_Recipients(t *testing.T) {
	store := newStore(t, "", map[string]string{
		"errorChatIDs":   ` "123" , ,456,  `,
		"warningChatIDs": "789",
	})

	cfg := store.Load()
	assert.Equal(t, []string{"123", "456"}, cfg.ErrorRecipients)
	assert.Equal(t, []string{"789"}, cfg.WarningRecipients)
	assert.Empty(t, cfg.InfoRecipients)
}

func TestConfig_Frequency_FallsBackToOneHour(t *testing.T) {
	store := newStore(t, "", nil)
	cfg := store.Load()

	assert.Equal(t, "1d", cfg.Frequency(config.LevelWarning))
	assert.Equal(t, "1h", cfg.Frequency("unknown-level"))
}

func TestConfig_Threshold_NormalizesEmptyBounds(t *testing.T) {
	cfg := &config.Config{
		Thresholds: map[string]config.Threshold{
			config.KeyUsers: {Warning: "2"},
		},
	}

	got, err := cfg.Threshold(config.KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, "0", got.Error)
}

func TestStore_Current_CachesUntilReload(t *testing.T) {
	env := map[string]string{"serverName": "first"}
	store := config.NewStore(config.StoreConfig{
		Path:   filepath.Join(t.TempDir(), "missing.env"),
		Logger: zerolog.Nop(),
		Getenv: func(key string) string { return env[key] },
	})

	assert.Equal(t, "first", store.Current().ServerName)

	env["serverName"] = "second"
	assert.Equal(t, "first", store.Current().ServerName, "Current must not reload implicitly")
	assert.Equal(t, "second", store.Reload().ServerName)
	assert.Equal(t, "second", store.Current().ServerName)
}

func TestStore_WriteSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.env")
	store := config.NewStore(config.StoreConfig{
		Path:   path,
		Logger: zerolog.Nop(),
		Getenv: fakeEnv(nil),
	})

	settings := config.Settings{
		Thresholds: map[string]config.Threshold{
			config.KeyCPU:           {Warning: "80", Error: "100"},
			config.KeySystemRestart: {Warning: "10d", Error: "50d"},
		},
		Frequencies:       map[string]string{"info": "1h", "error": "3d"},
		InfoRecipients:    []string{"11", "22"},
		WarningRecipients: []string{"33"},
		ErrorRecipients:   []string{"44"},
	}

	require.NoError(t, store.WriteSettings(settings))

	cfg := store.Load()
	assert.Equal(t, settings.Thresholds, cfg.Thresholds)
	assert.Equal(t, settings.Frequencies, cfg.Frequencies)
	assert.Equal(t, settings.InfoRecipients, cfg.InfoRecipients)
	assert.Equal(t, settings.WarningRecipients, cfg.WarningRecipients)
	assert.Equal(t, settings.ErrorRecipients, cfg.ErrorRecipients)
}

func TestStore_WriteSettings_PreservesUnrelatedKeys(t *testing.T) {
	store := newStore(t, "serverName=keep-me\n", nil)

	require.NoError(t, store.WriteSettings(config.Settings{
		Thresholds:  config.DefaultThresholds(),
		Frequencies: config.DefaultFrequencies(),
	}))

	cfg := store.Load()
	assert.Equal(t, "keep-me", cfg.ServerName)
	assert.Equal(t, config.DefaultThresholds(), cfg.Thresholds)
}
