package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Store: StoreConfig{
			BasePath: "/some/path",
		},
		Recalc: RecalcConfig{
			QueueSize: 64,
			Workers:   2,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RecalcBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Recalc.QueueSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Recalc.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/medialog", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "medialog"), got)

	got, err = expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/abs/path", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("MEDIALOG_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "MEDIALOG_TEST_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "MEDIALOG_TEST_KEY", "default"))
	// Default when neither is set.
	assert.Equal(t, "default", getConfigValue("", "MEDIALOG_TEST_KEY_UNSET", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("MEDIALOG_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "MEDIALOG_TEST_INT", 7))

	t.Setenv("MEDIALOG_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getIntConfigValue("", "MEDIALOG_TEST_INT", 7))

	assert.Equal(t, 7, getIntConfigValue("", "MEDIALOG_TEST_INT_UNSET", 7))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nMEDIALOG_ENVFILE_A=hello\nMEDIALOG_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("MEDIALOG_ENVFILE_A")
		os.Unsetenv("MEDIALOG_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("MEDIALOG_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("MEDIALOG_ENVFILE_B"))

	// Already-set env vars are not overridden.
	t.Setenv("MEDIALOG_ENVFILE_A", "preset")
	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "preset", os.Getenv("MEDIALOG_ENVFILE_A"))
}
