package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinequery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "gemini-flash-latest", cfg.Model.Model)
	assert.Equal(t, 2048, cfg.Model.MaxTokens)
	assert.Equal(t, 30, cfg.Model.TimeoutSeconds)
	assert.Equal(t, "movies.db", cfg.Database.Path)
	assert.Equal(t, 20, cfg.Database.RowLimit)
	assert.Equal(t, 5, cfg.Agent.MaxToolRounds)
	assert.Equal(t, 8487, cfg.Gateway.Port)
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: claude
  apiKey: sk-test
  model: claude-sonnet-4-5
database:
  path: /data/movies.db
  rowLimit: 50
agent:
  maxToolRounds: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.Model.Provider)
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.Equal(t, "/data/movies.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Database.RowLimit)
	assert.Equal(t, 3, cfg.Agent.MaxToolRounds)

	// Untouched fields still default.
	assert.Equal(t, 2048, cfg.Model.MaxTokens)
	assert.Equal(t, 8487, cfg.Gateway.Port)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "model: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
model:
  apiKey: from-file
database:
  path: file.db
`)

	t.Setenv("CINEQUERY_API_KEY", "from-env")
	t.Setenv("CINEQUERY_DB_PATH", "env.db")
	t.Setenv("CINEQUERY_GATEWAY_PORT", "9000")
	t.Setenv("CINEQUERY_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Model.APIKey)
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvVarExpansionInCredentials(t *testing.T) {
	path := writeConfig(t, `
model:
  apiKey: ${TEST_MODEL_KEY}
ticketing:
  token: ${TEST_GH_TOKEN}
  repo: owner/repo
gateway:
  authToken: ${TEST_UNSET_VAR}
`)

	t.Setenv("TEST_MODEL_KEY", "key-123")
	t.Setenv("TEST_GH_TOKEN", "ghp_abc")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Model.APIKey)
	assert.Equal(t, "ghp_abc", cfg.Ticketing.Token)
	// Unset variables are left as-is so the failure is visible.
	assert.Equal(t, "${TEST_UNSET_VAR}", cfg.Gateway.AuthToken)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Model.APIKey = "k"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Model.Provider = "openai" }, "model.provider"},
		{"missing api key", func(c *Config) { c.Model.APIKey = "" }, "model.apiKey"},
		{"bad timeout", func(c *Config) { c.Model.TimeoutSeconds = 0 }, "model.timeoutSeconds"},
		{"bad row limit", func(c *Config) { c.Database.RowLimit = -1 }, "database.rowLimit"},
		{"bad rounds", func(c *Config) { c.Agent.MaxToolRounds = 0 }, "agent.maxToolRounds"},
		{"bad repo", func(c *Config) { c.Ticketing.Repo = "norepo" }, "ticketing.repo"},
		{"bad port", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestTicketingEnabled(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.TicketingEnabled())

	cfg.Ticketing.Token = "t"
	assert.False(t, cfg.TicketingEnabled())

	cfg.Ticketing.Repo = "owner/repo"
	assert.True(t, cfg.TicketingEnabled())
}
