package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens and keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Model.APIKey = expandEnvVars(cfg.Model.APIKey)
	cfg.Ticketing.Token = expandEnvVars(cfg.Ticketing.Token)
	cfg.Gateway.AuthToken = expandEnvVars(cfg.Gateway.AuthToken)
}

// Load reads the config file, applies environment overrides, and returns a
// merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			expandSensitiveFields(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyEnvOverrides reads CINEQUERY_* environment variables over config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CINEQUERY_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("CINEQUERY_GITHUB_TOKEN"); v != "" {
		cfg.Ticketing.Token = v
	}
	if v := os.Getenv("CINEQUERY_GITHUB_REPO"); v != "" {
		cfg.Ticketing.Repo = v
	}
	if v := os.Getenv("CINEQUERY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CINEQUERY_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("CINEQUERY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
