// Package config loads and validates the cinequery configuration.
package config

// Config is the root configuration for cinequery.
type Config struct {
	Model     ModelConfig     `yaml:"model,omitempty"`
	Ticketing TicketingConfig `yaml:"ticketing,omitempty"`
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ModelConfig selects the LLM provider and credentials.
type ModelConfig struct {
	Provider       string   `yaml:"provider,omitempty"` // "gemini" | "claude"
	APIKey         string   `yaml:"apiKey,omitempty"`   // supports ${ENV_VAR} references
	Model          string   `yaml:"model,omitempty"`
	Fallbacks      []string `yaml:"fallbacks,omitempty"`
	MaxTokens      int      `yaml:"maxTokens,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
	TimeoutSeconds int      `yaml:"timeoutSeconds,omitempty"`
}

// TicketingConfig configures the GitHub issue tracker used for support tickets.
// When Token or Repo is empty the ticket tool is not registered.
type TicketingConfig struct {
	Token string `yaml:"token,omitempty"` // supports ${ENV_VAR} references
	Repo  string `yaml:"repo,omitempty"`  // "owner/name"
}

// DatabaseConfig locates the movie database.
type DatabaseConfig struct {
	Path     string `yaml:"path,omitempty"`
	RowLimit int    `yaml:"rowLimit,omitempty"` // max rows returned per query
}

// AgentConfig bounds the dispatch loop.
type AgentConfig struct {
	MaxToolRounds int    `yaml:"maxToolRounds,omitempty"`
	ExtraPrompt   string `yaml:"extraPrompt,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket chat server.
type GatewayConfig struct {
	Port      int    `yaml:"port,omitempty"`
	Bind      string `yaml:"bind,omitempty"`
	AuthToken string `yaml:"authToken,omitempty"` // supports ${ENV_VAR} references
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug"
}

// Defaults returns a Config with every zero-value field filled in.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "gemini"
	}
	if cfg.Model.Model == "" {
		cfg.Model.Model = "gemini-flash-latest"
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 2048
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = 30
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "movies.db"
	}
	if cfg.Database.RowLimit == 0 {
		cfg.Database.RowLimit = 20
	}
	if cfg.Agent.MaxToolRounds == 0 {
		cfg.Agent.MaxToolRounds = 5
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 8487
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "127.0.0.1"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
