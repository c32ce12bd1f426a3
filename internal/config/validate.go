package config

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks that the configuration can support a chat session.
// Ticketing is optional; when absent the ticket tool is simply not offered.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "claude":
	default:
		return &ValidationError{Field: "model.provider", Message: fmt.Sprintf("unknown provider %q", c.Model.Provider)}
	}
	if c.Model.APIKey == "" {
		return &ValidationError{Field: "model.apiKey", Message: "required (set CINEQUERY_API_KEY or model.apiKey)"}
	}
	if c.Model.TimeoutSeconds < 1 {
		return &ValidationError{Field: "model.timeoutSeconds", Message: "must be positive"}
	}
	if c.Database.RowLimit < 1 {
		return &ValidationError{Field: "database.rowLimit", Message: "must be positive"}
	}
	if c.Agent.MaxToolRounds < 1 {
		return &ValidationError{Field: "agent.maxToolRounds", Message: "must be positive"}
	}
	if c.Ticketing.Repo != "" && !strings.Contains(c.Ticketing.Repo, "/") {
		return &ValidationError{Field: "ticketing.repo", Message: `must be "owner/name"`}
	}
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return &ValidationError{Field: "gateway.port", Message: "must be 1-65535"}
	}
	return nil
}

// TicketingEnabled reports whether the ticket tool can be constructed.
func (c *Config) TicketingEnabled() bool {
	return c.Ticketing.Token != "" && c.Ticketing.Repo != ""
}
