package cli

import (
	"time"

	"github.com/kalibr1/cinequery/internal/agent"
	"github.com/kalibr1/cinequery/internal/config"
	"github.com/kalibr1/cinequery/internal/llm"
	"github.com/kalibr1/cinequery/internal/store"
	"github.com/kalibr1/cinequery/internal/tools"
)

// app bundles the wired-up components most commands need.
type app struct {
	cfg        config.Config
	db         *store.DB
	dispatcher *agent.Dispatcher
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return defaultConfigPath
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openStore opens the movie database without requiring model credentials.
// Used by commands that never talk to the model.
func openStore() (config.Config, *store.DB, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return cfg, nil, err
	}
	db, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}

// buildApp wires the store, model registry, tools, and dispatcher.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	registry := llm.NewRegistryFromConfig(cfg.Model, log)

	toolReg := tools.NewRegistry()
	toolReg.Register(tools.NewSQLTool(db, cfg.Database.RowLimit, log))
	if cfg.TicketingEnabled() {
		toolReg.Register(tools.NewTicketTool(cfg.Ticketing, log))
	}

	dispatcher := agent.NewDispatcher(
		agent.Config{
			Model:         cfg.Model.Model,
			MaxTokens:     cfg.Model.MaxTokens,
			Temperature:   cfg.Model.Temperature,
			MaxToolRounds: cfg.Agent.MaxToolRounds,
			ModelTimeout:  time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
			Ticketing:     cfg.TicketingEnabled(),
			ExtraPrompt:   cfg.Agent.ExtraPrompt,
		},
		registry,
		agent.NewMemorySessionStore(),
		toolReg,
		log,
	)

	return &app{cfg: cfg, db: db, dispatcher: dispatcher}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
