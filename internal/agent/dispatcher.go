// Package agent runs the per-turn dispatch loop between the user, the
// model, and the registered tools.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kalibr1/cinequery/internal/domain"
	"github.com/kalibr1/cinequery/internal/llm"
	"github.com/kalibr1/cinequery/internal/logging"
	"github.com/kalibr1/cinequery/internal/tools"
)

// roundLimitReply is the graceful fallback when the model keeps requesting
// tools past the round limit.
const roundLimitReply = "Sorry — I wasn't able to complete that request. Please try rephrasing your question."

// emptyReply covers a model that finishes the tool loop without any text.
const emptyReply = "Sorry, I'm not sure how to respond to that."

// Config bounds the dispatch loop.
type Config struct {
	Model         string
	MaxTokens     int
	Temperature   *float64
	MaxToolRounds int           // tool-invocation rounds per turn
	ModelTimeout  time.Duration // per model call
	Ticketing     bool          // whether create_ticket is offered
	ExtraPrompt   string
}

// TurnResult is the outcome of processing one user utterance.
type TurnResult struct {
	Reply      string        `json:"reply"`
	SessionID  string        `json:"sessionId"`
	Model      string        `json:"model,omitempty"`
	Usage      llm.Usage     `json:"usage"`
	ToolRounds int           `json:"toolRounds"`
	Duration   time.Duration `json:"duration"`
}

// Dispatcher bridges user text and tool execution. It never constructs SQL
// or ticket content itself; it only routes the model's tool requests.
type Dispatcher struct {
	cfg      Config
	registry *llm.Registry
	sessions SessionStore
	tools    *tools.Registry
	log      *logging.Logger

	// One turn at a time: a turn fully completes (or fails) before the
	// next is accepted.
	mu sync.Mutex
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	cfg Config,
	registry *llm.Registry,
	sessions SessionStore,
	toolReg *tools.Registry,
	log *logging.Logger,
) *Dispatcher {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 5
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 30 * time.Second
	}
	return &Dispatcher{
		cfg:      cfg,
		registry: registry,
		sessions: sessions,
		tools:    toolReg,
		log:      log.Sub("agent"),
	}
}

// Run processes one user utterance and returns the final reply.
// All tool failures are converted into structured results fed back to the
// model; only model unavailability or an unknown tool ends the turn with
// an error.
func (d *Dispatcher) Run(ctx context.Context, key domain.SessionKey, userText string) (*TurnResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	session := d.sessions.GetOrCreate(key)
	d.log.Info().
		Str("sessionId", session.ID).
		Str("channel", key.Channel).
		Int("historyLen", len(session.Messages)).
		Msg("processing message")

	d.sessions.Append(session.ID, domain.Message{
		Role:    domain.RoleUser,
		Content: userText,
	})

	system := BuildSystemPrompt(PromptConfig{
		TicketingEnabled: d.cfg.Ticketing,
		ExtraPrompt:      d.cfg.ExtraPrompt,
	})
	defs := d.tools.Definitions()

	client, err := d.registry.Resolve(d.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("model unavailable: %w", err)
	}

	var usage llm.Usage
	rounds := 0

	for {
		req := llm.CompletionRequest{
			Model:       d.cfg.Model,
			System:      system,
			Messages:    d.sessions.History(session.ID),
			Tools:       defs,
			MaxTokens:   d.cfg.MaxTokens,
			Temperature: d.cfg.Temperature,
		}

		resp, err := d.complete(ctx, client, req)
		if err != nil {
			return nil, fmt.Errorf("model unavailable: %w", err)
		}
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		if len(resp.ToolCalls) == 0 {
			reply := strings.TrimSpace(resp.Content)
			if reply == "" {
				d.log.Warn().Msg("model finished tool loop without a text response")
				reply = emptyReply
			}
			d.sessions.Append(session.ID, domain.Message{
				Role:    domain.RoleAssistant,
				Content: reply,
			})

			d.log.Info().
				Str("sessionId", session.ID).
				Str("model", resp.Model).
				Int("toolRounds", rounds).
				Dur("duration", time.Since(start)).
				Msg("reply generated")

			return &TurnResult{
				Reply:      reply,
				SessionID:  session.ID,
				Model:      resp.Model,
				Usage:      usage,
				ToolRounds: rounds,
				Duration:   time.Since(start),
			}, nil
		}

		if rounds >= d.cfg.MaxToolRounds {
			d.log.Warn().
				Str("sessionId", session.ID).
				Int("rounds", rounds).
				Msg("tool round limit exceeded, ending turn")
			d.sessions.Append(session.ID, domain.Message{
				Role:    domain.RoleAssistant,
				Content: roundLimitReply,
			})
			return &TurnResult{
				Reply:      roundLimitReply,
				SessionID:  session.ID,
				Model:      resp.Model,
				Usage:      usage,
				ToolRounds: rounds,
				Duration:   time.Since(start),
			}, nil
		}

		// Record the assistant turn that requested the tools.
		assistantContent := strings.TrimSpace(resp.Content)
		if assistantContent == "" {
			assistantContent = fmt.Sprintf("[requesting %s]", toolNames(resp.ToolCalls))
		}
		d.sessions.Append(session.ID, domain.Message{
			Role:    domain.RoleAssistant,
			Content: assistantContent,
		})

		results, err := d.executeToolCalls(ctx, resp.ToolCalls)
		if err != nil {
			return nil, err
		}
		rounds++

		d.sessions.Append(session.ID, domain.Message{
			Role:    domain.RoleTool,
			Content: formatToolResults(results),
		})
	}
}

// complete runs one bounded model call.
func (d *Dispatcher) complete(ctx context.Context, client llm.Client, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	mctx, cancel := context.WithTimeout(ctx, d.cfg.ModelTimeout)
	defer cancel()
	return client.Complete(mctx, req)
}

// toolResult holds the output from executing one requested tool.
type toolResult struct {
	Name   string
	Output string
	Err    error
}

// executeToolCalls runs each requested tool in order. A request for a tool
// outside the registered set ends the turn; it is never silently ignored.
func (d *Dispatcher) executeToolCalls(ctx context.Context, calls []llm.ToolCall) ([]toolResult, error) {
	results := make([]toolResult, 0, len(calls))
	for _, call := range calls {
		tool, ok := d.tools.Get(call.Name)
		if !ok {
			return nil, fmt.Errorf("model requested unknown tool %q", call.Name)
		}

		d.log.Debug().Str("tool", call.Name).Msg("executing tool")
		output, err := tool.Execute(ctx, call.Input)
		if err != nil {
			d.log.Warn().Str("tool", call.Name).Err(err).Msg("tool rejected input")
		}
		results = append(results, toolResult{Name: call.Name, Output: output, Err: err})
	}
	return results, nil
}

// formatToolResults renders tool execution results for the model.
func formatToolResults(results []toolResult) string {
	var b strings.Builder
	b.WriteString("Tool execution results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n", r.Name)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", r.Err)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func toolNames(calls []llm.ToolCall) string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
