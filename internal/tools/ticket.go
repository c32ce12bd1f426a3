package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/kalibr1/cinequery/internal/config"
	"github.com/kalibr1/cinequery/internal/logging"
)

const (
	githubBaseURL = "https://api.github.com"

	maxTicketTitleLen = 256
	maxTicketBodyLen  = 4000
)

// TicketTool files support tickets as GitHub issues.
type TicketTool struct {
	repo    string
	baseURL string
	client  *retryablehttp.Client
	log     *logging.Logger
}

// NewTicketTool creates the create_ticket tool. The token rides in an
// oauth2 transport; transient failures get a single retry.
func NewTicketTool(cfg config.TicketingConfig, log *logging.Logger) *TicketTool {
	httpClient := oauth2.NewClient(context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	httpClient.Timeout = 30 * time.Second

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = 1
	rc.Logger = nil

	return &TicketTool{
		repo:    cfg.Repo,
		baseURL: githubBaseURL,
		client:  rc,
		log:     log.Sub("tool.create_ticket"),
	}
}

func (t *TicketTool) Name() string { return "create_ticket" }

func (t *TicketTool) Description() string {
	return "Creates a support ticket so a human can follow up. " +
		"Use when the user asks for help, is frustrated, or wants to report a problem."
}

func (t *TicketTool) InputSchema() string {
	return `{"type":"object","properties":{"title":{"type":"string","description":"Short summary of the issue"},"body":{"type":"string","description":"Detailed description of the issue"}},"required":["title","body"]}`
}

type ticketInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ticketCreated struct {
	TicketID string `json:"ticketId"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

// Execute files the ticket against the issue tracker.
func (t *TicketTool) Execute(ctx context.Context, input string) (string, error) {
	var in ticketInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("decoding create_ticket input: %w", err)
	}

	if strings.TrimSpace(in.Title) == "" {
		return Failure(KindTicketCreationFailed, "ticket title must not be empty").JSON(), nil
	}

	payload, err := json.Marshal(map[string]string{
		"title": truncate(in.Title, maxTicketTitleLen),
		"body":  truncate(in.Body, maxTicketBodyLen),
	})
	if err != nil {
		return "", fmt.Errorf("encoding ticket payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues", t.baseURL, t.repo)
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", url, payload)
	if err != nil {
		return "", fmt.Errorf("creating ticket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	t.log.Info().Str("repo", t.repo).Str("title", in.Title).Msg("creating support ticket")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error().Err(err).Msg("ticket request failed")
		return Failure(KindTicketCreationFailed, "network error reaching the issue tracker").JSON(), nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		t.log.Error().Int("status", resp.StatusCode).Msg("issue tracker rejected ticket")
		return Failure(KindTicketCreationFailed, fmt.Sprintf(
			"issue tracker responded with status %d", resp.StatusCode,
		)).JSON(), nil
	}

	var issue struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.Unmarshal(body, &issue); err != nil {
		return Failure(KindTicketCreationFailed, "issue tracker returned an unreadable response").JSON(), nil
	}

	id := fmt.Sprintf("GH-%d", issue.Number)
	t.log.Info().Str("ticket", id).Str("url", issue.HTMLURL).Msg("ticket created")

	return Success(ticketCreated{
		TicketID: id,
		URL:      issue.HTMLURL,
		Message:  fmt.Sprintf("Support ticket %s has been created. A human will review it at %s", id, issue.HTMLURL),
	}).JSON(), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
