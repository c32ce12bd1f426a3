package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kalibr1/cinequery/internal/logging"
	"github.com/kalibr1/cinequery/internal/safety"
	"github.com/kalibr1/cinequery/internal/store"
)

// Querier is the read surface of the movie store. The SQL tool is the only
// component allowed to issue agent-generated statements, and only after the
// safety gate approves them.
type Querier interface {
	Query(ctx context.Context, query string, limit int) (*store.QueryResult, error)
}

// SQLTool runs gated read queries against the movie database.
type SQLTool struct {
	db       Querier
	rowLimit int
	log      *logging.Logger
}

// NewSQLTool creates the run_sql tool. rowLimit caps how many rows a single
// query feeds back into the model context.
func NewSQLTool(db Querier, rowLimit int, log *logging.Logger) *SQLTool {
	return &SQLTool{db: db, rowLimit: rowLimit, log: log.Sub("tool.run_sql")}
}

func (t *SQLTool) Name() string { return "run_sql" }

func (t *SQLTool) Description() string {
	return "Runs a read-only SQL query against the movies database and returns matching rows. " +
		"Only SELECT statements are permitted; mutating statements are rejected."
}

func (t *SQLTool) InputSchema() string {
	return `{"type":"object","properties":{"query":{"type":"string","description":"A SQLite SELECT statement"}},"required":["query"]}`
}

type sqlInput struct {
	Query string `json:"query"`
}

// Execute classifies the candidate query and runs it if it is safe.
// A blocked query never reaches the store.
func (t *SQLTool) Execute(ctx context.Context, input string) (string, error) {
	var in sqlInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("decoding run_sql input: %w", err)
	}

	if strings.TrimSpace(in.Query) == "" {
		return Success(map[string]string{"message": "empty query; nothing to execute"}).JSON(), nil
	}

	verdict := safety.Classify(in.Query)
	if !verdict.Safe {
		t.log.Warn().Str("keyword", verdict.Keyword).Str("query", in.Query).Msg("blocked unsafe query")
		return Failure(KindBlockedQuery, fmt.Sprintf(
			"query contains banned keyword %s; only read-only SELECT statements are permitted",
			verdict.Keyword,
		)).JSON(), nil
	}

	t.log.Info().Str("query", in.Query).Msg("executing query")

	result, err := t.db.Query(ctx, in.Query, t.rowLimit)
	if err != nil {
		t.log.Warn().Err(err).Msg("query failed")
		return Failure(KindQueryError, err.Error()).JSON(), nil
	}

	return Success(result).JSON(), nil
}
