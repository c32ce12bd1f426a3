package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalibr1/cinequery/internal/config"
)

func testTicketTool(baseURL string) *TicketTool {
	tool := NewTicketTool(config.TicketingConfig{
		Token: "test-token",
		Repo:  "kalibr1/cinequery",
	}, silentLog())
	tool.baseURL = baseURL
	return tool
}

func TestTicketToolCreatesIssue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/kalibr1/cinequery/issues", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Bot gave wrong data", payload["title"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 42, "html_url": "https://github.com/kalibr1/cinequery/issues/42"}`))
	}))
	defer srv.Close()

	tool := testTicketTool(srv.URL)
	out, err := tool.Execute(context.Background(),
		`{"title": "Bot gave wrong data", "body": "The top-rated list was wrong."}`)
	require.NoError(t, err)

	var res struct {
		OK   bool          `json:"ok"`
		Data ticketCreated `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.OK)
	assert.Equal(t, "GH-42", res.Data.TicketID)
	assert.Equal(t, "https://github.com/kalibr1/cinequery/issues/42", res.Data.URL)
}

func TestTicketToolRetriesTransientFailureOnce(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "backend hiccup", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tool := testTicketTool(srv.URL)
	out, err := tool.Execute(context.Background(), `{"title": "t", "body": "b"}`)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.False(t, res.OK)
	assert.Equal(t, KindTicketCreationFailed, res.Kind)
	assert.Equal(t, 2, attempts, "one retry on transient failure")
}

func TestTicketToolNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "validation failed", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	tool := testTicketTool(srv.URL)
	out, err := tool.Execute(context.Background(), `{"title": "t", "body": "b"}`)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.False(t, res.OK)
	assert.Equal(t, KindTicketCreationFailed, res.Kind)
	assert.Contains(t, res.Message, "422")
}

func TestTicketToolEmptyTitle(t *testing.T) {
	tool := testTicketTool("http://invalid.example")
	out, err := tool.Execute(context.Background(), `{"title": "  ", "body": "b"}`)
	require.NoError(t, err)

	res := decodeResult(t, out)
	assert.False(t, res.OK)
	assert.Equal(t, KindTicketCreationFailed, res.Kind)
}

func TestTicketToolBoundsFieldLengths(t *testing.T) {
	var gotTitle, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		gotTitle, gotBody = payload["title"], payload["body"]
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 1, "html_url": "https://example.com/1"}`))
	}))
	defer srv.Close()

	tool := testTicketTool(srv.URL)
	input, _ := json.Marshal(map[string]string{
		"title": strings.Repeat("t", 1000),
		"body":  strings.Repeat("b", 10000),
	})
	_, err := tool.Execute(context.Background(), string(input))
	require.NoError(t, err)

	assert.Len(t, gotTitle, maxTicketTitleLen)
	assert.Len(t, gotBody, maxTicketBodyLen)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcd", 2))
	assert.Equal(t, "héll", truncate("héllo", 4))
}

func TestResultJSON(t *testing.T) {
	out := Failure(KindBlockedQuery, "nope").JSON()
	var res Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.OK)
	assert.Equal(t, KindBlockedQuery, res.Kind)
	assert.Equal(t, "nope", res.Message)
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewSQLTool(&spyQuerier{}, 20, silentLog()))
	reg.Register(testTicketTool("http://example.com"))

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "run_sql", defs[0].Name)
	assert.Equal(t, "create_ticket", defs[1].Name)

	_, ok := reg.Get("run_sql")
	assert.True(t, ok)
	_, ok = reg.Get("write_files")
	assert.False(t, ok)
}
