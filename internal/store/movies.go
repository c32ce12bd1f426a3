package store

import (
	"context"
	"fmt"
)

// QueryResult holds a bounded slice of rows from a read query.
type QueryResult struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Returned  int              `json:"returned"`
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
}

// Stats are the dashboard aggregates over the movie dataset.
type Stats struct {
	TotalMovies int64 `json:"totalMovies"`
	TotalVotes  int64 `json:"totalVotes"`
}

// Query executes a read statement and returns at most limit rows.
// Remaining rows are drained (without scanning) so Total reflects the full
// match count. Callers are expected to have vetted the statement already;
// this method never writes.
func (db *DB) Query(ctx context.Context, query string, limit int) (*QueryResult, error) {
	rows, err := db.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	result := &QueryResult{Columns: cols}
	for rows.Next() {
		if len(result.Rows) >= limit {
			// Keep counting matches past the cap without scanning.
			result.Total++
			continue
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
		result.Total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	result.Returned = len(result.Rows)
	result.Truncated = result.Total > result.Returned
	return result, nil
}

// MovieCount returns the number of rows in the movies table.
func (db *DB) MovieCount(ctx context.Context) (int64, error) {
	var n int64
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting movies: %w", err)
	}
	return n, nil
}

// AggregateStats returns the dashboard aggregates.
func (db *DB) AggregateStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(Vote_Count), 0) FROM movies",
	).Scan(&s.TotalMovies, &s.TotalVotes)
	if err != nil {
		return nil, fmt.Errorf("reading aggregates: %w", err)
	}
	return &s, nil
}
