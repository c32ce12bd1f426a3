package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// movieColumns is the expected CSV header, in table column order.
var movieColumns = []string{
	"Release_Date", "Title", "Overview", "Popularity", "Vote_Count",
	"Vote_Average", "Original_Language", "Genre", "Poster_Url",
}

// ImportCSV replaces the movies table contents with rows from the dataset
// CSV. Returns the number of rows imported. This is the only write path
// against the store besides migrations.
func (db *DB) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	// Map each table column to its position in this file's header.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	positions := make([]int, len(movieColumns))
	for i, col := range movieColumns {
		pos, ok := index[col]
		if !ok {
			return 0, fmt.Errorf("csv missing column %q", col)
		}
		positions[i] = pos
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return 0, fmt.Errorf("clearing movies: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(movieColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO movies (%s) VALUES (%s)",
		strings.Join(movieColumns, ", "), placeholders,
	))
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading csv row %d: %w", count+1, err)
		}

		args := make([]any, len(movieColumns))
		for i, pos := range positions {
			if pos >= len(record) {
				args[i] = nil
				continue
			}
			args[i] = convertField(movieColumns[i], record[pos])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	db.log.Info().Int("rows", count).Msg("dataset imported")
	return count, nil
}

// convertField coerces numeric dataset fields; everything else stays text.
// Unparseable numerics become NULL rather than failing the import.
func convertField(column, value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch column {
	case "Popularity", "Vote_Average":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return nil
	case "Vote_Count":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		return nil
	default:
		return value
	}
}
