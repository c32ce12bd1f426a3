package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalibr1/cinequery/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedMovies(t *testing.T, db *DB) {
	t.Helper()
	rows := []struct {
		title string
		votes int
		avg   float64
	}{
		{"Inception", 30000, 8.4},
		{"The Room", 5000, 3.7},
		{"Parasite", 14000, 8.5},
		{"Cats", 2000, 2.8},
		{"Arrival", 16000, 7.5},
	}
	for _, r := range rows {
		_, err := db.sql.Exec(
			"INSERT INTO movies (Title, Vote_Count, Vote_Average, Genre) VALUES (?, ?, ?, ?)",
			r.title, r.votes, r.avg, `[{"id": 18, "name": "Drama"}]`,
		)
		require.NoError(t, err)
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM movies").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Migrations are idempotent across re-runs.
	require.NoError(t, db.migrate())
}

func TestQueryReturnsRows(t *testing.T) {
	db := testDB(t)
	seedMovies(t, db)

	res, err := db.Query(context.Background(),
		"SELECT Title FROM movies ORDER BY Vote_Average DESC LIMIT 2", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title"}, res.Columns)
	assert.Equal(t, 2, res.Returned)
	assert.Equal(t, 2, res.Total)
	assert.False(t, res.Truncated)
	assert.Equal(t, "Parasite", res.Rows[0]["Title"])
	assert.Equal(t, "Inception", res.Rows[1]["Title"])
}

func TestQueryCapsRows(t *testing.T) {
	db := testDB(t)
	seedMovies(t, db)

	res, err := db.Query(context.Background(), "SELECT Title FROM movies", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Returned)
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Rows, 3)
}

func TestQueryErrorSurfaced(t *testing.T) {
	db := testDB(t)

	_, err := db.Query(context.Background(), "SELECT nope FROM missing_table", 20)
	assert.Error(t, err)
}

func TestAggregateStats(t *testing.T) {
	db := testDB(t)

	// Empty table: COALESCE keeps the vote sum at zero.
	s, err := db.AggregateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.TotalMovies)
	assert.Equal(t, int64(0), s.TotalVotes)

	seedMovies(t, db)
	s, err = db.AggregateStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.TotalMovies)
	assert.Equal(t, int64(67000), s.TotalVotes)
}

const sampleCSV = `Release_Date,Title,Overview,Popularity,Vote_Count,Vote_Average,Original_Language,Genre,Poster_Url
2010-07-15,Inception,A thief enters dreams.,83.5,30000,8.4,en,"[{""id"": 28, ""name"": ""Action""}]",https://example.com/inception.jpg
2019-05-30,Parasite,A poor family schemes.,70.1,14000,8.5,ko,"[{""id"": 18, ""name"": ""Drama""}]",https://example.com/parasite.jpg
`

func TestImportCSV(t *testing.T) {
	db := testDB(t)

	n, err := db.ImportCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := db.Query(context.Background(),
		"SELECT Title, Vote_Count FROM movies ORDER BY Title", 20)
	require.NoError(t, err)
	require.Equal(t, 2, res.Returned)
	assert.Equal(t, "Inception", res.Rows[0]["Title"])
	assert.Equal(t, int64(30000), res.Rows[0]["Vote_Count"])

	// Re-import replaces rather than appends.
	n, err = db.ImportCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := db.MovieCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImportCSVMissingColumn(t *testing.T) {
	db := testDB(t)

	_, err := db.ImportCSV(context.Background(), strings.NewReader("Title,Overview\nInception,A movie\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestConvertField(t *testing.T) {
	assert.Equal(t, 8.4, convertField("Vote_Average", "8.4"))
	assert.Equal(t, int64(100), convertField("Vote_Count", "100"))
	assert.Nil(t, convertField("Vote_Count", "not-a-number"))
	assert.Nil(t, convertField("Title", ""))
	assert.Equal(t, "Inception", convertField("Title", "Inception"))
}
