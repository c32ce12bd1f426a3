package store

// migration is a single schema change.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order at Open time. Column names match the
// Pablinho/movies-dataset CSV headers so imported data round-trips as-is.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create movies table",
		SQL: `
			CREATE TABLE IF NOT EXISTS movies (
				Release_Date TEXT,
				Title TEXT,
				Overview TEXT,
				Popularity REAL,
				Vote_Count INTEGER,
				Vote_Average REAL,
				Original_Language TEXT,
				Genre TEXT,
				Poster_Url TEXT
			)
		`,
	},
	{
		Version: 2,
		Name:    "index movies by title",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_movies_title ON movies (Title)`,
	},
}
