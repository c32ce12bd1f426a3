package agent

import (
	"fmt"
	"strings"
	"time"
)

// schemaDescription teaches the model the movies table layout, including
// how the Genre column must be queried.
const schemaDescription = `Table Name: movies

Columns:
- ROWID (INTEGER): The unique internal identifier for the movie row. Use this for any queries needing a unique ID.
- Release_Date (TEXT): The date the movie was released (e.g., 'YYYY-MM-DD').
- Title (TEXT): The main title of the movie.
- Overview (TEXT): A text summary of the movie's plot.
- Popularity (REAL): A numeric score for the movie's popularity.
- Vote_Count (INTEGER): The total number of votes received.
- Vote_Average (REAL): The average rating from 0.0 to 10.0.
- Original_Language (TEXT): A two-letter code for the original language (e.g., 'en', 'fr').
- Genre (TEXT): A JSON string representing a list of genres.
    - Example: '[{"id": 28, "name": "Action"}, {"id": 12, "name": "Adventure"}]'
    - To query a genre, you MUST use the LIKE operator.
    - Example Query: WHERE Genre LIKE '%"name": "Action"%'
- Poster_Url (TEXT): A URL to the movie's poster image.`

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	TicketingEnabled bool
	ExtraPrompt      string
}

// BuildSystemPrompt constructs the system prompt for the model.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	b.WriteString("You are a helpful Data Analyst assistant.\n")
	b.WriteString("Your goal is to assist users with their questions about a movie database.\n\n")

	b.WriteString(fmt.Sprintf("Current date: %s\n\n", time.Now().Format("2006-01-02")))

	b.WriteString("You MUST follow these rules:\n")
	b.WriteString("- Only use the provided tools. Do not make up data.\n")
	b.WriteString("- When a user asks for data, ALWAYS use the run_sql tool.\n")
	b.WriteString("- Generate a valid SQLite query for the schema provided below.\n")
	if cfg.TicketingEnabled {
		b.WriteString("- If the user asks for help, is frustrated, or asks to talk to a human,\n")
		b.WriteString("  offer to create a support ticket using create_ticket.\n")
		b.WriteString("  Ask for a title and description before calling the tool.\n")
	}
	b.WriteString("- Be concise and clear in your responses.\n\n")

	b.WriteString("DATABASE SCHEMA:\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n")

	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}
