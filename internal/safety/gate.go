// Package safety classifies agent-proposed SQL before it may execute.
//
// The check is a deny-list keyword match, not a SQL parse. That is the
// documented contract: mutating statements are rejected by keyword, and
// anything else is allowed through to a read-only execution path.
package safety

import (
	"regexp"
	"strings"
)

// deniedKeywords are the statement keywords that must never reach the store.
var deniedKeywords = []string{
	"DELETE", "DROP", "UPDATE", "INSERT", "ALTER",
	"TRUNCATE", "ATTACH", "PRAGMA", "REPLACE",
	"GRANT", "REVOKE", "SHUTDOWN",
}

// tokenRe splits a statement into identifier-like tokens. Matching whole
// tokens avoids false positives on identifiers such as update_time.
var tokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Verdict is the outcome of classifying a candidate query.
type Verdict struct {
	Safe    bool   `json:"safe"`
	Keyword string `json:"keyword,omitempty"` // matched deny-list token when blocked
}

// Classify checks a candidate SQL string against the deny-list.
// Statements separated by ';' are checked independently; one unsafe
// sub-statement blocks the whole candidate. Pure and deterministic.
func Classify(candidateSQL string) Verdict {
	for _, stmt := range strings.Split(candidateSQL, ";") {
		for _, tok := range tokenRe.FindAllString(stmt, -1) {
			upper := strings.ToUpper(tok)
			for _, kw := range deniedKeywords {
				if upper == kw {
					return Verdict{Safe: false, Keyword: kw}
				}
			}
		}
	}
	return Verdict{Safe: true}
}
