package retriever

import (
	"regexp"
	"strings"
)

// queryTokenRegex splits free text into word-like tokens: runs of word
// characters, optionally joined by '-' or '_'. Punctuation, including
// quote characters, is not part of any token and is dropped.
var queryTokenRegex = regexp.MustCompile(`\w+(?:[-_]\w+)*`)

// ftsMatchQuery turns free-form query text into an FTS5 MATCH
// expression: each token is double-quoted (so punctuation and FTS5
// operator keywords in the user's text are never interpreted as
// syntax) and OR'd together, matching any chunk containing at least one
// query token (§4.4's lexical channel).
func ftsMatchQuery(text string) string {
	tokens := queryTokenRegex.FindAllString(text, -1)
	if len(tokens) == 0 {
		return `""`
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}
