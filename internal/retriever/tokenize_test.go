package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFtsMatchQuery(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
	}{
		{name: "single word", text: "hello", want: `"hello"`},
		{name: "multiple words", text: "hello world", want: `"hello" OR "world"`},
		{name: "hyphenated token kept whole", text: "well-known issue", want: `"well-known" OR "issue"`},
		{name: "quotes in text are dropped", text: `say "hi"`, want: `"say" OR "hi"`},
		{name: "empty text", text: "", want: `""`},
		{name: "punctuation only", text: "???", want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ftsMatchQuery(tt.text))
		})
	}
}
