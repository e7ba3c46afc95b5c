package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONLSkipsMalformedLinesAndContinues(t *testing.T) {
	input := strings.Join([]string{
		`{"source_uri": "file://a", "chunks": [{"text": "hello"}]}`,
		`not json at all`,
		`{"chunks": [{"text": "missing source_uri"}]}`,
		`{"source_uri": "file://b", "chunks": [{"text": "world"}]}`,
	}, "\n")

	var decoded []Record
	var skipped []error

	err := DecodeJSONL(strings.NewReader(input),
		func(e error) { skipped = append(skipped, e) },
		func(r Record) error {
			decoded = append(decoded, r)
			return nil
		},
	)

	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "file://a", decoded[0].SourceURI)
	assert.Equal(t, "file://b", decoded[1].SourceURI)
	assert.Len(t, skipped, 2)
}

func TestDecodeJSONLSkipsBlankLines(t *testing.T) {
	input := "\n\n{\"source_uri\": \"file://a\"}\n\n"

	var decoded []Record
	err := DecodeJSONL(strings.NewReader(input), nil, func(r Record) error {
		decoded = append(decoded, r)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, decoded, 1)
}

func TestDecodeJSONLPropagatesCallbackError(t *testing.T) {
	input := `{"source_uri": "file://a"}`
	boom := assert.AnError

	err := DecodeJSONL(strings.NewReader(input), nil, func(r Record) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestRecordValidate(t *testing.T) {
	assert.Error(t, Record{}.Validate())
	assert.NoError(t, Record{SourceURI: "file://a"}.Validate())
}
