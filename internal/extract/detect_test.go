package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKindMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\nbody text\n"), 0o644))

	kind, err := DetectKind(path)
	require.NoError(t, err)
	assert.Equal(t, KindMarkdown, kind)
}

func TestDetectKindUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("not actually a zip"), 0o644))

	kind, err := DetectKind(path)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, kind)
}

func TestExtractUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02}, 0o644))

	_, err := Extract(path)
	require.Error(t, err)

	var unsupported *UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}
