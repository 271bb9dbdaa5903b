package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello study notes"), 0o644))

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello study notes", docs[0].Content)
	assert.Equal(t, "notes.txt", docs[0].Metadata["source"])
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50}, 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestLoad_InvalidPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a real pdf"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
