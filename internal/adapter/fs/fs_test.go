package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")
	writeFile(t, root, "sub/b.txt", "y")
	writeFile(t, root, "sub/c.md", "z")
	writeFile(t, root, ".trf/cache.txt", "skip")

	w := NewWalker([]string{"**/*.txt"}, []string{"**/.trf/**", ".trf/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
		assert.Positive(t, f.Size)
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestWalker_DefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "x")
	writeFile(t, root, "b.md", "y")

	files, err := NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestReader_PlainText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.txt", "first line\r\nsecond line\n")

	text, err := NewReader().ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", text)
}

func TestReader_Missing(t *testing.T) {
	_, err := NewReader().ReadText(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestReader_BrokenPDF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.pdf", "not a pdf")

	_, err := NewReader().ReadText(path)
	assert.Error(t, err)
}
