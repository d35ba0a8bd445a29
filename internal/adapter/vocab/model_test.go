package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/internal/domain"
)

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_JapaneseScenario(t *testing.T) {
	path := writeVocab(t, "猫 5\n食べる 5\nは 1\n")

	m, err := Load(path, 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"猫": 5, "食べる": 5, "<unk/>": 1}, m.Frequencies())
	assert.Equal(t, 3, m.TotalWords())
	assert.Equal(t, 1, m.UnknownCount())
	assert.Equal(t, 2, m.Size())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir(), 1)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestParse_UnknownBucketCountsLines(t *testing.T) {
	m, err := Parse(strings.NewReader("a 1\nb 0\nc 1\nd 7\n"), 1)
	require.NoError(t, err)

	assert.Equal(t, 4, m.TotalWords())
	assert.Equal(t, 3, m.UnknownCount(), "one unit per folded line, not the sum of counts")
	n, ok := m.Lookup("d")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = m.Lookup("a")
	assert.False(t, ok)
}

func TestParse_EveryLineClassifiedOnce(t *testing.T) {
	content := "x 10\ny 2\nz 1\nw 3\nv 0\n"
	m, err := Parse(strings.NewReader(content), 2)
	require.NoError(t, err)

	assert.Equal(t, m.TotalWords(), m.Size()+m.UnknownCount())
}

func TestParse_NoUnknownBucket(t *testing.T) {
	m, err := Parse(strings.NewReader("a 5\nb 9\n"), 1)
	require.NoError(t, err)

	assert.False(t, m.HasUnknown())
	_, ok := m.Frequency("zzz")
	assert.False(t, ok)
	assert.NotContains(t, m.Frequencies(), domain.UnknownWord)
}

func TestParse_ReservedKeyFoldsIntoBucket(t *testing.T) {
	m, err := Parse(strings.NewReader("<unk/> 500\na 5\n"), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, m.UnknownCount())
	assert.Equal(t, 1, m.Size())
}

func TestParse_FormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"no separator", "a 5\nbroken\n", 2},
		{"non integer", "a five\n", 1},
		{"negative", "a 5\nb -2\n", 2},
		{"empty word", " 4\n", 1},
		{"blank line", "a 5\n\nb 3\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFormat)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.line, fe.Line)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	m, err := Parse(strings.NewReader("a 5\r\nb 3\r\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 5, "b": 3}, m.Frequencies())
}

func TestParse_NegativeThreshold(t *testing.T) {
	_, err := Parse(strings.NewReader("a 5\n"), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFingerprint(t *testing.T) {
	a, err := Parse(strings.NewReader("a 5\nb 3\n"), 1)
	require.NoError(t, err)
	b, err := Parse(strings.NewReader("a 5\nb 3\n"), 1)
	require.NoError(t, err)
	c, err := Parse(strings.NewReader("a 5\nb 3\n"), 2)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestTop(t *testing.T) {
	m, err := Parse(strings.NewReader("b 5\na 5\nc 9\nd 2\n"), 1)
	require.NoError(t, err)

	top := m.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, []Entry{{"c", 9}, {"a", 5}, {"b", 5}}, top)
}
