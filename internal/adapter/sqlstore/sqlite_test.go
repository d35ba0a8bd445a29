package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestSQLiteStore(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "reports.sqlite"))
	require.NoError(t, err)
	defer st.Close()

	report := &domain.Report{
		ID:     "r1",
		Scorer: "rnnlm:/m",
		Sentences: []domain.SentenceScore{
			{Ordinal: 0, Text: "a b", Length: 3, ExternalScore: f(-5), UnigramScore: -4, MeanUnigramScore: f(-2), NormalizedDiv: f(-1.25), NormalizedSub: f(-1), NormalizedLen: f(-1.0 / 3.0)},
			{Ordinal: 1, Text: "c", Length: 1, UnigramScore: 0},
		},
		TotalWords:   10,
		UnknownCount: 4,
	}
	require.NoError(t, st.PutReport(report))
	// storing the same ID again replaces it
	require.NoError(t, st.PutReport(report))

	got, ok, err := st.GetReport("r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report, got)

	n, err := st.CountReports()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err := st.ListReportIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	require.NoError(t, st.DeleteReport("r1"))
	_, ok, err = st.GetReport("r1")
	require.NoError(t, err)
	assert.False(t, ok)
}
