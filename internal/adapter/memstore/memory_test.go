package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	v := -3.0
	report := &domain.Report{
		ID:              "r",
		Scorer:          "s",
		Sentences:       []domain.SentenceScore{{Text: "a", ExternalScore: &v, UnigramScore: -1}},
		WordFrequencies: map[string]int{"a": 2},
		TotalWords:      2,
	}
	require.NoError(t, st.PutReport(report))

	// mutating the original must not leak into the store
	report.Sentences[0].Text = "changed"

	got, ok, err := st.GetReport("r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.Sentences[0].Text)
	assert.Equal(t, -3.0, *got.Sentences[0].ExternalScore)
	assert.Nil(t, got.WordFrequencies)

	require.NoError(t, st.PutReport(&domain.Report{ID: "a"}))
	n, _ := st.CountReports()
	assert.Equal(t, 2, n)
	ids, err := st.ListReportIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "r"}, ids)

	require.NoError(t, st.DeleteReport("r"))
	_, ok, err = st.GetReport("r")
	require.NoError(t, err)
	assert.False(t, ok)
}
