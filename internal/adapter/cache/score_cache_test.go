package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/internal/domain"
)

func score(ordinal int, v float64) domain.ExternalScore {
	return domain.ExternalScore{Ordinal: ordinal, Value: &v}
}

func TestScoreCache_GetPut(t *testing.T) {
	c := NewScoreCache(10, time.Minute)

	_, ok := c.Get("s", "text")
	assert.False(t, ok)

	c.Put("s", "text", []domain.ExternalScore{score(0, -1), {Ordinal: 1}})
	got, ok := c.Get("s", "text")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, -1.0, *got[0].Value)
	assert.Nil(t, got[1].Value)

	_, ok = c.Get("other", "text")
	assert.False(t, ok, "keys include the scorer name")

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestScoreCache_ReturnsCopies(t *testing.T) {
	c := NewScoreCache(10, time.Minute)
	c.Put("s", "t", []domain.ExternalScore{score(0, -1)})

	got, _ := c.Get("s", "t")
	*got[0].Value = 99

	again, _ := c.Get("s", "t")
	assert.Equal(t, -1.0, *again[0].Value)
}

func TestScoreCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewScoreCache(2, time.Minute)
	c.Put("s", "a", nil)
	c.Put("s", "b", nil)
	c.Get("s", "a")
	c.Put("s", "c", nil)

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("s", "b")
	assert.False(t, ok)
	_, ok = c.Get("s", "a")
	assert.True(t, ok)
}

func TestScoreCache_Expiry(t *testing.T) {
	c := NewScoreCache(2, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Put("s", "a", nil)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok := c.Get("s", "a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

type countingModel struct {
	calls int
	err   error
	fp    string
}

func (m *countingModel) Name() string { return "counting" }

func (m *countingModel) Fingerprint() (string, error) { return m.fp, nil }

func (m *countingModel) ScoreText(context.Context, string) ([]domain.ExternalScore, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ExternalScore{score(0, -2)}, nil
}

func TestCachedLanguageModel(t *testing.T) {
	inner := &countingModel{}
	m := NewCachedLanguageModel(inner, NewScoreCache(4, time.Minute))

	for i := 0; i < 3; i++ {
		got, err := m.ScoreText(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, -2.0, *got[0].Value)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", m.Name())
}

func TestCachedLanguageModel_DoesNotCacheErrors(t *testing.T) {
	inner := &countingModel{err: errors.New("boom")}
	m := NewCachedLanguageModel(inner, NewScoreCache(4, time.Minute))

	_, err := m.ScoreText(context.Background(), "x")
	require.Error(t, err)
	_, err = m.ScoreText(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLanguageModel_FingerprintChangeMisses(t *testing.T) {
	inner := &countingModel{fp: "v1"}
	m := NewCachedLanguageModel(inner, NewScoreCache(4, time.Minute))

	_, err := m.ScoreText(context.Background(), "x")
	require.NoError(t, err)
	_, err = m.ScoreText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	inner.fp = "v2"
	_, err = m.ScoreText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
