package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestNormalize_Len(t *testing.T) {
	got, err := Normalize(ptr(-10.0), -8.0, 4, domain.MethodLen)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, -0.5, *got)
}

func TestNormalize_Sub(t *testing.T) {
	got, err := Normalize(ptr(-10.0), -8.0, 4, domain.MethodSub)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, -2.0, *got)
}

func TestNormalize_Div(t *testing.T) {
	got, err := Normalize(ptr(-4.0), -8.0, 4, domain.MethodDiv)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0.5, *got)
}

func TestNormalize_AbsentExternal(t *testing.T) {
	for _, m := range domain.Methods {
		got, err := Normalize(nil, -8.0, 4, m)
		require.NoError(t, err)
		assert.Nil(t, got, "method %s", m)
	}
}

func TestNormalize_ZeroUnigram(t *testing.T) {
	for _, m := range domain.Methods {
		got, err := Normalize(ptr(-12.3), 0.0, 4, m)
		require.NoError(t, err)
		assert.Nil(t, got, "method %s", m)
	}
}

func TestNormalize_NearZeroUnigram(t *testing.T) {
	got, err := Normalize(ptr(-12.3), 1e-12, 4, domain.MethodDiv)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Normalize(ptr(-12.3), -1e-3, 4, domain.MethodDiv)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestNormalize_InvalidMethod(t *testing.T) {
	_, err := Normalize(ptr(-1), -2, 3, domain.Method("mul"))
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)

	// An unknown method is rejected even when no value would be produced.
	_, err = Normalize(nil, 0, 3, domain.Method(""))
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestNormalize_DivAndSubAgreeOnDirection(t *testing.T) {
	unigram := -20.0
	for _, external := range []float64{-19.0, -5.0, -0.5} {
		sub, err := Normalize(ptr(external), unigram, 10, domain.MethodSub)
		require.NoError(t, err)
		div, err := Normalize(ptr(external), unigram, 10, domain.MethodDiv)
		require.NoError(t, err)

		assert.Greater(t, *sub, 0.0)
		assert.Greater(t, *div, 0.0)
	}
}

func TestNormalizeAll(t *testing.T) {
	got, err := NormalizeAll(ptr(-10.0), -8.0, 4)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, -1.25, *got[domain.MethodDiv])
	assert.Equal(t, -2.0, *got[domain.MethodSub])
	assert.Equal(t, -0.5, *got[domain.MethodLen])
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" DIV ")
	require.NoError(t, err)
	assert.Equal(t, domain.MethodDiv, m)

	_, err = ParseMethod("avg")
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestIsClose(t *testing.T) {
	assert.True(t, IsClose(0, 0))
	assert.True(t, IsClose(1e-9, 0))
	assert.False(t, IsClose(1e-3, 0))
	assert.True(t, IsClose(100000, 100000.5))
	assert.True(t, IsClose(100000.5, 100000))
	assert.False(t, IsClose(1, 1.1))
}
