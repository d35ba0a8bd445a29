package rnnlm

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trf/config"
	"trf/internal/domain"
	"trf/internal/logging"
)

// fakeBinary writes an executable shell script standing in for rnnlm.
func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script scorer requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "fake-rnnlm")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func newTestScorer(t *testing.T, binary string, args ...string) *Scorer {
	t.Helper()
	cfg := config.DefaultConfig().Scorer
	cfg.Binary = binary
	cfg.Args = args
	s, err := NewScorer(cfg, logging.Discard())
	require.NoError(t, err)
	return s
}

func TestScorer_ParsesScoresAndOOV(t *testing.T) {
	bin := fakeBinary(t, `printf '%s\n' -12.5 OOV -3.25`)
	s := newTestScorer(t, bin, "{input}")

	scores, err := s.ScoreText(context.Background(), "a b\nc\nd e\n")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	require.NotNil(t, scores[0].Value)
	assert.Equal(t, -12.5, *scores[0].Value)
	assert.Nil(t, scores[1].Value)
	assert.False(t, scores[1].Scorable())
	assert.Equal(t, -3.25, *scores[2].Value)
	for i, sc := range scores {
		assert.Equal(t, i, sc.Ordinal)
	}
}

func TestScorer_ReceivesStagedTextAndCleansUp(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "seen")
	bin := fakeBinary(t, `echo "$2" > "`+marker+`"; while read -r line; do echo -1.0; done < "$2"`)
	s := newTestScorer(t, bin, "-test", "{input}")

	scores, err := s.ScoreText(context.Background(), "one\ntwo\n")
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	assertStagedRemoved(t, marker)
}

// assertStagedRemoved checks that the path the fake binary recorded in marker is gone.
func assertStagedRemoved(t *testing.T, marker string) {
	t.Helper()
	seen, err := os.ReadFile(marker)
	require.NoError(t, err)
	staged := strings.TrimSpace(string(seen))
	require.NotEmpty(t, staged)
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staged file %s should be removed", staged)
}

func TestScorer_NonZeroExit(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "seen")
	bin := fakeBinary(t, `echo "$1" > "`+marker+`"; echo "model is corrupt" >&2; exit 3`)
	s := newTestScorer(t, bin, "{input}")

	_, err := s.ScoreText(context.Background(), "a\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScorerUnavailable)
	assert.NotErrorIs(t, err, domain.ErrScorerTimeout)

	var serr *domain.ScorerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, serr.ExitCode)
	assert.Contains(t, serr.Stderr, "model is corrupt")
	assertStagedRemoved(t, marker)
}

func TestScorer_MissingBinary(t *testing.T) {
	s := newTestScorer(t, filepath.Join(t.TempDir(), "no-such-binary"), "{input}")

	_, err := s.ScoreText(context.Background(), "a\n")
	assert.ErrorIs(t, err, domain.ErrScorerUnavailable)
}

func TestScorer_Timeout(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "seen")
	bin := fakeBinary(t, `echo "$1" > "`+marker+`"; exec sleep 5`)
	s := newTestScorer(t, bin, "{input}")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.ScoreText(ctx, "a\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScorerTimeout)
	assert.NotErrorIs(t, err, domain.ErrScorerUnavailable)
	assert.Less(t, time.Since(start), 4*time.Second)
	assertStagedRemoved(t, marker)
}

func TestScorer_GarbageOutputIsAlignmentError(t *testing.T) {
	bin := fakeBinary(t, `printf '%s\n' -1.0 "test log probability: 12" -2.0`)
	s := newTestScorer(t, bin, "{input}")

	_, err := s.ScoreText(context.Background(), "a\nb\nc\n")
	assert.ErrorIs(t, err, domain.ErrAlignmentMismatch)
}

func TestNewScorer_MissingModel(t *testing.T) {
	cfg := config.DefaultConfig().Scorer
	cfg.Model = filepath.Join(t.TempDir(), "missing.rnnlm")

	_, err := NewScorer(cfg, logging.Discard())
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestExpandArgs(t *testing.T) {
	model := filepath.Join(t.TempDir(), "ja.rnnlm")
	require.NoError(t, os.WriteFile(model, []byte("x"), 0644))

	cfg := config.DefaultConfig().Scorer
	cfg.Model = model
	s, err := NewScorer(cfg, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"-rnnlm", model, "-test", "/tmp/in.txt"}, s.expandArgs("/tmp/in.txt"))
	assert.Equal(t, "rnnlm:"+model, s.Name())
}

func TestScorer_Fingerprint(t *testing.T) {
	bin := fakeBinary(t, `exit 0`)
	model := filepath.Join(t.TempDir(), "ja.rnnlm")
	require.NoError(t, os.WriteFile(model, []byte("weights-1"), 0644))

	cfg := config.DefaultConfig().Scorer
	cfg.Binary = bin
	cfg.Model = model
	s, err := NewScorer(cfg, logging.Discard())
	require.NoError(t, err)

	first, err := s.Fingerprint()
	require.NoError(t, err)
	again, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// rebuilt model at the same path, same size
	require.NoError(t, os.WriteFile(model, []byte("weights-2"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(model, future, future))
	rebuilt, err := s.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, rebuilt)

	cfg.OOVToken = "<oov>"
	other, err := NewScorer(cfg, logging.Discard())
	require.NoError(t, err)
	otherFP, err := other.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, rebuilt, otherFP)

	cfg.Args = []string{"-test", "{input}"}
	withArgs, err := NewScorer(cfg, logging.Discard())
	require.NoError(t, err)
	argsFP, err := withArgs.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, otherFP, argsFP)
}

func TestScorer_FingerprintMissingBinary(t *testing.T) {
	s := newTestScorer(t, filepath.Join(t.TempDir(), "no-such-binary"), "{input}")

	_, err := s.Fingerprint()
	assert.Error(t, err)
}
