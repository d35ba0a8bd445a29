package static

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"trf/internal/adapter/rnnlm"
	"trf/internal/domain"
)

// Scorer replays precomputed scores from a file in rnnlm output format.
// It ignores the text it is given; the file must hold one line per sentence.
type Scorer struct {
	path     string
	oovToken string
}

func NewScorer(path, oovToken string) (*Scorer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("scores file %s: %w", path, domain.ErrResourceNotFound)
	}
	return &Scorer{path: path, oovToken: oovToken}, nil
}

func (s *Scorer) Name() string {
	return "static:" + s.path
}

// Fingerprint covers the scores file contents and the OOV token.
func (s *Scorer) Fingerprint() (string, error) {
	digest, err := rnnlm.FileDigest(s.path)
	if err != nil {
		return "", fmt.Errorf("scores file %s: %w", s.path, err)
	}
	sum := sha256.Sum256([]byte("static\x00" + s.oovToken + "\x00" + digest))
	return hex.EncodeToString(sum[:16]), nil
}

func (s *Scorer) ScoreText(ctx context.Context, _ string) ([]domain.ExternalScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &domain.ScorerError{Scorer: s.Name(), Err: err}
	}
	defer f.Close()

	return rnnlm.ParseOutput(f, s.oovToken)
}
