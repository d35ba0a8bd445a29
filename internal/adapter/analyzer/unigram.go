package analyzer

import (
	"fmt"
	"math"

	"trf/internal/domain"
)

// FrequencyTable is the read-only view of a vocabulary the unigram scorer needs.
type FrequencyTable interface {
	Frequency(word string) (int, bool)
	TotalWords() int
}

// UnigramScorer computes sentence log-probabilities under a word frequency baseline.
type UnigramScorer struct {
	table FrequencyTable
}

func NewUnigramScorer(table FrequencyTable) *UnigramScorer {
	return &UnigramScorer{table: table}
}

// Score returns the sum of ln(freq/total) over the sentence's words.
// An empty sentence scores exactly 0.
func (u *UnigramScorer) Score(s domain.Sentence) (float64, error) {
	total := u.table.TotalWords()
	if total <= 0 {
		return 0, domain.ErrEmptyVocabulary
	}
	n := float64(total)

	score := 0.0
	for _, word := range s.Words {
		freq, ok := u.table.Frequency(word)
		if !ok {
			return 0, fmt.Errorf("sentence %d word %q: %w", s.Ordinal, word, domain.ErrNoUnknownBucket)
		}
		if freq <= 0 {
			return 0, fmt.Errorf("sentence %d word %q has frequency %d: %w", s.Ordinal, word, freq, domain.ErrInvalidArgument)
		}
		score += math.Log(float64(freq) / n)
	}
	return score, nil
}

// ScoreAll scores sentences in order.
func (u *UnigramScorer) ScoreAll(sentences []domain.Sentence) ([]float64, error) {
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		score, err := u.Score(s)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}
