package port

import (
	"context"

	"trf/internal/domain"
)

// LanguageModel scores a whole text with an external sequence language model.
type LanguageModel interface {
	// ScoreText returns one score per non-blank line of text, in line order.
	// It is called once per text, never once per sentence. The text holds the
	// trimmed sentences joined by "\n", not the caller's original input.
	ScoreText(ctx context.Context, text string) ([]domain.ExternalScore, error)

	// Name identifies the scorer in logs and reports.
	Name() string

	// Fingerprint changes whenever the scores for the same text could change:
	// a rebuilt model or scores file, another binary, other args or OOV token.
	Fingerprint() (string, error)
}
