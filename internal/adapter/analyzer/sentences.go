package analyzer

import (
	"strings"
	"unicode/utf8"

	"trf/internal/domain"
)

// DefaultDelimiter separates sentences when none is configured.
const DefaultDelimiter = "\n"

// SplitSentences splits text on delimiter, trims each piece and drops blank ones.
// Ordinals follow input order; words are whitespace-delimited tokens.
func SplitSentences(text, delimiter string) []domain.Sentence {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	parts := strings.Split(text, delimiter)
	sentences := make([]domain.Sentence, 0, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		sentences = append(sentences, domain.Sentence{
			Ordinal: len(sentences),
			Text:    s,
			Words:   strings.Fields(s),
			Length:  utf8.RuneCountInString(s),
		})
	}
	return sentences
}

// JoinSentences rebuilds a newline-delimited text from sentences, the form the
// external scorer receives when the input used a different delimiter.
func JoinSentences(sentences []domain.Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString(s.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
