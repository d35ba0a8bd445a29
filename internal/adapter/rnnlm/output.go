package rnnlm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"trf/internal/domain"
)

// ParseOutput reads one score per non-blank line. A line equal to oovToken marks
// an unscorable sentence. Any other non-numeric line is an alignment error: the
// line cannot be matched to a sentence, so it is never skipped.
func ParseOutput(r io.Reader, oovToken string) ([]domain.ExternalScore, error) {
	if oovToken == "" {
		oovToken = domain.DefaultOOVToken
	}

	var scores []domain.ExternalScore
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		score := domain.ExternalScore{Ordinal: len(scores)}
		if line != oovToken {
			v, err := strconv.ParseFloat(line, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &domain.AlignmentError{
					Ordinal: len(scores),
					Detail:  fmt.Sprintf("scorer output line %d %q is neither a finite score nor %q", lineNo, line, oovToken),
				}
			}
			score.Value = &v
		}
		scores = append(scores, score)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read scorer output: %w", err)
	}
	return scores, nil
}
