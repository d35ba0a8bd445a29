package domain

// UnknownWord is the reserved vocabulary key that absorbs rare and unseen words.
const UnknownWord = "<unk/>"

// DefaultOOVToken is the marker an external scorer prints for a sentence it cannot score.
const DefaultOOVToken = "OOV"

// Sentence is one trimmed, non-blank line of the input text.
type Sentence struct {
	Ordinal int
	Text    string
	Words   []string
	Length  int // rune count of Text
}

// ExternalScore is the external language model's log-likelihood for one sentence.
// A nil Value means the scorer flagged the sentence as unscorable.
type ExternalScore struct {
	Ordinal int
	Value   *float64
}

// Scorable reports whether the external scorer produced a value.
func (s ExternalScore) Scorable() bool {
	return s.Value != nil
}

// SentenceScore holds every score computed for one sentence.
type SentenceScore struct {
	Ordinal          int      `json:"ordinal"`
	Text             string   `json:"text"`
	Length           int      `json:"length"`
	ExternalScore    *float64 `json:"external_score"`
	UnigramScore     float64  `json:"unigram_score"`
	MeanUnigramScore *float64 `json:"mean_unigram_score"`
	NormalizedDiv    *float64 `json:"normalized_div"`
	NormalizedSub    *float64 `json:"normalized_sub"`
	NormalizedLen    *float64 `json:"normalized_len"`
}

// Normalized returns the fused score for the given method.
func (s SentenceScore) Normalized(method Method) *float64 {
	switch method {
	case MethodDiv:
		return s.NormalizedDiv
	case MethodSub:
		return s.NormalizedSub
	case MethodLen:
		return s.NormalizedLen
	}
	return nil
}

// Report is the acceptability result for one input text.
type Report struct {
	ID              string          `json:"id"`
	Scorer          string          `json:"scorer"`
	Sentences       []SentenceScore `json:"sentences"`
	WordFrequencies map[string]int  `json:"word_frequencies,omitempty"`
	TotalWords      int             `json:"total_words"`
	UnknownCount    int             `json:"unknown_count"`
}

func (r *Report) UnigramScores() []float64 {
	out := make([]float64, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.UnigramScore
	}
	return out
}

func (r *Report) MeanUnigramScores() []*float64 {
	out := make([]*float64, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.MeanUnigramScore
	}
	return out
}

func (r *Report) ExternalScores() []*float64 {
	out := make([]*float64, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.ExternalScore
	}
	return out
}

// NormalizedScores returns the per-sentence fused scores for method, in sentence order.
func (r *Report) NormalizedScores(method Method) []*float64 {
	out := make([]*float64, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.Normalized(method)
	}
	return out
}

// Method names a fusion formula for external and unigram scores.
type Method string

const (
	MethodDiv Method = "div"
	MethodSub Method = "sub"
	MethodLen Method = "len"
)

// Methods lists the supported fusion methods in report order.
var Methods = []Method{MethodDiv, MethodSub, MethodLen}
