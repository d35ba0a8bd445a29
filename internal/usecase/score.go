package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"trf/internal/adapter/analyzer"
	"trf/internal/adapter/normalizer"
	"trf/internal/domain"
	"trf/internal/port"
)

// reportNamespace scopes report IDs so they never collide with other UUIDv5 users.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trf:report"))

// Vocabulary is the frequency model a scoring run reads from.
type Vocabulary interface {
	analyzer.FrequencyTable
	Frequencies() map[string]int
	UnknownCount() int
	Fingerprint() string
}

// ScoreUseCase turns a text into an acceptability report.
type ScoreUseCase struct {
	vocab     Vocabulary
	unigram   *analyzer.UnigramScorer
	model     port.LanguageModel
	store     port.ReportStore
	delimiter string
	timeout   time.Duration
	logger    *slog.Logger
}

// ScoreOptions tunes a ScoreUseCase. Zero values fall back to defaults.
type ScoreOptions struct {
	Delimiter string
	Timeout   time.Duration
	// Store, when set, short-circuits texts already scored and keeps new reports.
	Store  port.ReportStore
	Logger *slog.Logger
}

func NewScoreUseCase(vocab Vocabulary, model port.LanguageModel, opts ScoreOptions) *ScoreUseCase {
	if opts.Delimiter == "" {
		opts.Delimiter = analyzer.DefaultDelimiter
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &ScoreUseCase{
		vocab:     vocab,
		unigram:   analyzer.NewUnigramScorer(vocab),
		model:     model,
		store:     opts.Store,
		delimiter: opts.Delimiter,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// ReportID derives the identifier of the report for text. It changes with
// the vocabulary, the scorer's fingerprint and the delimiter.
func (u *ScoreUseCase) ReportID(text string) (string, error) {
	fp, err := u.model.Fingerprint()
	if err != nil {
		return "", &domain.ScorerError{Scorer: u.model.Name(), Err: err}
	}
	name := strings.Join([]string{u.vocab.Fingerprint(), fp, u.delimiter, text}, "\x00")
	return uuid.NewSHA1(reportNamespace, []byte(name)).String(), nil
}

// Score runs the full pipeline for one text. Any failure aborts the run;
// a sentence whose fused scores cannot be computed carries nil values instead.
func (u *ScoreUseCase) Score(ctx context.Context, text string) (*domain.Report, error) {
	start := time.Now()
	id, err := u.ReportID(text)
	if err != nil {
		return nil, err
	}

	if u.store != nil {
		cached, ok, err := u.store.GetReport(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored report: %w", err)
		}
		if ok {
			u.logger.Debug("report served from store", "id", id)
			cached.WordFrequencies = u.vocab.Frequencies()
			return cached, nil
		}
	}

	sentences := analyzer.SplitSentences(text, u.delimiter)

	unigrams, err := u.unigram.ScoreAll(sentences)
	if err != nil {
		return nil, fmt.Errorf("unigram scoring: %w", err)
	}

	external, err := u.scoreExternal(ctx, sentences)
	if err != nil {
		return nil, err
	}
	if err := checkAlignment(sentences, external); err != nil {
		return nil, err
	}

	scores := make([]domain.SentenceScore, len(sentences))
	for i, s := range sentences {
		fused, err := normalizer.NormalizeAll(external[i].Value, unigrams[i], s.Length)
		if err != nil {
			return nil, err
		}
		mean := unigrams[i] / float64(len(sentences))
		scores[i] = domain.SentenceScore{
			Ordinal:          s.Ordinal,
			Text:             s.Text,
			Length:           s.Length,
			ExternalScore:    external[i].Value,
			UnigramScore:     unigrams[i],
			MeanUnigramScore: &mean,
			NormalizedDiv:    fused[domain.MethodDiv],
			NormalizedSub:    fused[domain.MethodSub],
			NormalizedLen:    fused[domain.MethodLen],
		}
	}

	report := &domain.Report{
		ID:              id,
		Scorer:          u.model.Name(),
		Sentences:       scores,
		WordFrequencies: u.vocab.Frequencies(),
		TotalWords:      u.vocab.TotalWords(),
		UnknownCount:    u.vocab.UnknownCount(),
	}

	if u.store != nil {
		if err := u.store.PutReport(report); err != nil {
			return nil, fmt.Errorf("failed to store report: %w", err)
		}
	}

	u.logger.Info("scored text",
		"id", id,
		"sentences", len(sentences),
		"scorer", u.model.Name(),
		"duration", time.Since(start),
	)
	return report, nil
}

// scoreExternal sends the sentences, one per line, to the language model in a single call.
func (u *ScoreUseCase) scoreExternal(ctx context.Context, sentences []domain.Sentence) ([]domain.ExternalScore, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	scores, err := u.model.ScoreText(ctx, analyzer.JoinSentences(sentences))
	if err == nil {
		return scores, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrScorerTimeout) {
		err = &domain.ScorerError{Scorer: u.model.Name(), Timeout: true, Err: err}
	}
	u.logger.Warn("external scorer failed", "scorer", u.model.Name(), "error", err)
	return nil, err
}

func checkAlignment(sentences []domain.Sentence, scores []domain.ExternalScore) error {
	if len(scores) != len(sentences) {
		return &domain.AlignmentError{Sentences: len(sentences), Scores: len(scores), Ordinal: -1}
	}
	for i, sc := range scores {
		if sc.Ordinal != sentences[i].Ordinal {
			return &domain.AlignmentError{Sentences: len(sentences), Scores: len(scores), Ordinal: i}
		}
	}
	return nil
}
