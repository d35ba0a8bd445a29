package rnnlm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"trf/config"
	"trf/internal/domain"
)

const (
	placeholderModel = "{model}"
	placeholderInput = "{input}"
	maxStderr        = 512
)

// Scorer runs an rnnlm-compatible binary over a staged copy of the text and
// reads one log-likelihood per line from its stdout.
type Scorer struct {
	binary   string
	model    string
	args     []string
	oovToken string
	logger   *slog.Logger

	modelDigest digestMemo
}

// NewScorer creates a subprocess scorer. The model file, when configured, must exist.
func NewScorer(cfg config.ScorerConfig, logger *slog.Logger) (*Scorer, error) {
	if cfg.Binary == "" {
		return nil, fmt.Errorf("scorer binary: %w", domain.ErrInvalidArgument)
	}
	if cfg.Model != "" {
		info, err := os.Stat(cfg.Model)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("scorer model %s: %w", cfg.Model, domain.ErrResourceNotFound)
		}
	}

	args := cfg.Args
	if len(args) == 0 {
		args = []string{"-rnnlm", placeholderModel, "-test", placeholderInput}
	}
	oov := cfg.OOVToken
	if oov == "" {
		oov = domain.DefaultOOVToken
	}

	return &Scorer{
		binary:   cfg.Binary,
		model:    cfg.Model,
		args:     args,
		oovToken: oov,
		logger:   logger,
	}, nil
}

func (s *Scorer) Name() string {
	return "rnnlm:" + s.model
}

// ScoreText stages text in a temporary file and runs the scorer once over it.
func (s *Scorer) ScoreText(ctx context.Context, text string) ([]domain.ExternalScore, error) {
	input, err := stageText(text)
	if err != nil {
		return nil, &domain.ScorerError{Scorer: s.Name(), Err: err}
	}
	defer os.Remove(input)

	cmd := exec.CommandContext(ctx, s.binary, s.expandArgs(input)...)
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	s.logger.Debug("scorer finished",
		"scorer", s.Name(),
		"elapsed", time.Since(start),
		"stdout_bytes", stdout.Len(),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &domain.ScorerError{Scorer: s.Name(), Timeout: true, Err: ctxErr}
		}
		return nil, fmt.Errorf("scorer %s: %w", s.Name(), ctxErr)
	}
	if runErr != nil {
		serr := &domain.ScorerError{Scorer: s.Name(), Stderr: truncate(stderr.String())}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			serr.ExitCode = exitErr.ExitCode()
		} else {
			serr.Err = runErr
		}
		return nil, serr
	}

	return ParseOutput(&stdout, s.oovToken)
}

func (s *Scorer) expandArgs(input string) []string {
	out := make([]string, len(s.args))
	for i, a := range s.args {
		a = strings.ReplaceAll(a, placeholderModel, s.model)
		out[i] = strings.ReplaceAll(a, placeholderInput, input)
	}
	return out
}

// stageText writes text to a temporary file and returns its path.
// The caller removes the file; on failure it is already removed.
func stageText(text string) (string, error) {
	f, err := os.CreateTemp("", "trf-text-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
