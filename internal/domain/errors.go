package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrFormat            = errors.New("format error")
	ErrScorerUnavailable = errors.New("external scorer unavailable")
	ErrScorerTimeout     = errors.New("external scorer timeout")
	ErrAlignmentMismatch = errors.New("alignment mismatch")
	ErrInvalidMethod     = errors.New("invalid normalization method")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrEmptyVocabulary   = errors.New("vocabulary has no entries")
	ErrNoUnknownBucket   = errors.New("vocabulary has no unknown bucket")
)

// AlignmentError reports that the external scores cannot be matched to sentences by position.
type AlignmentError struct {
	Sentences int
	Scores    int
	Ordinal   int // first misplaced ordinal, -1 when the counts differ
	Detail    string
}

func (e *AlignmentError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("alignment mismatch: %s", e.Detail)
	}
	if e.Ordinal >= 0 {
		return fmt.Sprintf("alignment mismatch: score at position %d has a different ordinal", e.Ordinal)
	}
	return fmt.Sprintf("alignment mismatch: %d sentences, %d scores", e.Sentences, e.Scores)
}

func (e *AlignmentError) Unwrap() error { return ErrAlignmentMismatch }

// ScorerError describes a failed call into an external scorer.
type ScorerError struct {
	Scorer   string
	Timeout  bool
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ScorerError) Error() string {
	kind := "unavailable"
	if e.Timeout {
		kind = "timed out"
	}
	msg := fmt.Sprintf("scorer %s %s", e.Scorer, kind)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap exposes both the failure kind and the underlying cause to errors.Is.
func (e *ScorerError) Unwrap() []error {
	kind := ErrScorerUnavailable
	if e.Timeout {
		kind = ErrScorerTimeout
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}
