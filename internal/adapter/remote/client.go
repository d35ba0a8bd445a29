package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"trf/internal/domain"
)

// Scorer calls a language model service over HTTP.
//
// Request:  POST <baseURL>/score {"text": "...", "oov_token": "OOV"}
// Response: {"model": "...", "scores": [-12.5, null, ...]}
type Scorer struct {
	apiKey   string
	baseURL  string
	oovToken string
	client   *http.Client
}

type scoreRequest struct {
	Text     string `json:"text"`
	OOVToken string `json:"oov_token,omitempty"`
}

type scoreResponse struct {
	Model  string     `json:"model"`
	Scores []*float64 `json:"scores"`
	Error  *apiError  `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewScorer creates a remote scorer. The API key is optional; when apiKeyEnv
// names a set variable it is sent as a bearer token.
func NewScorer(baseURL, apiKeyEnv, oovToken string) (*Scorer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("scorer base URL: %w", domain.ErrInvalidArgument)
	}
	var apiKey string
	if apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
	}

	return &Scorer{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		oovToken: oovToken,
		client:   &http.Client{Timeout: DefaultClientTimeout},
	}, nil
}

func (s *Scorer) Name() string {
	return "remote:" + s.baseURL
}

// Fingerprint covers the endpoint and the OOV token. A model swapped behind
// the same endpoint is not detected.
func (s *Scorer) Fingerprint() (string, error) {
	sum := sha256.Sum256([]byte("remote\x00" + s.baseURL + "\x00" + s.oovToken))
	return hex.EncodeToString(sum[:16]), nil
}

func (s *Scorer) ScoreText(ctx context.Context, text string) ([]domain.ExternalScore, error) {
	body, err := json.Marshal(scoreRequest{Text: text, OOVToken: s.oovToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ScorerError{
			Scorer: s.Name(),
			Err:    fmt.Errorf("API returned status %d: %s", resp.StatusCode, preview(data)),
		}
	}

	var sr scoreResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, &domain.ScorerError{
			Scorer: s.Name(),
			Err:    fmt.Errorf("failed to parse response (body: %s): %w", preview(data), err),
		}
	}
	if sr.Error != nil {
		return nil, &domain.ScorerError{Scorer: s.Name(), Err: fmt.Errorf("API error: %s", sr.Error.Message)}
	}

	scores := make([]domain.ExternalScore, len(sr.Scores))
	for i, v := range sr.Scores {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return nil, &domain.AlignmentError{Ordinal: i, Detail: fmt.Sprintf("score %d is not finite", i)}
		}
		scores[i] = domain.ExternalScore{Ordinal: i, Value: v}
	}
	return scores, nil
}

func (s *Scorer) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.ScorerError{Scorer: s.Name(), Timeout: true, Err: ctx.Err()}
	}
	if ctx.Err() != nil {
		return fmt.Errorf("scorer %s: %w", s.Name(), ctx.Err())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.ScorerError{Scorer: s.Name(), Timeout: true, Err: err}
	}
	return &domain.ScorerError{Scorer: s.Name(), Err: err}
}

func preview(body []byte) string {
	p := string(body)
	if len(p) > 200 {
		p = p[:200]
	}
	return p
}

// DefaultClientTimeout bounds a request when the caller's context has no deadline.
const DefaultClientTimeout = 10 * time.Minute

// WithClientTimeout sets an upper bound on every request.
func (s *Scorer) WithClientTimeout(d time.Duration) *Scorer {
	s.client.Timeout = d
	return s
}
