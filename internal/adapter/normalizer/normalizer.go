package normalizer

import (
	"fmt"
	"math"
	"strings"

	"trf/internal/domain"
)

const (
	// RelTolerance and AbsTolerance bound how close to zero a unigram score may be
	// before no fused score is produced.
	RelTolerance = 1e-5
	AbsTolerance = 1e-8
)

// ParseMethod converts a method name to a Method.
func ParseMethod(name string) (domain.Method, error) {
	m := domain.Method(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case domain.MethodDiv, domain.MethodSub, domain.MethodLen:
		return m, nil
	}
	return "", fmt.Errorf("%q: %w", name, domain.ErrInvalidMethod)
}

// IsClose is a symmetric closeness test:
// |a-b| <= max(RelTolerance*max(|a|,|b|), AbsTolerance).
func IsClose(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= math.Max(RelTolerance*scale, AbsTolerance)
}

// Normalize fuses an external score with a unigram score.
// It returns nil when external is nil or unigram is close to zero; such a
// sentence has no fused score but is not an error.
func Normalize(external *float64, unigram float64, length int, method domain.Method) (*float64, error) {
	fuse, err := formula(method)
	if err != nil {
		return nil, err
	}
	if external == nil || IsClose(unigram, 0) {
		return nil, nil
	}
	if method == domain.MethodLen && length <= 0 {
		return nil, nil
	}

	v := fuse(*external, unigram, float64(length))
	return &v, nil
}

// NormalizeAll computes every method for one sentence.
func NormalizeAll(external *float64, unigram float64, length int) (map[domain.Method]*float64, error) {
	out := make(map[domain.Method]*float64, len(domain.Methods))
	for _, m := range domain.Methods {
		v, err := Normalize(external, unigram, length, m)
		if err != nil {
			return nil, err
		}
		out[m] = v
	}
	return out, nil
}

type fusion func(external, unigram, length float64) float64

func formula(method domain.Method) (fusion, error) {
	switch method {
	case domain.MethodDiv:
		return func(e, u, _ float64) float64 { return -1 * e / u }, nil
	case domain.MethodSub:
		return func(e, u, _ float64) float64 { return e - u }, nil
	case domain.MethodLen:
		return func(e, u, l float64) float64 { return (e - u) / l }, nil
	}
	return nil, fmt.Errorf("%q: %w", string(method), domain.ErrInvalidMethod)
}
