package vocab

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"trf/internal/domain"
)

// DefaultThreshold is the count at or below which a word is folded into the unknown bucket.
const DefaultThreshold = 1

const scannerBufSize = 4 * 1024 * 1024

// Model is a word frequency table built from a "<word> <count>" vocabulary resource.
// It is immutable after construction and safe for concurrent readers.
type Model struct {
	frequencies  map[string]int
	unknownCount int
	hasUnknown   bool
	totalWords   int
	threshold    int
	fingerprint  string
}

// FormatError describes a vocabulary line that cannot be parsed as "<word> <count>".
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vocabulary line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *FormatError) Unwrap() error { return domain.ErrFormat }

// Load builds a Model from the vocabulary file at path.
// The path is checked before any parsing happens.
func Load(path string, threshold int) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vocabulary %s: %w", path, domain.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("stat vocabulary %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("vocabulary %s is a directory: %w", path, domain.ErrResourceNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f, threshold)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return m, nil
}

// Parse builds a Model from r. Every line counts toward TotalWords; lines whose
// count is at or below threshold each add one to the unknown bucket.
func Parse(r io.Reader, threshold int) (*Model, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold %d: %w", threshold, domain.ErrInvalidArgument)
	}

	m := &Model{
		frequencies: make(map[string]int),
		threshold:   threshold,
	}
	hash := sha256.New()
	fmt.Fprintf(hash, "threshold=%d\n", threshold)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), scannerBufSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		hash.Write([]byte(line))
		hash.Write([]byte{'\n'})

		m.totalWords++

		word, count, err := parseLine(line)
		if err != nil {
			err.Line = lineNo
			return nil, err
		}

		if count > threshold && word != domain.UnknownWord {
			m.frequencies[word] = count
			continue
		}
		m.unknownCount++
		m.hasUnknown = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	m.fingerprint = hex.EncodeToString(hash.Sum(nil)[:16])
	return m, nil
}

func parseLine(line string) (string, int, *FormatError) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return "", 0, &FormatError{Text: line, Reason: "no space separator"}
	}
	word := line[:idx]
	if word == "" {
		return "", 0, &FormatError{Text: line, Reason: "empty word"}
	}

	count, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
	if err != nil {
		return "", 0, &FormatError{Text: line, Reason: "count is not an integer"}
	}
	if count < 0 {
		return "", 0, &FormatError{Text: line, Reason: "negative count"}
	}
	return word, count, nil
}

// Lookup returns the stored count for word without unknown fallback.
func (m *Model) Lookup(word string) (int, bool) {
	if word == domain.UnknownWord {
		return m.unknownCount, m.hasUnknown
	}
	n, ok := m.frequencies[word]
	return n, ok
}

// Frequency returns the count for word, falling back to the unknown bucket.
// The second result is false when word is unknown and no bucket exists.
func (m *Model) Frequency(word string) (int, bool) {
	if n, ok := m.frequencies[word]; ok {
		return n, true
	}
	return m.unknownCount, m.hasUnknown
}

// Frequencies returns a copy of the table including the unknown bucket key.
func (m *Model) Frequencies() map[string]int {
	out := make(map[string]int, len(m.frequencies)+1)
	for w, n := range m.frequencies {
		out[w] = n
	}
	if m.hasUnknown {
		out[domain.UnknownWord] = m.unknownCount
	}
	return out
}

func (m *Model) UnknownCount() int { return m.unknownCount }

func (m *Model) HasUnknown() bool { return m.hasUnknown }

// TotalWords is the number of vocabulary lines read, not token occurrences.
func (m *Model) TotalWords() int { return m.totalWords }

func (m *Model) Threshold() int { return m.threshold }

// Size is the number of words kept with their own count.
func (m *Model) Size() int { return len(m.frequencies) }

// Fingerprint identifies the vocabulary content and threshold.
func (m *Model) Fingerprint() string { return m.fingerprint }

// Entry is a word with its count.
type Entry struct {
	Word  string
	Count int
}

// Top returns the n most frequent kept words, ties broken alphabetically.
func (m *Model) Top(n int) []Entry {
	entries := make([]Entry, 0, len(m.frequencies))
	for w, c := range m.frequencies {
		entries = append(entries, Entry{Word: w, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
