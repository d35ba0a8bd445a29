package rnnlm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// FileDigest returns the sha256 of the file's contents.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// digestMemo rehashes a file only when its size or modification time moves.
type digestMemo struct {
	mu      sync.Mutex
	size    int64
	modTime time.Time
	digest  string
}

func (m *digestMemo) get(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.digest != "" && info.Size() == m.size && info.ModTime().Equal(m.modTime) {
		return m.digest, nil
	}

	digest, err := FileDigest(path)
	if err != nil {
		return "", err
	}
	m.size, m.modTime, m.digest = info.Size(), info.ModTime(), digest
	return digest, nil
}

// Fingerprint covers the resolved binary, args, OOV token and model contents.
func (s *Scorer) Fingerprint() (string, error) {
	bin, err := exec.LookPath(s.binary)
	if err != nil {
		return "", fmt.Errorf("scorer binary %s: %w", s.binary, err)
	}
	binInfo, err := os.Stat(bin)
	if err != nil {
		return "", fmt.Errorf("scorer binary %s: %w", bin, err)
	}

	modelDigest := ""
	if s.model != "" {
		modelDigest, err = s.modelDigest.get(s.model)
		if err != nil {
			return "", fmt.Errorf("scorer model %s: %w", s.model, err)
		}
	}

	h := sha256.New()
	fmt.Fprintf(h, "rnnlm\x00%s\x00%d\x00%d\x00", bin, binInfo.Size(), binInfo.ModTime().UnixNano())
	fmt.Fprintf(h, "%s\x00%s\x00%s", strings.Join(s.args, "\x01"), s.oovToken, modelDigest)
	return hex.EncodeToString(h.Sum(nil)[:16]), nil
}
