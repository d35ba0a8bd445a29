package memstore

import (
	"encoding/json"
	"sort"
	"sync"

	"trf/internal/domain"
)

// MemoryStore keeps reports in process memory. Reports are stored as
// deep copies so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string][]byte),
	}
}

func (s *MemoryStore) PutReport(report *domain.Report) error {
	stored := *report
	stored.WordFrequencies = nil
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = data
	return nil
}

func (s *MemoryStore) GetReport(id string) (*domain.Report, bool, error) {
	s.mu.RLock()
	data, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (s *MemoryStore) DeleteReport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, id)
	return nil
}

func (s *MemoryStore) CountReports() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports), nil
}

func (s *MemoryStore) ListReportIDs() ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
