package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
	"trf/internal/domain"
)

var (
	bucketReports   = []byte("reports")
	bucketSentences = []byte("sentences")
	bucketStats     = []byte("stats")
)

// BoltStore persists acceptability reports in a bbolt file.
// Report headers and sentence scores live in separate buckets so listing
// reports does not decode every sentence.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketReports, bucketSentences, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// reportMeta is the stored report header. Word frequencies are not stored;
// they belong to the vocabulary and are reattached by the caller.
type reportMeta struct {
	Scorer       string `json:"scorer"`
	TotalWords   int    `json:"total_words"`
	UnknownCount int    `json:"unknown_count"`
	Sentences    int    `json:"sentences"`
}

func (s *BoltStore) PutReport(report *domain.Report) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := reportMeta{
			Scorer:       report.Scorer,
			TotalWords:   report.TotalWords,
			UnknownCount: report.UnknownCount,
			Sentences:    len(report.Sentences),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketReports).Put([]byte(report.ID), data); err != nil {
			return err
		}

		sentences, err := json.Marshal(report.Sentences)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSentences).Put([]byte(report.ID), sentences)
	})
}

func (s *BoltStore) GetReport(id string) (*domain.Report, bool, error) {
	var report *domain.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketReports).Get([]byte(id))
		if data == nil {
			return nil
		}
		var meta reportMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("decode report %s: %w", id, err)
		}

		var sentences []domain.SentenceScore
		if raw := tx.Bucket(bucketSentences).Get([]byte(id)); raw != nil {
			if err := json.Unmarshal(raw, &sentences); err != nil {
				return fmt.Errorf("decode report %s sentences: %w", id, err)
			}
		}
		if len(sentences) != meta.Sentences {
			return fmt.Errorf("report %s: stored %d sentences, header says %d", id, len(sentences), meta.Sentences)
		}

		report = &domain.Report{
			ID:           id,
			Scorer:       meta.Scorer,
			Sentences:    sentences,
			TotalWords:   meta.TotalWords,
			UnknownCount: meta.UnknownCount,
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return report, report != nil, nil
}

func (s *BoltStore) DeleteReport(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSentences).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketReports).Delete([]byte(id))
	})
}

func (s *BoltStore) CountReports() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketReports).Stats().KeyN
		return nil
	})
	return n, err
}

// ListReportIDs returns stored report IDs in key order.
func (s *BoltStore) ListReportIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketReports).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
