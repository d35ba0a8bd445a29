package sqlstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"trf/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    scorer TEXT NOT NULL,
    total_words INTEGER NOT NULL,
    unknown_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sentence_scores (
    report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (report_id, ordinal)
);
`

// SQLiteStore persists reports in SQLite, one row per sentence so the
// scores can also be queried directly with SQL.
type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PutReport(report *domain.Report) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM sentence_scores WHERE report_id = ?`, report.ID); err != nil {
		return err
	}
	if _, err = tx.Exec(
		`INSERT OR REPLACE INTO reports (id, scorer, total_words, unknown_count) VALUES (?, ?, ?, ?)`,
		report.ID, report.Scorer, report.TotalWords, report.UnknownCount,
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO sentence_scores (report_id, ordinal, body) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sc := range report.Sentences {
		body, mErr := json.Marshal(sc)
		if mErr != nil {
			err = mErr
			return err
		}
		if _, err = stmt.Exec(report.ID, sc.Ordinal, string(body)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetReport(id string) (*domain.Report, bool, error) {
	report := &domain.Report{ID: id}
	err := s.db.QueryRow(
		`SELECT scorer, total_words, unknown_count FROM reports WHERE id = ?`, id,
	).Scan(&report.Scorer, &report.TotalWords, &report.UnknownCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.Query(`SELECT body FROM sentence_scores WHERE report_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, false, err
		}
		var sc domain.SentenceScore
		if err := json.Unmarshal([]byte(body), &sc); err != nil {
			return nil, false, fmt.Errorf("decode report %s: %w", id, err)
		}
		report.Sentences = append(report.Sentences, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return report, true, nil
}

func (s *SQLiteStore) DeleteReport(id string) error {
	_, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) CountReports() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) ListReportIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM reports ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
