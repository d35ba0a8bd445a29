package port

import "trf/internal/domain"

// ReportStore persists finished reports keyed by report ID.
type ReportStore interface {
	GetReport(id string) (*domain.Report, bool, error)

	PutReport(report *domain.Report) error

	DeleteReport(id string) error

	CountReports() (int, error)

	// ListReportIDs returns stored IDs in ascending order.
	ListReportIDs() ([]string, error)

	Close() error
}
