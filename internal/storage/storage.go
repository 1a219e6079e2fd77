// Package storage persists analysis reports. Extracted text itself is never
// stored or reused; only the report and its provenance preview are kept.
package storage

import (
	"context"

	"github.com/hyperjump/credo/internal/models"
)

// Storage is the report history store.
type Storage interface {
	// SaveReport inserts a report record. CreatedAt is set on insert.
	SaveReport(ctx context.Context, rec *models.ReportRecord) error
	// GetReport returns a report by ID.
	GetReport(ctx context.Context, id string) (*models.ReportRecord, error)
	// ListReports returns the most recent reports, newest first.
	ListReports(ctx context.Context, limit int) ([]*models.ReportRecord, error)
	// CountReports returns the number of stored reports.
	CountReports(ctx context.Context) (int, error)
	// Close releases the underlying database.
	Close() error
}
