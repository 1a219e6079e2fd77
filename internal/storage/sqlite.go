package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/credo/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		channel TEXT NOT NULL,
		format TEXT,
		preview TEXT,
		credibility_score INTEGER NOT NULL,
		summary TEXT,
		report TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveReport inserts a report record.
func (s *SQLiteStorage) SaveReport(ctx context.Context, rec *models.ReportRecord) error {
	rec.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, channel, format, preview, credibility_score, summary, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Channel, rec.Format, rec.Preview, rec.CredibilityScore,
		rec.Summary, string(rec.Report), rec.CreatedAt,
	)
	return err
}

// GetReport returns a report by ID.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	var rec models.ReportRecord
	var report string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, channel, format, preview, credibility_score, summary, report, created_at
		 FROM reports WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Channel, &rec.Format, &rec.Preview,
		&rec.CredibilityScore, &rec.Summary, &report, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	rec.Report = []byte(report)
	return &rec, nil
}

// ListReports returns the most recent reports, newest first.
func (s *SQLiteStorage) ListReports(ctx context.Context, limit int) ([]*models.ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, format, preview, credibility_score, summary, report, created_at
		 FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.ReportRecord
	for rows.Next() {
		var rec models.ReportRecord
		var report string
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.Format, &rec.Preview,
			&rec.CredibilityScore, &rec.Summary, &report, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Report = []byte(report)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// CountReports returns the number of stored reports.
func (s *SQLiteStorage) CountReports(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
