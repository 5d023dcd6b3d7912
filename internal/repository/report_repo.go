package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"snagdef/internal/model"
)

// ReportRepository persists forensic reports for post-mortem analysis.
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Create(ctx context.Context, report model.ForensicReport) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO forensic_reports (id, details, reported_by, created_at)
		 VALUES ($1, $2, $3, $4)`,
		report.ID, report.Details, report.ReportedBy, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("create forensic report: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]model.ForensicReport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, details, reported_by, created_at
		 FROM forensic_reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list forensic reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.ForensicReport, 0)
	for rows.Next() {
		var report model.ForensicReport
		if err := rows.Scan(&report.ID, &report.Details, &report.ReportedBy, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan forensic report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
