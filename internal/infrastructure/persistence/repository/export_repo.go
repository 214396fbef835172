package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"go.uber.org/zap"
)

// ExportRepository implements port.ExportRepository
type ExportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *sql.DB, logger *zap.Logger) port.ExportRepository {
	return &ExportRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an export batch
func (r *ExportRepository) Create(ctx context.Context, batch *entity.ExportBatch) error {
	query := `
		INSERT INTO export_batches (batch_key, file_path, record_count, total_amount)
		VALUES (?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		batch.BatchKey,
		batch.FilePath,
		batch.RecordCount,
		batch.TotalAmount,
	)
	if err != nil {
		r.logger.Error("Failed to create export batch", zap.String("batch_key", batch.BatchKey), zap.Error(err))
		return fmt.Errorf("failed to create export batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	batch.ID = id
	return nil
}

// List retrieves the newest export batches
func (r *ExportRepository) List(ctx context.Context, limit int) ([]*entity.ExportBatch, error) {
	query := `
		SELECT id, batch_key, file_path, record_count, total_amount, created_at
		FROM export_batches
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list export batches", zap.Error(err))
		return nil, fmt.Errorf("failed to list export batches: %w", err)
	}
	defer rows.Close()

	var batches []*entity.ExportBatch
	for rows.Next() {
		var b entity.ExportBatch
		err := rows.Scan(
			&b.ID,
			&b.BatchKey,
			&b.FilePath,
			&b.RecordCount,
			&b.TotalAmount,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export batch: %w", err)
		}
		batches = append(batches, &b)
	}

	return batches, rows.Err()
}

// Verify interface compliance
var _ port.ExportRepository = (*ExportRepository)(nil)
