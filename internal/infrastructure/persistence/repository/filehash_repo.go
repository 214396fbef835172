package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"go.uber.org/zap"
)

// FileHashRepository implements port.FileHashRepository
type FileHashRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFileHashRepository creates a new file hash repository
func NewFileHashRepository(db *sql.DB, logger *zap.Logger) port.FileHashRepository {
	return &FileHashRepository{
		db:     db,
		logger: logger,
	}
}

// Create indexes a content hash
func (r *FileHashRepository) Create(ctx context.Context, fh *entity.FileHash) error {
	query := `
		INSERT INTO file_hashes (hash, file_name, record_id)
		VALUES (?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		fh.Hash,
		fh.FileName,
		fh.RecordID,
	)
	if err != nil {
		r.logger.Error("Failed to create file hash", zap.String("hash", fh.Hash), zap.Error(err))
		return fmt.Errorf("failed to create file hash: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	fh.ID = id
	return nil
}

// GetByHash retrieves a hash entry, nil when unseen
func (r *FileHashRepository) GetByHash(ctx context.Context, hash string) (*entity.FileHash, error) {
	query := `
		SELECT id, hash, file_name, record_id, created_at
		FROM file_hashes
		WHERE hash = ?
	`

	var fh entity.FileHash
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, hash).Scan(
		&fh.ID,
		&fh.Hash,
		&fh.FileName,
		&fh.RecordID,
		&fh.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get file hash", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("failed to get file hash: %w", err)
	}

	return &fh, nil
}

// Verify interface compliance
var _ port.FileHashRepository = (*FileHashRepository)(nil)
