package port

import (
	"context"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// ActivityRepository persists the per-record audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *entity.ActivityEntry) error
	ListByRecordID(ctx context.Context, recordID string, limit int) ([]*entity.ActivityEntry, error)
}

// FileHashRepository indexes content hashes of ingested documents for
// duplicate detection.
type FileHashRepository interface {
	Create(ctx context.Context, fh *entity.FileHash) error
	GetByHash(ctx context.Context, hash string) (*entity.FileHash, error)
}

// ExportRepository records export batches.
type ExportRepository interface {
	Create(ctx context.Context, batch *entity.ExportBatch) error
	List(ctx context.Context, limit int) ([]*entity.ExportBatch, error)
}

// TransactionManager executes a function within a database transaction.
// Repositories called inside fn join the transaction through the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
