package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"github.com/apdesk/apdesk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

// ActivityRepository implements port.ActivityRepository
type ActivityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB, logger *zap.Logger) port.ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an activity entry
func (r *ActivityRepository) Create(ctx context.Context, entry *entity.ActivityEntry) error {
	query := `
		INSERT INTO activity_entries (
			record_id, record_number, field, old_value, new_value, actor, note
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.RecordID,
		entry.RecordNumber,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		entry.Actor,
		entry.Note,
	)
	if err != nil {
		r.logger.Error("Failed to create activity entry", zap.Error(err))
		return fmt.Errorf("failed to create activity entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByRecordID retrieves the newest entries for a record
func (r *ActivityRepository) ListByRecordID(ctx context.Context, recordID string, limit int) ([]*entity.ActivityEntry, error) {
	query := `
		SELECT id, record_id, record_number, field, old_value, new_value, actor, note, created_at
		FROM activity_entries
		WHERE record_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, recordID, limit)
	if err != nil {
		r.logger.Error("Failed to list activity entries", zap.String("record_id", recordID), zap.Error(err))
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ActivityEntry
	for rows.Next() {
		var e entity.ActivityEntry
		err := rows.Scan(
			&e.ID,
			&e.RecordID,
			&e.RecordNumber,
			&e.Field,
			&e.OldValue,
			&e.NewValue,
			&e.Actor,
			&e.Note,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.ActivityRepository = (*ActivityRepository)(nil)
