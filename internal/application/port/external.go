package port

import (
	"context"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// RecordStore is the tabular store holding the invoice records of truth.
// This service reads records and issues partial updates; it deletes nothing.
type RecordStore interface {
	ListInvoices(ctx context.Context) ([]*entity.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateInvoice patches only the given fields, keyed by domain field
	// name; everything else on the record is left untouched.
	UpdateInvoice(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error)
	CreateInvoice(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	// FindByFileHash looks up the record holding a document with the given
	// content hash. Returns nil without error when no record matches.
	FindByFileHash(ctx context.Context, hash string) (*entity.Invoice, error)
}

// DocumentExtractor pulls structured invoice data out of a document file.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (*entity.ExtractedDocument, error)
}

// DocumentVault files processed documents away. Both calls return the final
// resting path of the file.
type DocumentVault interface {
	Archive(ctx context.Context, path string) (string, error)
	Quarantine(ctx context.Context, path string) (string, error)
}

// Notifier pushes review events to the reviewer channel. Implementations
// are fire-and-forget from the caller's perspective; failures are logged,
// never surfaced into the review verdict.
type Notifier interface {
	NotifyReviewer(ctx context.Context, subject, body string) error
}
