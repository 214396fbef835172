package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
)

// ErrDuplicateDocument is returned when an inbox file matches a previously
// ingested document.
var ErrDuplicateDocument = errors.New("duplicate document")

// IngestService turns inbox documents into open store records: hash and
// dedupe, extract, create the record, then archive the file.
type IngestService interface {
	ProcessFile(ctx context.Context, path string) (*entity.Invoice, error)
	// ScanInbox processes every supported document in the inbox directory
	// and returns how many records were created.
	ScanInbox(ctx context.Context) (int, error)
}

type ingestServiceImpl struct {
	dedupe    DedupeService
	extractor port.DocumentExtractor
	store     port.RecordStore
	vault     port.DocumentVault
	notifier  port.Notifier
	inboxDir  string
	logger    Logger
}

// NewIngestService creates a new IngestService. notifier may be nil.
func NewIngestService(
	dedupe DedupeService,
	extractor port.DocumentExtractor,
	store port.RecordStore,
	vault port.DocumentVault,
	notifier port.Notifier,
	inboxDir string,
	logger Logger,
) IngestService {
	return &ingestServiceImpl{
		dedupe:    dedupe,
		extractor: extractor,
		store:     store,
		vault:     vault,
		notifier:  notifier,
		inboxDir:  inboxDir,
		logger:    logger,
	}
}

func (s *ingestServiceImpl) ProcessFile(ctx context.Context, path string) (*entity.Invoice, error) {
	fileName := filepath.Base(path)
	s.logger.Info("Ingesting document", "file", fileName)

	hash, dup, err := s.dedupe.CheckFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dedupe check for %s: %w", fileName, err)
	}
	if dup.IsDuplicate {
		if _, moveErr := s.vault.Quarantine(ctx, path); moveErr != nil {
			s.logger.Error("Failed to quarantine duplicate", "file", fileName, "error", moveErr)
		}
		return nil, fmt.Errorf("%w: %s already ingested as record %s", ErrDuplicateDocument, fileName, dup.RecordID)
	}

	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		if _, moveErr := s.vault.Quarantine(ctx, path); moveErr != nil {
			s.logger.Error("Failed to quarantine document", "file", fileName, "error", moveErr)
		}
		s.notifyFailure(ctx, fileName, err)
		return nil, fmt.Errorf("extract %s: %w", fileName, err)
	}

	inv := invoiceFromDocument(doc, hash)

	created, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("create record for %s: %w", fileName, err)
	}

	if err := s.dedupe.Register(ctx, hash, fileName, created.ID); err != nil {
		// The record exists; a missing hash entry only risks a duplicate
		// record later.
		s.logger.Error("Failed to register document hash", "file", fileName, "error", err)
	}

	if _, err := s.vault.Archive(ctx, path); err != nil {
		s.logger.Error("Failed to archive document", "file", fileName, "error", err)
	}

	s.logger.Info("Document ingested",
		"file", fileName,
		"record_id", created.ID,
		"invoice_number", created.InvoiceNumber)

	return created, nil
}

func (s *ingestServiceImpl) ScanInbox(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !supportedDocument(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		_, err := s.ProcessFile(ctx, filepath.Join(s.inboxDir, entry.Name()))
		if err != nil {
			if errors.Is(err, ErrDuplicateDocument) {
				s.logger.Info("Skipped duplicate", "file", entry.Name())
			} else {
				s.logger.Error("Failed to ingest document", "file", entry.Name(), "error", err)
			}
			continue
		}
		processed++
	}

	return processed, nil
}

func (s *ingestServiceImpl) notifyFailure(ctx context.Context, fileName string, cause error) {
	if s.notifier == nil {
		return
	}
	body := fmt.Sprintf("Document %s could not be processed and was quarantined: %v", fileName, cause)
	if err := s.notifier.NotifyReviewer(ctx, "Ingest failure", body); err != nil {
		s.logger.Error("Failed to notify reviewer", "file", fileName, "error", err)
	}
}

func supportedDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// invoiceFromDocument builds a fresh open record from extracted fields.
func invoiceFromDocument(doc *entity.ExtractedDocument, hash string) *entity.Invoice {
	inv := &entity.Invoice{
		InvoiceNumber:   doc.InvoiceNumber,
		VendorName:      doc.VendorName,
		VendorCode:      doc.VendorCode,
		Amount:          doc.TotalAmount,
		Currency:        doc.Currency,
		Status:          entity.StatusOpen,
		MultilineCoding: len(doc.Items) > 1,
		FileHash:        hash,
	}

	inv.InvoiceDate = parseDocumentDate(doc.InvoiceDate)
	inv.DueDate = parseDocumentDate(doc.DueDate)

	for _, item := range doc.Items {
		inv.Lines = append(inv.Lines, entity.Line{
			Description: item.Description,
			Amount:      item.Amount,
		})
	}

	return inv
}

func parseDocumentDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
