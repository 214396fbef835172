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
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ErrNothingToExport is returned when no approved records are waiting.
var ErrNothingToExport = errors.New("no approved records to export")

// ExportService collects approved records into an XLSX workbook for the
// accounting system and flips them to exported.
type ExportService interface {
	ExportApproved(ctx context.Context, actor string) (*entity.ExportBatch, error)
	ListBatches(ctx context.Context, limit int) ([]*entity.ExportBatch, error)
}

type exportServiceImpl struct {
	store        port.RecordStore
	exportRepo   port.ExportRepository
	activityRepo port.ActivityRepository
	txManager    port.TransactionManager
	exportDir    string
	logger       Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	store port.RecordStore,
	exportRepo port.ExportRepository,
	activityRepo port.ActivityRepository,
	txManager port.TransactionManager,
	exportDir string,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		store:        store,
		exportRepo:   exportRepo,
		activityRepo: activityRepo,
		txManager:    txManager,
		exportDir:    exportDir,
		logger:       logger,
	}
}

var exportHeader = []interface{}{
	"Record ID", "Invoice Number", "Vendor Name", "Vendor Code",
	"Invoice Date", "Due Date", "Currency", "Amount", "Description",
	"GL Account", "Cost Center", "Project", "Task", "Team",
}

// ExportApproved writes every approved record into a new workbook, records
// the batch and marks the records exported.
func (s *exportServiceImpl) ExportApproved(ctx context.Context, actor string) (*entity.ExportBatch, error) {
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	var approved []*entity.Invoice
	total := 0.0
	for _, inv := range invoices {
		if inv.Status == entity.StatusApproved {
			approved = append(approved, inv)
			total += inv.Amount
		}
	}
	if len(approved) == 0 {
		return nil, ErrNothingToExport
	}

	batchKey := uuid.New().String()
	filePath := filepath.Join(s.exportDir, fmt.Sprintf("export-%s-%s.xlsx",
		time.Now().Format("20060102"), batchKey[:8]))

	if err := s.writeWorkbook(filePath, approved); err != nil {
		return nil, err
	}

	batch := &entity.ExportBatch{
		BatchKey:    batchKey,
		FilePath:    filePath,
		RecordCount: len(approved),
		TotalAmount: total,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.exportRepo.Create(txCtx, batch)
	})
	if err != nil {
		return nil, fmt.Errorf("record batch: %w", err)
	}

	// The audit entry follows the successful status flip; a record stuck in
	// approved shows up again in the next batch without a phantom entry.
	for _, inv := range approved {
		if _, err := s.store.UpdateInvoice(ctx, inv.ID, map[string]any{"status": entity.StatusExported.String()}); err != nil {
			s.logger.Error("Failed to mark record exported", "record_id", inv.ID, "error", err)
			continue
		}
		entry := &entity.ActivityEntry{
			RecordID:     inv.ID,
			RecordNumber: inv.InvoiceNumber,
			Field:        "status",
			OldValue:     entity.StatusApproved.String(),
			NewValue:     entity.StatusExported.String(),
			Actor:        actor,
			Note:         "batch " + batchKey,
		}
		if err := s.activityRepo.Create(ctx, entry); err != nil {
			s.logger.Error("Failed to record export activity", "record_id", inv.ID, "error", err)
		}
	}

	s.logger.Info("Export batch written",
		"batch_key", batchKey,
		"file", filePath,
		"records", len(approved),
		"total", total)

	return batch, nil
}

// ListBatches returns the newest export batches.
func (s *exportServiceImpl) ListBatches(ctx context.Context, limit int) ([]*entity.ExportBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	batches, err := s.exportRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

func (s *exportServiceImpl) writeWorkbook(filePath string, invoices []*entity.Invoice) error {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rowIdx := 2
	for _, inv := range invoices {
		for _, row := range invoiceRows(inv) {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return fmt.Errorf("compute cell: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx, err)
			}
			rowIdx++
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// invoiceRows expands one record into workbook rows. Multi-line-coded
// records emit one row per line carrying the line's accounting assignment;
// everything else emits a single row with the header-level coding.
func invoiceRows(inv *entity.Invoice) [][]interface{} {
	row := func(amount float64, description, glAccount, costCenter, project string) []interface{} {
		return []interface{}{
			inv.ID,
			inv.InvoiceNumber,
			inv.VendorName,
			inv.VendorCode,
			formatDate(inv.InvoiceDate),
			formatDate(inv.DueDate),
			inv.Currency,
			amount,
			description,
			glAccount,
			costCenter,
			project,
			inv.Task,
			strings.Join(inv.Team, ", "),
		}
	}

	if !inv.MultilineCoding || len(inv.Lines) == 0 {
		return [][]interface{}{row(inv.Amount, "", inv.GLAccount, inv.CostCenter, inv.Project)}
	}

	rows := make([][]interface{}, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		rows = append(rows, row(l.Amount, l.Description, l.GLAccount, l.CostCenter, l.Project))
	}
	return rows
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
