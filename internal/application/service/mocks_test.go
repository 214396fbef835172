package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// Mock ports

type mockRecordStore struct {
	listFunc       func(ctx context.Context) ([]*entity.Invoice, error)
	getFunc        func(ctx context.Context, id string) (*entity.Invoice, error)
	updateFunc     func(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error)
	createFunc     func(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	findByHashFunc func(ctx context.Context, hash string) (*entity.Invoice, error)

	updates []map[string]any
}

func (m *mockRecordStore) ListInvoices(ctx context.Context) ([]*entity.Invoice, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockRecordStore) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockRecordStore) UpdateInvoice(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
	m.updates = append(m.updates, fields)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, fields)
	}
	return &entity.Invoice{ID: id}, nil
}

func (m *mockRecordStore) FindByFileHash(ctx context.Context, hash string) (*entity.Invoice, error) {
	if m.findByHashFunc != nil {
		return m.findByHashFunc(ctx, hash)
	}
	return nil, nil
}

func (m *mockRecordStore) CreateInvoice(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, inv)
	}
	created := *inv
	created.ID = "recNew"
	return &created, nil
}

type mockActivityRepo struct {
	createFunc func(ctx context.Context, entry *entity.ActivityEntry) error
	listFunc   func(ctx context.Context, recordID string, limit int) ([]*entity.ActivityEntry, error)

	entries []*entity.ActivityEntry
}

func (m *mockActivityRepo) Create(ctx context.Context, entry *entity.ActivityEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockActivityRepo) ListByRecordID(ctx context.Context, recordID string, limit int) ([]*entity.ActivityEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, recordID, limit)
	}
	return nil, nil
}

type mockFileHashRepo struct {
	getByHashFunc func(ctx context.Context, hash string) (*entity.FileHash, error)

	created []*entity.FileHash
}

func (m *mockFileHashRepo) Create(ctx context.Context, fh *entity.FileHash) error {
	m.created = append(m.created, fh)
	return nil
}

func (m *mockFileHashRepo) GetByHash(ctx context.Context, hash string) (*entity.FileHash, error) {
	if m.getByHashFunc != nil {
		return m.getByHashFunc(ctx, hash)
	}
	return nil, nil
}

type mockExportRepo struct {
	created []*entity.ExportBatch
}

func (m *mockExportRepo) Create(ctx context.Context, batch *entity.ExportBatch) error {
	batch.ID = int64(len(m.created) + 1)
	m.created = append(m.created, batch)
	return nil
}

func (m *mockExportRepo) List(ctx context.Context, limit int) ([]*entity.ExportBatch, error) {
	return m.created, nil
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, path string) (*entity.ExtractedDocument, error)
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (*entity.ExtractedDocument, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, path)
	}
	return &entity.ExtractedDocument{}, nil
}

type mockNotifier struct {
	err      error
	subjects []string
}

func (m *mockNotifier) NotifyReviewer(ctx context.Context, subject, body string) error {
	m.subjects = append(m.subjects, subject)
	return m.err
}

type fsVault struct {
	archiveDir    string
	quarantineDir string
}

func (v *fsVault) Archive(ctx context.Context, path string) (string, error) {
	return v.move(path, v.archiveDir)
}

func (v *fsVault) Quarantine(ctx context.Context, path string) (string, error) {
	return v.move(path, v.quarantineDir)
}

func (v *fsVault) move(path, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, filepath.Base(path))
	return dest, os.Rename(path, dest)
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}

// reviewableInvoice returns an open record passing every validation check.
func reviewableInvoice(id string) *entity.Invoice {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:            id,
		InvoiceNumber: "INV-2026-001",
		VendorName:    "Acme GmbH",
		VendorCode:    "ACME01",
		InvoiceDate:   &date,
		Amount:        100,
		Currency:      "EUR",
		Status:        entity.StatusOpen,
		Team:          []string{"recTeamA"},
	}
}
