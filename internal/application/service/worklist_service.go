package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"github.com/apdesk/apdesk/internal/domain/priority"
	"github.com/apdesk/apdesk/internal/domain/validation"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// WorklistItem is one record of the review worklist together with its
// validation verdict and sort rank.
type WorklistItem struct {
	Invoice    *entity.Invoice   `json:"invoice"`
	Rank       int               `json:"rank"`
	Validation validation.Result `json:"validation"`
	Summary    string            `json:"summary,omitempty"`
}

// CodingUpdate carries the coding fields of a record the user may edit.
// Nil pointers mean "leave unchanged".
type CodingUpdate struct {
	Team            *[]string      `json:"team,omitempty"`
	Project         *string        `json:"project,omitempty"`
	Task            *string        `json:"task,omitempty"`
	CostCenter      *string        `json:"costCenter,omitempty"`
	GLAccount       *string        `json:"glAccount,omitempty"`
	MultilineCoding *bool          `json:"multilineCoding,omitempty"`
	Lines           *[]entity.Line `json:"lines,omitempty"`
}

// WorklistService serves the prioritized review worklist and coding edits
type WorklistService interface {
	GetWorklist(ctx context.Context) ([]*WorklistItem, error)
	GetInvoice(ctx context.Context, id string) (*WorklistItem, error)
	UpdateCoding(ctx context.Context, id string, update CodingUpdate, actor string) (*WorklistItem, error)
	GetActivity(ctx context.Context, id string, limit int) ([]*entity.ActivityEntry, error)
}

type worklistServiceImpl struct {
	store        port.RecordStore
	activityRepo port.ActivityRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewWorklistService creates a new WorklistService
func NewWorklistService(
	store port.RecordStore,
	activityRepo port.ActivityRepository,
	txManager port.TransactionManager,
	logger Logger,
) WorklistService {
	return &worklistServiceImpl{
		store:        store,
		activityRepo: activityRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetWorklist fetches all records, validates them and returns them in
// review priority order.
func (s *worklistServiceImpl) GetWorklist(ctx context.Context) ([]*WorklistItem, error) {
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch worklist: %w", err)
	}

	priority.Sort(invoices)

	items := make([]*WorklistItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, toWorklistItem(inv))
	}

	s.logger.Info("Worklist assembled", "count", len(items))
	return items, nil
}

// GetInvoice fetches one record with its validation verdict.
func (s *worklistServiceImpl) GetInvoice(ctx context.Context, id string) (*WorklistItem, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}
	return toWorklistItem(inv), nil
}

// UpdateCoding patches the edited coding fields on the record and writes
// one audit entry per changed field.
func (s *worklistServiceImpl) UpdateCoding(ctx context.Context, id string, update CodingUpdate, actor string) (*WorklistItem, error) {
	current, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}

	fields, entries := codingChanges(current, update, actor)
	if len(fields) == 0 {
		return toWorklistItem(current), nil
	}

	updated, err := s.store.UpdateInvoice(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update coding on %s: %w", id, err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, entry := range entries {
			if err := s.activityRepo.Create(txCtx, entry); err != nil {
				return fmt.Errorf("record activity: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// The store update already happened; losing the audit entry is
		// worth surfacing but not worth failing the edit.
		s.logger.Error("Failed to record coding activity", "record_id", id, "error", err)
	}

	s.logger.Info("Coding updated", "record_id", id, "fields", len(fields), "actor", actor)
	return toWorklistItem(updated), nil
}

// GetActivity returns the newest audit entries for a record.
func (s *worklistServiceImpl) GetActivity(ctx context.Context, id string, limit int) ([]*entity.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.activityRepo.ListByRecordID(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch activity for %s: %w", id, err)
	}
	return entries, nil
}

func toWorklistItem(inv *entity.Invoice) *WorklistItem {
	return &WorklistItem{
		Invoice:    inv,
		Rank:       priority.Rank(inv),
		Validation: validation.Validate(inv),
		Summary:    validation.Summary(inv),
	}
}

// codingChanges diffs the update against the current record and returns the
// store patch plus matching audit entries.
func codingChanges(current *entity.Invoice, update CodingUpdate, actor string) (map[string]any, []*entity.ActivityEntry) {
	fields := make(map[string]any)
	var entries []*entity.ActivityEntry

	change := func(key, oldValue, newValue string, value any) {
		if oldValue == newValue {
			return
		}
		fields[key] = value
		entries = append(entries, &entity.ActivityEntry{
			RecordID:     current.ID,
			RecordNumber: current.InvoiceNumber,
			Field:        key,
			OldValue:     oldValue,
			NewValue:     newValue,
			Actor:        actor,
		})
	}

	if update.Team != nil {
		change("team", strings.Join(current.Team, ","), strings.Join(*update.Team, ","), *update.Team)
	}
	if update.Project != nil {
		change("project", current.Project, *update.Project, *update.Project)
	}
	if update.Task != nil {
		change("task", current.Task, *update.Task, *update.Task)
	}
	if update.CostCenter != nil {
		change("costCenter", current.CostCenter, *update.CostCenter, *update.CostCenter)
	}
	if update.GLAccount != nil {
		change("glAccount", current.GLAccount, *update.GLAccount, *update.GLAccount)
	}
	if update.MultilineCoding != nil {
		change("multilineCoding",
			strconv.FormatBool(current.MultilineCoding),
			strconv.FormatBool(*update.MultilineCoding),
			*update.MultilineCoding)
	}
	if update.Lines != nil {
		change("lines", describeLines(current.Lines), describeLines(*update.Lines), *update.Lines)
	}

	return fields, entries
}

func describeLines(lines []entity.Line) string {
	total := 0.0
	for _, l := range lines {
		total += l.Amount
	}
	return fmt.Sprintf("%d lines / %.2f", len(lines), total)
}
