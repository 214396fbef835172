package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
	"github.com/apdesk/apdesk/internal/domain/validation"
)

// ErrInvalidTransition is returned when a review action does not apply to
// the record's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNoteRequired is returned when a rejection arrives without a note.
var ErrNoteRequired = errors.New("rejection requires a note")

// ValidationBlockedError reports the blocking issues preventing a record
// from being marked as reviewed.
type ValidationBlockedError struct {
	Issues []validation.Issue
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("record has %d blocking validation issues", len(e.Issues))
}

// ReviewService drives records through the review lifecycle:
// open -> pending -> approved or rejected.
type ReviewService interface {
	MarkReviewed(ctx context.Context, id, actor string) (*entity.Invoice, error)
	Approve(ctx context.Context, id, actor, note string) (*entity.Invoice, error)
	Reject(ctx context.Context, id, actor, note string) (*entity.Invoice, error)
}

type reviewServiceImpl struct {
	store        port.RecordStore
	activityRepo port.ActivityRepository
	notifier     port.Notifier
	logger       Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	store port.RecordStore,
	activityRepo port.ActivityRepository,
	notifier port.Notifier,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		store:        store,
		activityRepo: activityRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// MarkReviewed moves an open record to pending. Records with blocking
// validation issues are refused; the caller gets the issues back so the UI
// can show what is still missing.
func (s *reviewServiceImpl) MarkReviewed(ctx context.Context, id, actor string) (*entity.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}

	if inv.Status != entity.StatusOpen {
		return nil, fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidTransition, id, inv.Status, entity.StatusOpen)
	}

	res := validation.Validate(inv)
	if !res.CanMarkAsReviewed {
		s.logger.Info("Review refused by validation", "record_id", id, "issues", len(res.Issues))
		return nil, &ValidationBlockedError{Issues: res.Issues}
	}

	updated, err := s.transition(ctx, inv, entity.StatusPending, actor, "")
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "Invoice ready for approval",
		fmt.Sprintf("%s from %s was marked as reviewed by %s.", inv.InvoiceNumber, inv.VendorName, actor))

	return updated, nil
}

// Approve moves a pending record to approved.
func (s *reviewServiceImpl) Approve(ctx context.Context, id, actor, note string) (*entity.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}

	if inv.Status != entity.StatusPending {
		return nil, fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidTransition, id, inv.Status, entity.StatusPending)
	}

	updated, err := s.transition(ctx, inv, entity.StatusApproved, actor, note)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "Invoice approved",
		fmt.Sprintf("%s from %s was approved by %s.", inv.InvoiceNumber, inv.VendorName, actor))

	return updated, nil
}

// Reject moves a pending record back to rejected with a mandatory note
// explaining what to fix.
func (s *reviewServiceImpl) Reject(ctx context.Context, id, actor, note string) (*entity.Invoice, error) {
	if note == "" {
		return nil, ErrNoteRequired
	}

	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}

	if inv.Status != entity.StatusPending {
		return nil, fmt.Errorf("%w: %s is %s, expected %s", ErrInvalidTransition, id, inv.Status, entity.StatusPending)
	}

	updated, err := s.transition(ctx, inv, entity.StatusRejected, actor, note)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "Invoice rejected",
		fmt.Sprintf("%s from %s was rejected by %s: %s", inv.InvoiceNumber, inv.VendorName, actor, note))

	return updated, nil
}

func (s *reviewServiceImpl) transition(ctx context.Context, inv *entity.Invoice, to entity.Status, actor, note string) (*entity.Invoice, error) {
	updated, err := s.store.UpdateInvoice(ctx, inv.ID, map[string]any{"status": to.String()})
	if err != nil {
		return nil, fmt.Errorf("set status on %s: %w", inv.ID, err)
	}

	entry := &entity.ActivityEntry{
		RecordID:     inv.ID,
		RecordNumber: inv.InvoiceNumber,
		Field:        "status",
		OldValue:     inv.Status.String(),
		NewValue:     to.String(),
		Actor:        actor,
		Note:         note,
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record status activity", "record_id", inv.ID, "error", err)
	}

	s.logger.Info("Status changed",
		"record_id", inv.ID,
		"from", inv.Status.String(),
		"to", to.String(),
		"actor", actor)

	return updated, nil
}

// notify pushes a message to the reviewer channel. Failures are logged only;
// a broken messenger must never block a review verdict.
func (s *reviewServiceImpl) notify(ctx context.Context, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReviewer(ctx, subject, body); err != nil {
		s.logger.Error("Failed to notify reviewer", "subject", subject, "error", err)
	}
}
