package service

import (
	"context"
	"errors"
	"testing"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

func TestMarkReviewedTransitionsToPending(t *testing.T) {
	inv := reviewableInvoice("rec1")
	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
		updateFunc: func(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
			updated := *inv
			updated.Status = entity.StatusPending
			return &updated, nil
		},
	}
	activity := &mockActivityRepo{}
	notifier := &mockNotifier{}

	svc := NewReviewService(store, activity, notifier, testLogger{})

	updated, err := svc.MarkReviewed(context.Background(), "rec1", "dana")
	if err != nil {
		t.Fatalf("MarkReviewed failed: %v", err)
	}
	if updated.Status != entity.StatusPending {
		t.Errorf("expected status pending, got %s", updated.Status)
	}

	if len(store.updates) != 1 {
		t.Fatalf("expected 1 store update, got %d", len(store.updates))
	}
	if store.updates[0]["status"] != "pending" {
		t.Errorf("expected status patch, got %v", store.updates[0])
	}

	if len(activity.entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(activity.entries))
	}
	entry := activity.entries[0]
	if entry.Field != "status" || entry.OldValue != "open" || entry.NewValue != "pending" {
		t.Errorf("unexpected activity entry: %+v", entry)
	}
	if entry.Actor != "dana" {
		t.Errorf("expected actor dana, got %s", entry.Actor)
	}

	if len(notifier.subjects) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.subjects))
	}
}

func TestMarkReviewedRefusedWhileFieldsMissing(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.VendorCode = ""
	inv.Team = nil

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
	}

	svc := NewReviewService(store, &mockActivityRepo{}, &mockNotifier{}, testLogger{})

	_, err := svc.MarkReviewed(context.Background(), "rec1", "dana")

	var blocked *ValidationBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ValidationBlockedError, got %v", err)
	}
	if len(blocked.Issues) != 2 {
		t.Errorf("expected 2 blocking issues, got %d", len(blocked.Issues))
	}
	if len(store.updates) != 0 {
		t.Errorf("record must not be updated when validation blocks")
	}
}

func TestMarkReviewedRefusedByServerMessage(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.MissingFieldsMessage = "Missing: Vendor code"

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
	}

	svc := NewReviewService(store, &mockActivityRepo{}, &mockNotifier{}, testLogger{})

	_, err := svc.MarkReviewed(context.Background(), "rec1", "dana")

	var blocked *ValidationBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected ValidationBlockedError, got %v", err)
	}
	if len(blocked.Issues) != 1 {
		t.Errorf("server message must yield exactly one issue, got %d", len(blocked.Issues))
	}
}

func TestMarkReviewedRequiresOpenStatus(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.Status = entity.StatusPending

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
	}

	svc := NewReviewService(store, &mockActivityRepo{}, &mockNotifier{}, testLogger{})

	_, err := svc.MarkReviewed(context.Background(), "rec1", "dana")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApproveRequiresPendingStatus(t *testing.T) {
	inv := reviewableInvoice("rec1")

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
	}

	svc := NewReviewService(store, &mockActivityRepo{}, &mockNotifier{}, testLogger{})

	_, err := svc.Approve(context.Background(), "rec1", "dana", "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApproveTransitionsToApproved(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.Status = entity.StatusPending

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
		updateFunc: func(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
			updated := *inv
			updated.Status = entity.StatusApproved
			return &updated, nil
		},
	}
	activity := &mockActivityRepo{}
	notifier := &mockNotifier{}

	svc := NewReviewService(store, activity, notifier, testLogger{})

	updated, err := svc.Approve(context.Background(), "rec1", "dana", "looks good")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if updated.Status != entity.StatusApproved {
		t.Errorf("expected status approved, got %s", updated.Status)
	}
	if len(activity.entries) != 1 || activity.entries[0].Note != "looks good" {
		t.Errorf("expected activity entry with note, got %+v", activity.entries)
	}
	if len(notifier.subjects) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.subjects))
	}
}

func TestRejectRequiresNote(t *testing.T) {
	svc := NewReviewService(&mockRecordStore{}, &mockActivityRepo{}, &mockNotifier{}, testLogger{})

	_, err := svc.Reject(context.Background(), "rec1", "dana", "")
	if !errors.Is(err, ErrNoteRequired) {
		t.Fatalf("expected ErrNoteRequired, got %v", err)
	}
}

func TestRejectRecordsNote(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.Status = entity.StatusPending

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
		updateFunc: func(ctx context.Context, id string, fields map[string]any) (*entity.Invoice, error) {
			updated := *inv
			updated.Status = entity.StatusRejected
			return &updated, nil
		},
	}
	activity := &mockActivityRepo{}

	svc := NewReviewService(store, activity, &mockNotifier{}, testLogger{})

	updated, err := svc.Reject(context.Background(), "rec1", "dana", "wrong cost center")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if updated.Status != entity.StatusRejected {
		t.Errorf("expected status rejected, got %s", updated.Status)
	}
	if len(activity.entries) != 1 || activity.entries[0].Note != "wrong cost center" {
		t.Errorf("expected activity entry with note, got %+v", activity.entries)
	}
}

func TestNotifierFailureDoesNotFailVerdict(t *testing.T) {
	inv := reviewableInvoice("rec1")
	inv.Status = entity.StatusPending

	store := &mockRecordStore{
		getFunc: func(ctx context.Context, id string) (*entity.Invoice, error) {
			return inv, nil
		},
	}
	notifier := &mockNotifier{err: errors.New("channel down")}

	svc := NewReviewService(store, &mockActivityRepo{}, notifier, testLogger{})

	if _, err := svc.Approve(context.Background(), "rec1", "dana", ""); err != nil {
		t.Fatalf("Approve must succeed despite notifier failure, got %v", err)
	}
}
