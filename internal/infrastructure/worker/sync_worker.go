package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apdesk/apdesk/internal/application/service"
	"go.uber.org/zap"
)

// SyncWorker periodically re-fetches the worklist from the store. It keeps
// the circuit breaker state warm and logs how much of the list is blocked,
// so drift in the store's validation formula shows up in the logs before a
// user hits it.
type SyncWorker struct {
	worklist     service.WorklistService
	logger       *zap.Logger
	syncInterval time.Duration

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(worklist service.WorklistService, syncInterval time.Duration, logger *zap.Logger) *SyncWorker {
	if syncInterval <= 0 {
		syncInterval = 5 * time.Minute
	}
	return &SyncWorker{
		worklist:     worklist,
		syncInterval: syncInterval,
		logger:       logger,
	}
}

// Name implements Worker
func (w *SyncWorker) Name() string {
	return "sync"
}

// Start implements Worker
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("sync worker is already running")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("SyncWorker started", zap.Duration("sync_interval", w.syncInterval))

	go w.syncLoop(ctx)
	return nil
}

// Stop implements Worker
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("SyncWorker stopped")
}

func (w *SyncWorker) syncLoop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *SyncWorker) syncOnce(ctx context.Context) {
	items, err := w.worklist.GetWorklist(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Worklist sync failed", zap.Error(err))
		return
	}

	blocked := 0
	for _, item := range items {
		if !item.Validation.IsValid {
			blocked++
		}
	}

	w.logger.Info("Worklist synced",
		zap.Int("records", len(items)),
		zap.Int("blocked", blocked))
}
