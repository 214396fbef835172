package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apdesk/apdesk/internal/application/service"
	"go.uber.org/zap"
)

// IngestWorker scans the inbox directory on a fixed interval and feeds new
// documents through the ingest pipeline.
type IngestWorker struct {
	ingest       service.IngestService
	logger       *zap.Logger
	scanInterval time.Duration

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewIngestWorker creates a new ingest worker
func NewIngestWorker(ingest service.IngestService, scanInterval time.Duration, logger *zap.Logger) *IngestWorker {
	if scanInterval <= 0 {
		scanInterval = 30 * time.Second
	}
	return &IngestWorker{
		ingest:       ingest,
		scanInterval: scanInterval,
		logger:       logger,
	}
}

// Name implements Worker
func (w *IngestWorker) Name() string {
	return "ingest"
}

// Start implements Worker
func (w *IngestWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("ingest worker is already running")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("IngestWorker started", zap.Duration("scan_interval", w.scanInterval))

	go w.scanLoop(ctx)
	return nil
}

// Stop implements Worker and waits for an in-flight scan to finish.
func (w *IngestWorker) Stop() {
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

	w.logger.Info("IngestWorker stopped")
}

func (w *IngestWorker) scanLoop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	// One scan right away so a restart picks up waiting documents.
	w.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scanOnce(ctx)
		}
	}
}

func (w *IngestWorker) scanOnce(ctx context.Context) {
	processed, err := w.ingest.ScanInbox(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Inbox scan failed", zap.Error(err))
		return
	}
	if processed > 0 {
		w.logger.Info("Inbox scan complete", zap.Int("processed", processed))
	}
}
