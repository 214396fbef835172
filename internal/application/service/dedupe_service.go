package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/apdesk/apdesk/internal/application/port"
	"github.com/apdesk/apdesk/internal/domain/entity"
)

// DedupeService detects documents that have been ingested before by
// content hash.
type DedupeService interface {
	// CheckFile hashes the file and reports whether that content was seen
	// before. The hash is returned either way so the caller can register it.
	CheckFile(ctx context.Context, path string) (string, *entity.DuplicateCheckResult, error)
	// Register indexes a hash against the store record created from it.
	Register(ctx context.Context, hash, fileName, recordID string) error
}

type dedupeServiceImpl struct {
	hashRepo port.FileHashRepository
	store    port.RecordStore
	logger   Logger
}

// NewDedupeService creates a new DedupeService
func NewDedupeService(hashRepo port.FileHashRepository, store port.RecordStore, logger Logger) DedupeService {
	return &dedupeServiceImpl{
		hashRepo: hashRepo,
		store:    store,
		logger:   logger,
	}
}

func (s *dedupeServiceImpl) CheckFile(ctx context.Context, path string) (string, *entity.DuplicateCheckResult, error) {
	hash, err := hashFile(path)
	if err != nil {
		return "", nil, err
	}

	existing, err := s.hashRepo.GetByHash(ctx, hash)
	if err != nil {
		return "", nil, fmt.Errorf("look up hash: %w", err)
	}

	// The local index is a cache; a miss still has to be checked against the
	// store, or a fresh database would re-ingest every known document.
	if existing == nil {
		return s.checkStore(ctx, hash)
	}

	s.logger.Info("Duplicate document detected",
		"hash", hash,
		"record_id", existing.RecordID,
		"first_file", existing.FileName)

	firstSeen := existing.CreatedAt
	return hash, &entity.DuplicateCheckResult{
		IsDuplicate: true,
		RecordID:    existing.RecordID,
		FileName:    existing.FileName,
		FirstSeenAt: &firstSeen,
	}, nil
}

// checkStore resolves a local-index miss against the tabular store and
// backfills the index on a hit.
func (s *dedupeServiceImpl) checkStore(ctx context.Context, hash string) (string, *entity.DuplicateCheckResult, error) {
	inv, err := s.store.FindByFileHash(ctx, hash)
	if err != nil {
		return "", nil, fmt.Errorf("look up hash in store: %w", err)
	}
	if inv == nil {
		return hash, &entity.DuplicateCheckResult{IsDuplicate: false}, nil
	}

	s.logger.Info("Duplicate document found in store",
		"hash", hash,
		"record_id", inv.ID)

	if err := s.Register(ctx, hash, "", inv.ID); err != nil {
		s.logger.Error("Failed to backfill hash index", "hash", hash, "error", err)
	}

	return hash, &entity.DuplicateCheckResult{
		IsDuplicate: true,
		RecordID:    inv.ID,
	}, nil
}

func (s *dedupeServiceImpl) Register(ctx context.Context, hash, fileName, recordID string) error {
	fh := &entity.FileHash{
		Hash:     hash,
		FileName: fileName,
		RecordID: recordID,
	}
	if err := s.hashRepo.Create(ctx, fh); err != nil {
		return fmt.Errorf("register hash: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
