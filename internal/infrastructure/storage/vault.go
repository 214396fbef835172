// Package storage keeps ingested documents on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apdesk/apdesk/internal/application/port"
	"go.uber.org/zap"
)

// LocalVault implements port.DocumentVault on the local filesystem. Archived
// and quarantined documents land in separate directories; name collisions
// get a numeric suffix so nothing is overwritten.
type LocalVault struct {
	archiveDir    string
	quarantineDir string
	logger        *zap.Logger
}

// NewLocalVault creates a new LocalVault
func NewLocalVault(archiveDir, quarantineDir string, logger *zap.Logger) *LocalVault {
	return &LocalVault{
		archiveDir:    archiveDir,
		quarantineDir: quarantineDir,
		logger:        logger,
	}
}

// Archive moves a processed document into the archive directory.
func (v *LocalVault) Archive(ctx context.Context, path string) (string, error) {
	return v.move(path, v.archiveDir)
}

// Quarantine moves a rejected document into the quarantine directory.
func (v *LocalVault) Quarantine(ctx context.Context, path string) (string, error) {
	return v.move(path, v.quarantineDir)
}

func (v *LocalVault) move(path, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		v.logger.Error("Failed to create directory",
			zap.String("dir", destDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	dest := v.uniquePath(destDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		v.logger.Error("Failed to move file",
			zap.String("from", path),
			zap.String("to", dest),
			zap.Error(err))
		return "", fmt.Errorf("failed to move %s: %w", path, err)
	}

	v.logger.Debug("File moved",
		zap.String("from", path),
		zap.String("to", dest))

	return dest, nil
}

// uniquePath returns destDir/name, suffixed with -1, -2, ... while the name
// is taken.
func (v *LocalVault) uniquePath(destDir, name string) string {
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dest = filepath.Join(destDir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
	}
}

// Verify interface compliance
var _ port.DocumentVault = (*LocalVault)(nil)
