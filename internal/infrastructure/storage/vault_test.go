package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestVault(t *testing.T) (*LocalVault, string, string) {
	t.Helper()
	root := t.TempDir()
	archive := filepath.Join(root, "archive")
	quarantine := filepath.Join(root, "quarantine")
	return NewLocalVault(archive, quarantine, zap.NewNop()), archive, quarantine
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0o644))
	return path
}

func TestArchiveMovesFile(t *testing.T) {
	vault, archive, _ := newTestVault(t)
	src := writeFile(t, t.TempDir(), "invoice.pdf")

	dest, err := vault.Archive(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archive, "invoice.pdf"), dest)
	assert.FileExists(t, dest)
	assert.NoFileExists(t, src)
}

func TestQuarantineMovesFile(t *testing.T) {
	vault, _, quarantine := newTestVault(t)
	src := writeFile(t, t.TempDir(), "broken.pdf")

	dest, err := vault.Quarantine(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(quarantine, "broken.pdf"), dest)
}

func TestArchiveKeepsCollidingNames(t *testing.T) {
	vault, archive, _ := newTestVault(t)
	inbox := t.TempDir()

	first := writeFile(t, inbox, "invoice.pdf")
	_, err := vault.Archive(context.Background(), first)
	require.NoError(t, err)

	second := writeFile(t, inbox, "invoice.pdf")
	dest, err := vault.Archive(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archive, "invoice-1.pdf"), dest)
	assert.FileExists(t, filepath.Join(archive, "invoice.pdf"))
	assert.FileExists(t, dest)
}
