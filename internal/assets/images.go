// Package assets manages image files referenced by documents.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/content"
	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/logger"
)

// Manager removes image files when their owning document is deleted.
// Paths in the refs string are relative to BaseDir; absolute paths and paths
// escaping BaseDir are rejected to keep deletions inside the image directory.
type Manager struct {
	baseDir string
}

var _ domain.AssetRemover = (*Manager)(nil)

// NewManager creates an asset manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// RemoveAssets deletes every file named in refs. Files that no longer exist
// are skipped silently; the cascade must not fail a document delete for an
// already-missing image.
func (m *Manager) RemoveAssets(ctx context.Context, refs string) error {
	log := logger.FromContext(ctx)

	for _, ref := range content.ParseImageRefs(refs) {
		if filepath.IsAbs(ref) {
			log.Warn("skipping absolute image ref", zap.String("ref", ref))
			continue
		}

		path := filepath.Join(m.baseDir, filepath.Clean(ref))
		// Refs come in verbatim from the FAQ write API, so a ".." segment
		// could walk out of the image directory.
		if rel, err := filepath.Rel(m.baseDir, path); err != nil ||
			rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			log.Warn("skipping image ref outside image directory", zap.String("ref", ref))
			continue
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove image %s: %w", ref, err)
		}
		log.Debug("removed image asset", zap.String("path", path))
	}
	return nil
}
