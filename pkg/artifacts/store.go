// Package artifacts maintains the region topic-to-tag mapping documents
// consumed by the downstream ingestion bridge.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gobusters/ectologger"
)

// DocumentStore loads and saves one mapping document. Documents are keyed by
// topic ID; values are either a bare tag name or a sensor-field mapping.
type DocumentStore interface {
	Load(ctx context.Context, path string) (map[string]any, error)
	Save(ctx context.Context, path string, doc map[string]any) error
}

// FilesystemStore keeps the documents as JSON files on disk.
type FilesystemStore struct {
	logger ectologger.Logger
}

func NewFilesystemStore(logger ectologger.Logger) *FilesystemStore {
	return &FilesystemStore{logger: logger}
}

// Load reads a document. A missing or unreadable document starts empty so a
// bad file never blocks a reconciliation run.
func (s *FilesystemStore) Load(ctx context.Context, path string) (map[string]any, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(body, &doc); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("path", path).
			Warn("document is not valid JSON, starting empty")
		return map[string]any{}, nil
	}
	return doc, nil
}

// Save writes the document atomically next to its final location.
func (s *FilesystemStore) Save(ctx context.Context, path string, doc map[string]any) error {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create document directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace document %s: %w", path, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{"path": path, "topics": len(doc)}).
		Info("mapping document written")
	return nil
}

// MemoryStore is an in-process DocumentStore for tests.
type MemoryStore struct {
	Docs map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Docs: make(map[string]map[string]any)}
}

func (s *MemoryStore) Load(_ context.Context, path string) (map[string]any, error) {
	doc, ok := s.Docs[path]
	if !ok {
		return map[string]any{}, nil
	}
	clone := make(map[string]any, len(doc))
	for k, v := range doc {
		clone[k] = v
	}
	return clone, nil
}

func (s *MemoryStore) Save(_ context.Context, path string, doc map[string]any) error {
	s.Docs[path] = doc
	return nil
}
