package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/index"
)

// FileLoader reads a collection from a vectors file and a JSON metadata file.
type FileLoader struct {
	logger *zap.Logger
}

// NewFileLoader creates a disk-backed collection loader.
func NewFileLoader(logger *zap.Logger) *FileLoader {
	return &FileLoader{logger: logger}
}

// Load reads the index/metadata pair and normalizes the loose metadata
// records into fixed-schema documents. A count mismatch between the two files
// is a data-integrity fault: it is logged and the longer side is truncated so
// the ordinal alignment the index depends on still holds.
func (l *FileLoader) Load(name, indexPath, metaPath string) (*index.IndexedCollection, error) {
	vectors, err := index.ReadVectors(indexPath)
	if err != nil {
		return nil, wrapLoadError("read vectors for "+name, err)
	}

	records, err := readMetadata(metaPath)
	if err != nil {
		return nil, wrapLoadError("read metadata for "+name, err)
	}

	docs := make([]domain.Document, len(records))
	for i, rec := range records {
		docs[i] = domain.NormalizeRecord(rec, name)
	}

	if len(vectors) != len(docs) {
		l.logger.Warn("index/metadata count mismatch, truncating to shorter",
			zap.String("collection", name),
			zap.Int("vectors", len(vectors)),
			zap.Int("documents", len(docs)),
		)
		n := min(len(vectors), len(docs))
		vectors = vectors[:n]
		docs = docs[:n]
	}

	col, err := index.NewIndexedCollection(vectors, docs)
	if err != nil {
		return nil, fmt.Errorf("build collection %s: %w", name, err)
	}
	return col, nil
}

// wrapLoadError marks absent-file failures with ErrCollectionNotLoaded so the
// registry can tell "no corpus on disk" from a genuinely broken one.
func wrapLoadError(msg string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrCollectionNotLoaded, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// readMetadata parses the metadata file. Accepts either a bare JSON array of
// records or an object with a "documents" array (both shapes exist in the
// wild).
func readMetadata(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if wrapped.Documents == nil {
		return nil, fmt.Errorf("metadata %s has no document list", path)
	}
	return wrapped.Documents, nil
}
