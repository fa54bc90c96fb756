// Package registry owns the loaded index/metadata pairs, one per named
// collection. Collections are loaded lazily on first access and shared
// read-only for the process lifetime.
package registry

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/index"
)

// DefaultCollection is the fallback target for unknown collection names.
const DefaultCollection = "all"

// KnownCollections is the closed set of collection names served by the
// registry when the configuration does not override it.
var KnownCollections = []string{
	"press_release", "all", "law", "panli", "written", "internet", "guidance",
}

// Loader loads one collection from its on-disk index/metadata pair.
// A loader must report absent files via an error wrapping
// domain.ErrCollectionNotLoaded.
type Loader interface {
	Load(name, indexPath, metaPath string) (*index.IndexedCollection, error)
}

// Status describes one collection's load state.
type Status struct {
	Loaded        bool   `json:"loaded"`
	DocumentCount int    `json:"document_count"`
	Path          string `json:"path"`
}

type entry struct {
	name      string
	indexPath string
	metaPath  string

	// once guards the single-flight first load: concurrent first callers
	// block here until the one load completes.
	once sync.Once
	col  *index.IndexedCollection // nil when files are absent or load failed
}

// Registry maps collection names to lazily loaded collections.
type Registry struct {
	entries map[string]*entry
	loader  Loader
	logger  *zap.Logger
}

// New creates a registry over the given collection paths. Nothing touches
// disk until the first Get or Status call for a collection.
func New(paths map[string]CollectionPaths, loader Loader, logger *zap.Logger) *Registry {
	entries := make(map[string]*entry, len(paths))
	for name, p := range paths {
		entries[name] = &entry{name: name, indexPath: p.Index, metaPath: p.Metadata}
	}
	return &Registry{entries: entries, loader: loader, logger: logger}
}

// CollectionPaths is the on-disk index/metadata pair for one collection.
type CollectionPaths struct {
	Index    string
	Metadata string
}

// Resolve maps a requested collection name to a registered one. Unknown names
// fall back to DefaultCollection; this is a deliberate tolerance policy for
// caller typos, not silent data corruption, and is logged when it triggers.
func (r *Registry) Resolve(name string) string {
	if _, ok := r.entries[name]; ok {
		return name
	}
	r.logger.Warn("unknown collection, falling back to default",
		zap.String("requested", name),
		zap.String("fallback", DefaultCollection),
	)
	return DefaultCollection
}

// Get returns the collection for the given name, loading it on first access.
// ok is false when the collection's files are absent or failed to load;
// callers treat that as an empty corpus, not an error.
func (r *Registry) Get(ctx context.Context, name string) (*index.IndexedCollection, bool) {
	e, found := r.entries[r.Resolve(name)]
	if !found {
		// Default collection itself is unregistered; nothing to serve.
		return nil, false
	}

	e.once.Do(func() {
		col, err := r.loader.Load(e.name, e.indexPath, e.metaPath)
		if err != nil {
			if errors.Is(err, domain.ErrCollectionNotLoaded) {
				r.logger.Warn("collection files absent, serving empty results",
					zap.String("collection", e.name),
					zap.String("index_path", e.indexPath),
				)
			} else {
				r.logger.Error("failed to load collection",
					zap.String("collection", e.name),
					zap.Error(err),
				)
			}
			return
		}
		e.col = col
		r.logger.Info("collection loaded",
			zap.String("collection", e.name),
			zap.Int("documents", col.Size()),
			zap.Int("dimension", col.Dim()),
		)
	})

	if e.col == nil {
		return nil, false
	}
	return e.col, true
}

// Status loads (if needed) and reports every registered collection.
func (r *Registry) Status(ctx context.Context) map[string]Status {
	out := make(map[string]Status, len(r.entries))
	for name := range r.entries {
		out[name] = r.StatusOf(ctx, name)
	}
	return out
}

// StatusOf loads (if needed) and reports a single collection.
func (r *Registry) StatusOf(ctx context.Context, name string) Status {
	resolved := r.Resolve(name)
	col, ok := r.Get(ctx, resolved)

	st := Status{Loaded: ok}
	if e, found := r.entries[resolved]; found {
		st.Path = e.indexPath
	}
	if ok {
		st.DocumentCount = col.Size()
	}
	return st
}
