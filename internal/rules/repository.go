package rules

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"bre-gateway/pkg/platform/sentinel"
)

// Repository loads decision-table definitions by logical path with a shared
// read-through cache.
//
// The cache is an immutable snapshot map swapped atomically: readers never
// take a lock and never observe a partially constructed definition.
// Concurrent cold-path loads may race to parse the same document; the last
// writer wins and the duplicate work is accepted instead of per-key locking.
// Invalidate replaces the snapshot wholesale; a load that was in flight when
// invalidation ran may repopulate a stale entry, a staleness window bounded by
// the next invalidation or process restart and accepted because rule edits
// are infrequent.
type Repository struct {
	storage Storage
	logger  *slog.Logger

	mu    sync.Mutex // serializes snapshot replacement, not reads
	cache atomic.Pointer[map[string]*Definition]
}

// NewRepository creates a Repository over the given storage.
func NewRepository(storage Storage, logger *slog.Logger) *Repository {
	r := &Repository{storage: storage, logger: logger}
	empty := make(map[string]*Definition)
	r.cache.Store(&empty)
	return r
}

// Load returns the definition at the logical path, reading and parsing it
// from storage on a cache miss. Returns ErrNotFound when the path has no
// document and *FormatError when the document cannot be parsed.
func (r *Repository) Load(ctx context.Context, path string) (*Definition, error) {
	if def, ok := (*r.cache.Load())[path]; ok {
		return def, nil
	}

	raw, err := r.storage.ReadRaw(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	def, err := Parse(path, raw)
	if err != nil {
		return nil, err
	}

	r.insert(path, def)
	r.logger.InfoContext(ctx, "rule definition loaded",
		"path", path,
		"version", def.Version,
	)
	return def, nil
}

// Invalidate clears the entire cache unconditionally. Coarse-grained by
// design: rule edits are rare and reloads are cheap, so correctness beats
// precision. Subsequent loads re-read from storage.
func (r *Repository) Invalidate() {
	empty := make(map[string]*Definition)
	r.cache.Store(&empty)
	r.logger.Info("rule cache invalidated")
}

// insert publishes a new snapshot containing the loaded definition via
// copy-on-write. The mutex only guards writers; readers stay lock-free.
func (r *Repository) insert(path string, def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.cache.Load()
	next := make(map[string]*Definition, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[path] = def
	r.cache.Store(&next)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
