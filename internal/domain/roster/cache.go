package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
)

// Provider fetches the authoritative roster from wherever it lives.
type Provider interface {
	Fetch(ctx context.Context) ([]model.RosterEntry, error)
}

// FileProvider reads the roster from a JSON file: an array of entries with
// id, display_name, and aliases.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider backed by a JSON file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Fetch reads and decodes the roster file.
func (p *FileProvider) Fetch(_ context.Context) ([]model.RosterEntry, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterUnavailable, err)
	}
	var entries []model.RosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrRosterUnavailable, p.path, err)
	}
	return entries, nil
}

// StaticProvider serves a fixed roster; useful in tests and local runs.
type StaticProvider struct {
	entries []model.RosterEntry
}

// NewStaticProvider creates a provider returning the given entries.
func NewStaticProvider(entries []model.RosterEntry) *StaticProvider {
	return &StaticProvider{entries: entries}
}

// Fetch returns the fixed entries.
func (p *StaticProvider) Fetch(_ context.Context) ([]model.RosterEntry, error) {
	return p.entries, nil
}

// Cache holds the current roster snapshot and replaces it wholesale on
// refresh. Readers always see either the old or the new snapshot, never a
// mix.
type Cache struct {
	provider Provider
	snap     atomic.Pointer[Snapshot]
	log      logger.Logger
}

// NewCache creates a cache over provider. The cache starts empty; call
// Refresh before matching.
func NewCache(provider Provider, log logger.Logger) *Cache {
	c := &Cache{provider: provider, log: log}
	c.snap.Store(NewSnapshot(nil))
	return c
}

// Refresh fetches the roster and swaps in a freshly built snapshot.
func (c *Cache) Refresh(ctx context.Context) error {
	entries, err := c.provider.Fetch(ctx)
	if err != nil {
		return err
	}
	c.snap.Store(NewSnapshot(entries))
	if c.log != nil {
		c.log.Debug(ctx, "roster snapshot refreshed", logger.Int("entries", len(entries)))
	}
	return nil
}

// Snapshot returns the current snapshot. Never nil.
func (c *Cache) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Run refreshes the snapshot on interval until ctx is canceled. Refresh
// failures keep the previous snapshot and are logged.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && c.log != nil {
				c.log.Warn(ctx, "roster refresh failed; keeping previous snapshot", logger.Error(err))
			}
		}
	}
}
