package roster_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/roster"
)

func TestCacheRefreshSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	provider := roster.NewStaticProvider([]model.RosterEntry{
		{ID: "p1", DisplayName: "Falco"},
	})
	cache := roster.NewCache(provider, nil)

	if cache.Snapshot().Len() != 0 {
		t.Error("expected empty initial snapshot")
	}

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if cache.Snapshot().Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Snapshot().Len())
	}
}

type failingProvider struct{}

func (failingProvider) Fetch(context.Context) ([]model.RosterEntry, error) {
	return nil, errors.New("provider down")
}

func TestCacheKeepsSnapshotOnFailedRefresh(t *testing.T) {
	ctx := context.Background()
	cache := roster.NewCache(roster.NewStaticProvider([]model.RosterEntry{{ID: "p1", DisplayName: "Falco"}}), nil)
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	failing := roster.NewCache(failingProvider{}, nil)
	if err := failing.Refresh(ctx); err == nil {
		t.Error("expected refresh error")
	}
	// Original cache is untouched and still serves its snapshot.
	if cache.Snapshot().Len() != 1 {
		t.Error("snapshot lost after unrelated failure")
	}
}

func TestCacheConcurrentReadDuringRefresh(t *testing.T) {
	ctx := context.Background()
	provider := roster.NewStaticProvider([]model.RosterEntry{
		{ID: "p1", DisplayName: "Falco"},
		{ID: "p2", DisplayName: "Peach"},
	})
	cache := roster.NewCache(provider, nil)
	_ = cache.Refresh(ctx)

	matcher := roster.NewMatcher()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := cache.Snapshot()
				_ = matcher.Match(snap, model.PlacementRecord{Rank: 1, RawName: "Falco"})
			}
		}()
	}
	for i := 0; i < 50; i++ {
		_ = cache.Refresh(ctx)
	}
	wg.Wait()
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.json")
	content := `[{"id":"p1","display_name":"Falco","aliases":["falco."]},{"id":"p2","display_name":"Peach"}]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	entries, err := roster.NewFileProvider(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "p1" || len(entries[0].Aliases) != 1 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}

	if _, err := roster.NewFileProvider(filepath.Join(dir, "missing.json")).Fetch(context.Background()); !errors.Is(err, roster.ErrRosterUnavailable) {
		t.Errorf("expected ErrRosterUnavailable, got %v", err)
	}
}
