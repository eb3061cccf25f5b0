package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestSeenAndRecord(t *testing.T) {
	d := NewInMemoryDeduper()
	ctx := context.Background()

	if d.SeenAndRecord(ctx, "sub-1") {
		t.Error("fresh id reported as seen")
	}
	if !d.SeenAndRecord(ctx, "sub-1") {
		t.Error("repeated id reported as fresh")
	}
	if got := d.Size(); got != 1 {
		t.Errorf("expected size 1, got %d", got)
	}
}

func TestUnrecordAllowsRetry(t *testing.T) {
	d := NewInMemoryDeduper()
	ctx := context.Background()

	_ = d.SeenAndRecord(ctx, "sub-1")
	d.Unrecord(ctx, "sub-1")

	if d.SeenAndRecord(ctx, "sub-1") {
		t.Error("unrecorded id should be fresh again")
	}
	// Unrecord of an unknown id is a no-op.
	d.Unrecord(ctx, "sub-unknown")
}

func TestBoundedEviction(t *testing.T) {
	d := NewInMemoryDeduper(WithMaxSize(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i))
	}
	if got := d.Size(); got != 3 {
		t.Errorf("expected size 3 after eviction, got %d", got)
	}
	// Oldest ids were evicted and count as fresh again.
	if d.SeenAndRecord(ctx, "sub-0") {
		t.Error("evicted id should be fresh")
	}
	// Newest survive.
	if !d.SeenAndRecord(ctx, "sub-4") {
		t.Error("recent id should still be recorded")
	}
}

func TestConcurrentSeenAndRecord(t *testing.T) {
	d := NewInMemoryDeduper(WithMaxSize(0))
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	fresh := make([]int, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if !d.SeenAndRecord(ctx, fmt.Sprintf("sub-%d", i)) {
					fresh[g]++
				}
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for _, n := range fresh {
		total += n
	}
	if total != 100 {
		t.Errorf("expected exactly 100 fresh records across goroutines, got %d", total)
	}
}
