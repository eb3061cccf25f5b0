package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	Convey("Given a validation result", t, func() {
		store := openTestStore(t)
		ctx := context.Background()

		result := model.ValidationResult{
			SubmissionID: "sub-1",
			Status:       model.StatusNeedsReview,
			Confidence:   0.72,
			Reasons: []string{
				"missing_rank: ranks 3, 7",
				"low_confidence: aggregate 0.72 below 0.85",
			},
		}

		Convey("When it is saved", func() {
			So(store.Save(ctx, result), ShouldBeNil)

			Convey("Then it round-trips intact", func() {
				got, err := store.Get(ctx, "sub-1")
				So(err, ShouldBeNil)
				So(got.SubmissionID, ShouldEqual, "sub-1")
				So(got.Status, ShouldEqual, model.StatusNeedsReview)
				So(got.Confidence, ShouldAlmostEqual, 0.72, 1e-9)
				So(got.Reasons, ShouldResemble, result.Reasons)
			})
		})
	})
}

func TestSQLiteStoreIdempotentSave(t *testing.T) {
	Convey("Given a result saved twice", t, func() {
		store := openTestStore(t)
		ctx := context.Background()

		first := model.ValidationResult{
			SubmissionID: "sub-1",
			Status:       model.StatusNeedsReview,
			Confidence:   0.7,
			Reasons:      []string{"match_ambiguous: rank 2 name \"Mango\""},
		}
		second := first
		second.Status = model.StatusAutoApproved
		second.Confidence = 0.91
		second.Reasons = nil

		So(store.Save(ctx, first), ShouldBeNil)
		So(store.Save(ctx, second), ShouldBeNil)

		Convey("Then a single row holds the latest value", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			got, err := store.Get(ctx, "sub-1")
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusAutoApproved)
			So(got.Confidence, ShouldAlmostEqual, 0.91, 1e-9)
			So(len(got.Reasons), ShouldEqual, 0)
		})
	})
}

func TestSQLiteStoreNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	result := model.ValidationResult{
		SubmissionID: "sub-1",
		Status:       model.StatusRejected,
		Confidence:   0.3,
		Reasons:      []string{"classification_rejected: confidence 0.30 below 0.50"},
	}
	if err := store.Save(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, result); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored result, got %d", store.Len())
	}

	got, err := store.Get(ctx, "sub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusRejected {
		t.Errorf("unexpected status %s", got.Status)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = store.Close()
	if err := store.Save(ctx, result); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed after close, got %v", err)
	}
}
