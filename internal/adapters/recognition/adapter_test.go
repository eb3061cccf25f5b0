package recognition

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// fakeRecognizer returns scripted errors before succeeding.
type fakeRecognizer struct {
	mu        sync.Mutex
	failures  []error
	fragments []model.Fragment
	calls     int
}

func (f *fakeRecognizer) Classify(ctx context.Context, imageRef string) (model.Classification, error) {
	if err := f.next(); err != nil {
		return model.Classification{}, err
	}
	return model.Classification{Valid: true, Confidence: 0.9}, nil
}

func (f *fakeRecognizer) Extract(ctx context.Context, imageRef string) ([]model.Fragment, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return f.fragments, nil
}

func (f *fakeRecognizer) next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return err
	}
	return nil
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestAdapterRetriesTransientFailures(t *testing.T) {
	Convey("Given a backend that fails twice with transient errors", t, func() {
		backend := &fakeRecognizer{
			failures:  []error{ErrUnavailable, ErrTimeout},
			fragments: []model.Fragment{{Text: "1st", X: 10, Y: 10, Confidence: 0.9}},
		}
		var slept []time.Duration
		a := NewAdapter([]Recognizer{backend},
			WithMaxAttempts(3),
			WithRetryBackoff(100*time.Millisecond, time.Second),
			WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		)

		Convey("When extraction runs", func() {
			fragments, err := a.Extract(context.Background(), "img-1")

			Convey("Then the third attempt succeeds", func() {
				So(err, ShouldBeNil)
				So(len(fragments), ShouldEqual, 1)
				So(backend.callCount(), ShouldEqual, 3)
			})

			Convey("And backoff doubles between attempts", func() {
				So(slept, ShouldResemble, []time.Duration{
					100 * time.Millisecond,
					200 * time.Millisecond,
				})
			})
		})
	})
}

func TestAdapterExhaustsRetries(t *testing.T) {
	Convey("Given a backend that always times out", t, func() {
		backend := &fakeRecognizer{
			failures: []error{ErrTimeout, ErrTimeout, ErrTimeout},
		}
		a := NewAdapter([]Recognizer{backend},
			WithMaxAttempts(3),
			WithSleeper(func(time.Duration) {}),
		)

		Convey("When extraction runs", func() {
			_, err := a.Extract(context.Background(), "img-1")

			Convey("Then retries are exhausted", func() {
				So(errors.Is(err, ErrRetriesExhausted), ShouldBeTrue)
				So(backend.callCount(), ShouldEqual, 3)
			})
		})
	})
}

func TestAdapterStopsOnPermanentFailure(t *testing.T) {
	permanent := errors.New("image ref malformed")
	backend := &fakeRecognizer{
		failures: []error{permanent, permanent, permanent},
	}
	a := NewAdapter([]Recognizer{backend},
		WithMaxAttempts(3),
		WithSleeper(func(time.Duration) {}),
	)

	_, err := a.Extract(context.Background(), "img-1")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected retries exhausted, got %v", err)
	}
	if got := backend.callCount(); got != 1 {
		t.Errorf("expected a single attempt for a permanent failure, got %d", got)
	}
}

func TestAdapterFallbackChain(t *testing.T) {
	Convey("Given a primary that never recovers and a healthy fallback", t, func() {
		primary := &fakeRecognizer{
			failures: []error{ErrUnavailable, ErrUnavailable},
		}
		fallback := &fakeRecognizer{
			fragments: []model.Fragment{{Text: "Falco", X: 80, Y: 10, Confidence: 0.88}},
		}
		a := NewAdapter([]Recognizer{primary, fallback},
			WithMaxAttempts(2),
			WithSleeper(func(time.Duration) {}),
		)

		Convey("When extraction runs", func() {
			fragments, err := a.Extract(context.Background(), "img-1")

			Convey("Then the fallback result is returned", func() {
				So(err, ShouldBeNil)
				So(len(fragments), ShouldEqual, 1)
				So(fragments[0].Text, ShouldEqual, "Falco")
				So(primary.callCount(), ShouldEqual, 2)
				So(fallback.callCount(), ShouldEqual, 1)
			})
		})
	})
}

func TestAdapterClassify(t *testing.T) {
	backend := &fakeRecognizer{failures: []error{ErrUnavailable}}
	a := NewAdapter([]Recognizer{backend},
		WithMaxAttempts(2),
		WithSleeper(func(time.Duration) {}),
	)

	c, err := a.Classify(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !c.Valid || c.Confidence != 0.9 {
		t.Errorf("unexpected classification %+v", c)
	}
}

// blockingRecognizer holds extraction until released, counting concurrency.
type blockingRecognizer struct {
	inFlight atomic.Int64
	peak     atomic.Int64
	release  chan struct{}
}

func (b *blockingRecognizer) Classify(ctx context.Context, imageRef string) (model.Classification, error) {
	return model.Classification{Valid: true, Confidence: 1}, nil
}

func (b *blockingRecognizer) Extract(ctx context.Context, imageRef string) ([]model.Fragment, error) {
	n := b.inFlight.Add(1)
	for {
		peak := b.peak.Load()
		if n <= peak || b.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	<-b.release
	b.inFlight.Add(-1)
	return nil, nil
}

func TestAdapterConcurrencyCap(t *testing.T) {
	backend := &blockingRecognizer{release: make(chan struct{})}
	a := NewAdapter([]Recognizer{backend}, WithMaxConcurrent(2))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.Extract(context.Background(), "img")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	if peak := backend.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent extractions, observed %d", peak)
	}
}
