package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/app"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/repository"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
)

// fakeDeps scripts the service behavior behind the handlers.
type fakeDeps struct {
	outcome service.SubmitOutcome
	results map[string]model.ValidationResult

	submitted []model.Submission
}

func (f *fakeDeps) Submit(ctx context.Context, sub model.Submission) service.SubmitOutcome {
	f.submitted = append(f.submitted, sub)
	return f.outcome
}

func (f *fakeDeps) Result(ctx context.Context, submissionID string) (model.ValidationResult, error) {
	if r, ok := f.results[submissionID]; ok {
		return r, nil
	}
	return model.ValidationResult{}, fmt.Errorf("%w: %s", repository.ErrNotFound, submissionID)
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, deps).Register(mux)
	return mux
}

func postSubmission(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"submission_id":"sub-1","origin_id":"guild-1","uploader_id":"user-1","image_ref":"https://cdn.example/shot.png"}`

func TestPostSubmission(t *testing.T) {
	Convey("Given the submissions endpoint", t, func() {
		deps := &fakeDeps{outcome: service.SubmitAccepted}
		mux := newTestMux(deps)

		Convey("When a valid submission is posted", func() {
			rec := postSubmission(mux, validBody)

			Convey("Then it is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)

				var ack ackResponse
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.SubmissionID, ShouldEqual, "sub-1")

				So(len(deps.submitted), ShouldEqual, 1)
				So(deps.submitted[0].OriginID, ShouldEqual, "guild-1")
				So(deps.submitted[0].State, ShouldEqual, model.StatePending)
			})
		})

		Convey("When the submission id is omitted", func() {
			rec := postSubmission(mux, `{"origin_id":"guild-1","uploader_id":"user-1","image_ref":"https://cdn.example/shot.png"}`)

			Convey("Then one is generated", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var ack ackResponse
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.SubmissionID, ShouldNotBeEmpty)
			})
		})

		Convey("When required fields are missing", func() {
			rec := postSubmission(mux, `{"origin_id":"guild-1"}`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(len(deps.submitted), ShouldEqual, 0)

				var body errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "bad_request")
				So(body.Message, ShouldStartWith, ErrBadRequest.Error())
			})
		})

		Convey("When the body is not JSON", func() {
			rec := postSubmission(mux, "not json")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/submissions", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostSubmissionOutcomes(t *testing.T) {
	Convey("Given service outcomes", t, func() {
		Convey("A duplicate reports 200 with the duplicate flag", func() {
			deps := &fakeDeps{outcome: service.SubmitDuplicate}
			rec := postSubmission(newTestMux(deps), validBody)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var ack ackResponse
			So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
			So(ack.Duplicate, ShouldBeTrue)
		})

		Convey("Backpressure reports 429", func() {
			deps := &fakeDeps{outcome: service.SubmitBackpressure}
			rec := postSubmission(newTestMux(deps), validBody)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("A stopped service reports 503", func() {
			deps := &fakeDeps{outcome: service.SubmitNotStarted}
			rec := postSubmission(newTestMux(deps), validBody)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestGetResult(t *testing.T) {
	Convey("Given a stored validation result", t, func() {
		deps := &fakeDeps{
			results: map[string]model.ValidationResult{
				"sub-1": {
					SubmissionID: "sub-1",
					Status:       model.StatusNeedsReview,
					Confidence:   0.7,
					Reasons:      []string{"missing_rank: ranks 8"},
				},
			},
		}
		mux := newTestMux(deps)

		Convey("When it is fetched", func() {
			req := httptest.NewRequest(http.MethodGet, "/results/sub-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the result is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got model.ValidationResult
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusNeedsReview)
				So(got.Reasons, ShouldResemble, []string{"missing_rank: ranks 8"})
			})
		})

		Convey("When an unknown id is fetched", func() {
			req := httptest.NewRequest(http.MethodGet, "/results/missing", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the id is empty", func() {
			req := httptest.NewRequest(http.MethodGet, "/results/", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetStats(t *testing.T) {
	deps := &fakeDeps{}
	mux := newTestMux(deps)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["started"] != true {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestHealthz(t *testing.T) {
	deps := &fakeDeps{}
	mux := newTestMux(deps)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
