package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSubmissionTransitions(t *testing.T) {
	Convey("Given a pending submission", t, func() {
		sub := model.Submission{
			ID:          "sub-1",
			OriginID:    "guild-1",
			UploaderID:  "user-1",
			ImageRef:    "https://cdn.example/standings.png",
			ArrivalTime: time.Now(),
			State:       model.StatePending,
		}

		Convey("When walking the full happy path", func() {
			So(sub.Transition(model.StateClassified), ShouldBeNil)
			So(sub.Transition(model.StateExtracted), ShouldBeNil)
			So(sub.Transition(model.StateStructured), ShouldBeNil)
			So(sub.Transition(model.StateMatched), ShouldBeNil)
			So(sub.Transition(model.StateAutoApproved), ShouldBeNil)

			Convey("Then the terminal state is immutable", func() {
				err := sub.Transition(model.StateNeedsReview)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
				So(sub.State, ShouldEqual, model.StateAutoApproved)
			})
		})

		Convey("When skipping stages", func() {
			err := sub.Transition(model.StateMatched)

			Convey("Then the transition is refused", func() {
				So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
				So(sub.State, ShouldEqual, model.StatePending)
			})
		})

		Convey("When classification rejects immediately", func() {
			So(sub.Transition(model.StateRejected), ShouldBeNil)

			Convey("Then no further movement is possible", func() {
				So(sub.State.Terminal(), ShouldBeTrue)
				So(errors.Is(sub.Transition(model.StateClassified), model.ErrIllegalTransition), ShouldBeTrue)
			})
		})

		Convey("When extraction fails mid-pipeline", func() {
			So(sub.Transition(model.StateClassified), ShouldBeNil)
			So(sub.Transition(model.StateNeedsReview), ShouldBeNil)
			So(sub.State.Terminal(), ShouldBeTrue)
		})

		Convey("When moving backwards", func() {
			So(sub.Transition(model.StateClassified), ShouldBeNil)
			So(sub.Transition(model.StateExtracted), ShouldBeNil)
			err := sub.Transition(model.StateClassified)
			So(errors.Is(err, model.ErrIllegalTransition), ShouldBeTrue)
		})
	})
}

func TestStateTerminal(t *testing.T) {
	for _, st := range []model.State{model.StateAutoApproved, model.StateNeedsReview, model.StateRejected} {
		if !st.Terminal() {
			t.Errorf("expected %s to be terminal", st)
		}
	}
	for _, st := range []model.State{model.StatePending, model.StateClassified, model.StateExtracted, model.StateStructured, model.StateMatched} {
		if st.Terminal() {
			t.Errorf("expected %s to be non-terminal", st)
		}
	}
}
