package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pelada-hub/pelada-api/internal/matchday/scoring"
)

func f(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	Convey("Given a player with peer evaluations", t, func() {
		in := scoring.Input{
			Evaluations: []scoring.Card{
				{Defense: 4.0, Speed: 4.0, Passing: 4.0, Shooting: 4.0, Dribbling: 4.0}, // mean 4.0
				{Defense: 2.0, Speed: 2.5, Passing: 3.0, Shooting: 3.5, Dribbling: 4.0}, // mean 3.0
			},
			Self: scoring.SelfCard{Defense: f(1.0)}, // should be ignored in historic mode
		}

		Convey("Historic mode averages the per-evaluation means", func() {
			So(scoring.Resolve(in, scoring.ModeHistoric), ShouldAlmostEqual, 3.5)
		})

		Convey("Self mode skips the evaluations entirely", func() {
			So(scoring.Resolve(in, scoring.ModeSelf), ShouldAlmostEqual, 1.0)
		})
	})

	Convey("Given a player with no evaluations but a partial self-rating", t, func() {
		in := scoring.Input{
			Self: scoring.SelfCard{Defense: f(4.0), Speed: f(2.0)},
		}

		Convey("Historic mode falls back to the self-rating mean", func() {
			So(scoring.Resolve(in, scoring.ModeHistoric), ShouldAlmostEqual, 3.0)
		})

		Convey("Self mode averages only the filled-in sub-scores", func() {
			So(scoring.Resolve(in, scoring.ModeSelf), ShouldAlmostEqual, 3.0)
		})
	})

	Convey("Given a player with no evaluations and no self-rating", t, func() {
		in := scoring.Input{}

		Convey("Both modes resolve to the fixed default, never an error", func() {
			So(scoring.Resolve(in, scoring.ModeHistoric), ShouldEqual, scoring.DefaultScore)
			So(scoring.Resolve(in, scoring.ModeSelf), ShouldEqual, scoring.DefaultScore)
		})
	})

	Convey("Given any valid input, the result stays within the rating scale", t, func() {
		inputs := []scoring.Input{
			{},
			{Evaluations: []scoring.Card{{Defense: 0.5, Speed: 0.5, Passing: 0.5, Shooting: 0.5, Dribbling: 0.5}}},
			{Evaluations: []scoring.Card{{Defense: 5.0, Speed: 5.0, Passing: 5.0, Shooting: 5.0, Dribbling: 5.0}}},
			{Self: scoring.SelfCard{Dribbling: f(5.0)}},
			{Self: scoring.SelfCard{Defense: f(0.5), Speed: f(0.5), Passing: f(0.5), Shooting: f(0.5), Dribbling: f(0.5)}},
		}
		for _, in := range inputs {
			for _, mode := range []scoring.Mode{scoring.ModeHistoric, scoring.ModeSelf} {
				got := scoring.Resolve(in, mode)
				So(got, ShouldBeGreaterThanOrEqualTo, 0.5)
				So(got, ShouldBeLessThanOrEqualTo, 5.0)
			}
		}
	})

	Convey("Given an unrecognized mode string", t, func() {
		in := scoring.Input{
			Evaluations: []scoring.Card{{Defense: 3.0, Speed: 3.0, Passing: 3.0, Shooting: 3.0, Dribbling: 3.0}},
		}

		Convey("It behaves like historic mode", func() {
			So(scoring.Resolve(in, scoring.Mode("whatever")), ShouldAlmostEqual, 3.0)
		})
	})
}

func TestCardMean(t *testing.T) {
	Convey("A card's mean averages all five sub-scores", t, func() {
		c := scoring.Card{Defense: 1.0, Speed: 2.0, Passing: 3.0, Shooting: 4.0, Dribbling: 5.0}
		So(c.Mean(), ShouldAlmostEqual, 3.0)
	})

	Convey("A self card with nothing filled in reports not-applicable", t, func() {
		_, ok := scoring.SelfCard{}.Mean()
		So(ok, ShouldBeFalse)
	})
}
