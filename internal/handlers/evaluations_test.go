package handlers

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidScore(t *testing.T) {
	Convey("Scores on half-point steps within the scale are accepted", t, func() {
		for v := 0.5; v <= 5.0; v += 0.5 {
			So(validScore(v), ShouldBeTrue)
		}
	})

	Convey("Everything else is rejected", t, func() {
		for _, v := range []float64{0, 0.4, 0.75, 3.2, 5.5, -1, 100} {
			So(validScore(v), ShouldBeFalse)
		}
	})
}
