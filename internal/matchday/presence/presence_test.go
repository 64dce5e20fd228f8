package presence_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/pelada-hub/pelada-api/internal/matchday/presence"
	"github.com/pelada-hub/pelada-api/internal/models"
)

// A fixed "now" so every case below is reproducible: 2025-06-15 14:30 UTC.
var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func gateAt(t time.Time) *presence.Gate {
	return presence.NewGate(clockwork.NewFakeClockAt(t))
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCheckFreeEvent(t *testing.T) {
	Convey("Given an event that doesn't charge", t, func() {
		gate := gateAt(now)

		Convey("Any payment state is allowed through", func() {
			states := []*presence.PaymentState{
				nil,
				{Status: models.PaymentStatusPending},
				{Status: models.PaymentStatusCanceled},
				{Status: models.PaymentStatusConfirmed, ValidUntil: date(2020, 1, 1)},
			}
			for _, state := range states {
				d := gate.Check(false, state)
				So(d.Allowed, ShouldBeTrue)
				So(d.Reason, ShouldEqual, presence.ReasonFreeEvent)
			}
		})
	})
}

func TestCheckUnpaid(t *testing.T) {
	Convey("Given a paid event", t, func() {
		gate := gateAt(now)

		Convey("A player with no payment record is blocked", func() {
			d := gate.Check(true, nil)
			So(d.Allowed, ShouldBeFalse)
			So(d.Reason, ShouldEqual, presence.ReasonNoPayment)
		})

		Convey("Each non-confirmed status maps to its own reason", func() {
			cases := map[models.PaymentStatus]presence.Reason{
				models.PaymentStatusPending:  presence.ReasonPaymentPending,
				models.PaymentStatusInReview: presence.ReasonPaymentInReview,
				models.PaymentStatusCanceled: presence.ReasonPaymentCanceled,
				models.PaymentStatusRefunded: presence.ReasonPaymentRefunded,
			}
			for status, reason := range cases {
				d := gate.Check(true, &presence.PaymentState{Status: status})
				So(d.Allowed, ShouldBeFalse)
				So(d.Reason, ShouldEqual, reason)
			}
		})

		Convey("An unknown status denies rather than panics", func() {
			d := gate.Check(true, &presence.PaymentState{Status: "garbage"})
			So(d.Allowed, ShouldBeFalse)
		})
	})
}

func TestCheckConfirmed(t *testing.T) {
	Convey("Given a paid event and a confirmed payment", t, func() {
		gate := gateAt(now)

		Convey("No expiry date means valid forever", func() {
			d := gate.Check(true, &presence.PaymentState{Status: models.PaymentStatusConfirmed})
			So(d.Allowed, ShouldBeTrue)
			So(d.Reason, ShouldEqual, presence.ReasonPaymentConfirmed)
		})

		Convey("An expiry far in the future is valid with no countdown", func() {
			d := gate.Check(true, &presence.PaymentState{
				Status:     models.PaymentStatusConfirmed,
				ValidUntil: date(2025, 7, 15),
			})
			So(d.Allowed, ShouldBeTrue)
			So(d.Reason, ShouldEqual, presence.ReasonPaymentConfirmedValid)
			So(d.Message, ShouldEqual, "payment confirmed")
		})

		Convey("An expiry within seven days puts the countdown in the message", func() {
			d := gate.Check(true, &presence.PaymentState{
				Status:     models.PaymentStatusConfirmed,
				ValidUntil: date(2025, 6, 18),
			})
			So(d.Allowed, ShouldBeTrue)
			So(d.Reason, ShouldEqual, presence.ReasonPaymentConfirmedValid)
			So(d.Message, ShouldEqual, "payment confirmed, 3 days remaining")
		})

		Convey("An expiry today still counts — comparison is by calendar day", func() {
			// ValidUntil carries an earlier time-of-day than "now"; the date is
			// what matters, so this is valid until midnight.
			expiry := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
			d := gate.Check(true, &presence.PaymentState{
				Status:     models.PaymentStatusConfirmed,
				ValidUntil: &expiry,
			})
			So(d.Allowed, ShouldBeTrue)
			So(d.Message, ShouldEqual, "payment confirmed, expires today")
		})

		Convey("An expiry yesterday blocks the change", func() {
			d := gate.Check(true, &presence.PaymentState{
				Status:     models.PaymentStatusConfirmed,
				ValidUntil: date(2025, 6, 14),
			})
			So(d.Allowed, ShouldBeFalse)
			So(d.Reason, ShouldEqual, presence.ReasonPaymentExpired)
		})
	})
}

func TestCheckReadsClockEveryCall(t *testing.T) {
	Convey("Given a payment that expires tomorrow", t, func() {
		clock := clockwork.NewFakeClockAt(now)
		gate := presence.NewGate(clock)
		state := &presence.PaymentState{
			Status:     models.PaymentStatusConfirmed,
			ValidUntil: date(2025, 6, 16),
		}

		Convey("It is valid today", func() {
			So(gate.Check(true, state).Allowed, ShouldBeTrue)
		})

		Convey("After two days pass on the same gate, the same state is expired", func() {
			clock.Advance(48 * time.Hour)
			d := gate.Check(true, state)
			So(d.Allowed, ShouldBeFalse)
			So(d.Reason, ShouldEqual, presence.ReasonPaymentExpired)
		})
	})
}
