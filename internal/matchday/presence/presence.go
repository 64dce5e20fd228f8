// Package presence decides whether a participant may change their RSVP status,
// based on whether the event charges a fee and where the player's most recent
// payment sits in its review lifecycle.
//
// The gate is pure classification: it never mutates anything. Payments change
// state through the payment-review handler, and validity expires through the
// passage of time — the gate just reads the current picture and answers
// yes or no with a machine-readable reason.
package presence

import (
	"fmt"
	"time"

	// clockwork lets tests pin "today" to a fixed date instead of depending on
	// real wall-clock time. Production wiring passes a real clock.
	"github.com/jonboulle/clockwork"

	"github.com/pelada-hub/pelada-api/internal/models"
)

// Reason identifies which policy rule produced the decision.
type Reason string

const (
	ReasonFreeEvent             Reason = "FREE_EVENT"
	ReasonNoPayment             Reason = "NO_PAYMENT"
	ReasonPaymentPending        Reason = "PAYMENT_PENDING"
	ReasonPaymentInReview       Reason = "PAYMENT_IN_REVIEW"
	ReasonPaymentCanceled       Reason = "PAYMENT_CANCELED"
	ReasonPaymentRefunded       Reason = "PAYMENT_REFUNDED"
	ReasonPaymentConfirmed      Reason = "PAYMENT_CONFIRMED"
	ReasonPaymentConfirmedValid Reason = "PAYMENT_CONFIRMED_VALID"
	ReasonPaymentExpired        Reason = "PAYMENT_EXPIRED"
)

// PaymentState is the read-only snapshot of a player's most recent payment for
// an event. ValidUntil is optional: nil means a confirmed payment never expires.
type PaymentState struct {
	Status     models.PaymentStatus
	ValidUntil *time.Time
}

// Decision is the gate's answer: whether the RSVP change is allowed, the policy
// rule that matched, and a human-readable message for the app to show.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Gate evaluates the payment policy. It holds only a clock — no other state —
// so a single Gate is safe to share across concurrent requests.
type Gate struct {
	clock clockwork.Clock
}

// NewGate builds a gate on the given clock. Pass nil to use the real wall clock.
func NewGate(clock clockwork.Clock) *Gate {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gate{clock: clock}
}

// Check applies the policy rules in order; the first match wins.
//
//	free event                          → allowed  (FREE_EVENT)
//	paid, no payment record             → denied   (NO_PAYMENT)
//	paid, pending / in_review           → denied   (waiting on receipt or review)
//	paid, canceled / refunded           → denied   (player must pay again)
//	paid, confirmed, no expiry          → allowed  (PAYMENT_CONFIRMED)
//	paid, confirmed, expires today+     → allowed  (PAYMENT_CONFIRMED_VALID)
//	paid, confirmed, expired            → denied   (PAYMENT_EXPIRED)
//
// "Today" is read from the clock on every call — never cached — because the
// answer for a payment expiring at midnight genuinely changes between calls.
// Dates compare by calendar day in UTC; time-of-day is ignored.
func (g *Gate) Check(eventRequiresPayment bool, state *PaymentState) Decision {
	if !eventRequiresPayment {
		return Decision{true, ReasonFreeEvent, "free event, no payment needed"}
	}
	if state == nil {
		return Decision{false, ReasonNoPayment, "no payment found for this event"}
	}

	switch state.Status {
	case models.PaymentStatusPending:
		return Decision{false, ReasonPaymentPending, "payment started but no receipt submitted yet"}
	case models.PaymentStatusInReview:
		return Decision{false, ReasonPaymentInReview, "receipt is waiting for the organizer's review"}
	case models.PaymentStatusCanceled:
		return Decision{false, ReasonPaymentCanceled, "payment was canceled, submit a new one"}
	case models.PaymentStatusRefunded:
		return Decision{false, ReasonPaymentRefunded, "payment was refunded, submit a new one"}
	case models.PaymentStatusConfirmed:
		return g.checkConfirmed(state.ValidUntil)
	default:
		// Unknown status strings deny, same as having no usable record.
		return Decision{false, ReasonNoPayment, "no usable payment found for this event"}
	}
}

// checkConfirmed handles the three confirmed-payment rows of the policy table.
func (g *Gate) checkConfirmed(validUntil *time.Time) Decision {
	if validUntil == nil {
		return Decision{true, ReasonPaymentConfirmed, "payment confirmed"}
	}

	today := calendarDay(g.clock.Now())
	expiry := calendarDay(*validUntil)

	if expiry.Before(today) {
		return Decision{false, ReasonPaymentExpired,
			fmt.Sprintf("payment expired on %s", expiry.Format("2006-01-02"))}
	}

	msg := "payment confirmed"
	// Nudge players whose payment runs out within a week.
	if days := int(expiry.Sub(today).Hours() / 24); days <= 7 {
		switch days {
		case 0:
			msg = "payment confirmed, expires today"
		case 1:
			msg = "payment confirmed, 1 day remaining"
		default:
			msg = fmt.Sprintf("payment confirmed, %d days remaining", days)
		}
	}
	return Decision{true, ReasonPaymentConfirmedValid, msg}
}

// calendarDay strips the time-of-day, normalizing to midnight UTC so that
// comparisons work by date regardless of the stored timestamp's zone.
func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
