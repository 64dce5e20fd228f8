// payments.go — handlers for the PIX payment flow.
//
// The flow mirrors how peladas actually collect money: the player pays the
// organizer's PIX key in their banking app, uploads the receipt screenshot to
// object storage, and submits the URL here. An organizer eyeballs the receipt
// and confirms or cancels it. No money ever moves through this API.
package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/models"
	"github.com/pelada-hub/pelada-api/internal/websocket"
)

// PaymentResponse is one payment record as the app sees it.
type PaymentResponse struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	UserID       string  `json:"user_id"`
	PlayerName   string  `json:"player_name"`
	AmountCents  int     `json:"amount_cents"`
	Status       string  `json:"status"`
	ReceiptURL   *string `json:"receipt_url"`
	ValidUntil   *string `json:"valid_until"` // "YYYY-MM-DD" or null
	ReviewerName *string `json:"reviewer_name"`
	CreatedAt    string  `json:"created_at"`
}

func paymentResponse(p models.Payment) PaymentResponse {
	var validUntil *string
	if p.ValidUntil != nil {
		s := p.ValidUntil.UTC().Format("2006-01-02")
		validUntil = &s
	}
	var reviewerName *string
	if p.Reviewer != nil {
		reviewerName = &p.Reviewer.DisplayName
	}
	return PaymentResponse{
		ID:           p.ID.String(),
		EventID:      p.EventID.String(),
		UserID:       p.UserID.String(),
		PlayerName:   p.User.DisplayName,
		AmountCents:  p.AmountCents,
		Status:       string(p.Status),
		ReceiptURL:   p.ReceiptURL,
		ValidUntil:   validUntil,
		ReviewerName: reviewerName,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SubmitPaymentRequest is the body for POST /api/v1/events/:id/payments.
type SubmitPaymentRequest struct {
	ReceiptURL string `json:"receipt_url"` // Where the receipt image was uploaded
}

// SubmitPayment returns a handler for POST /api/v1/events/:id/payments.
// The caller submits their receipt for the event's fee. The payment lands in
// "in_review" (or "pending" when no receipt URL is given yet) and waits for an
// organizer. Submitting again supersedes the previous attempt — the presence
// gate always looks at the most recent payment.
func SubmitPayment(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		var event models.Event
		if err := db.First(&event, "id = ?", eventID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		if !event.RequiresPayment {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "this event is free"})
		}
		if !isEventMember(db, eventID, userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this event"})
		}

		var req SubmitPaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		payment := models.Payment{
			EventID:     eventID,
			UserID:      userID,
			AmountCents: event.PriceCents, // Snapshot the price; the organizer may change it later
			Status:      models.PaymentStatusPending,
		}
		if req.ReceiptURL != "" {
			payment.ReceiptURL = &req.ReceiptURL
			payment.Status = models.PaymentStatusInReview
		}

		if err := db.Create(&payment).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit payment"})
		}

		db.Preload("User").First(&payment, "id = ?", payment.ID)
		return c.Status(fiber.StatusCreated).JSON(paymentResponse(payment))
	}
}

// GetEventPayments returns a handler for GET /api/v1/events/:id/payments.
// Organizers see every payment for the event; a regular player sees only their own.
func GetEventPayments(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		query := db.Preload("User").Preload("Reviewer").
			Where("event_id = ?", eventID).
			Order("created_at DESC")

		// Players only get their own history; organizers review everyone's.
		if !isEventOrganizer(db, eventID, userID, userRole) {
			query = query.Where("user_id = ?", userID)
		}

		var payments []models.Payment
		if err := query.Find(&payments).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch payments"})
		}

		response := make([]PaymentResponse, 0, len(payments))
		for _, p := range payments {
			response = append(response, paymentResponse(p))
		}
		return c.JSON(response)
	}
}

// ReviewPaymentRequest is the body for PATCH /api/v1/payments/:id/review.
type ReviewPaymentRequest struct {
	Status     string  `json:"status"`      // "confirmed", "canceled", or "refunded"
	ValidUntil *string `json:"valid_until"` // Optional "YYYY-MM-DD"; only meaningful when confirming
}

// ReviewPayment returns a handler for PATCH /api/v1/payments/:id/review.
// Organizer only. Confirming may attach a valid-until date (monthly peladas);
// the player gets a durable notification and anyone watching the event's
// websocket channel sees the update live.
func ReviewPayment(db *gorm.DB, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		paymentID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment ID"})
		}

		var req ReviewPaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		newStatus := models.PaymentStatus(req.Status)
		switch newStatus {
		case models.PaymentStatusConfirmed, models.PaymentStatusCanceled, models.PaymentStatusRefunded:
			// valid review outcomes
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "status must be 'confirmed', 'canceled', or 'refunded'",
			})
		}

		var validUntil *time.Time
		if req.ValidUntil != nil && *req.ValidUntil != "" {
			t, err := time.Parse("2006-01-02", *req.ValidUntil)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "valid_until must be in YYYY-MM-DD format",
				})
			}
			validUntil = &t
		}

		var payment models.Payment
		if err := db.Preload("User").First(&payment, "id = ?", paymentID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payment not found"})
		}

		if !isEventOrganizer(db, payment.EventID, userID, userRole) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
		}

		// Only payments waiting on a decision can be confirmed/canceled;
		// refunding is allowed from confirmed (money went back to the player).
		switch {
		case payment.Status == models.PaymentStatusInReview || payment.Status == models.PaymentStatusPending:
			// any review outcome is fine
		case payment.Status == models.PaymentStatusConfirmed && newStatus == models.PaymentStatusRefunded:
			// refund after confirmation
		default:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": fmt.Sprintf("cannot move payment from '%s' to '%s'", payment.Status, newStatus),
			})
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      newStatus,
			"reviewed_by": userID,
			"reviewed_at": now,
		}
		if newStatus == models.PaymentStatusConfirmed {
			updates["valid_until"] = validUntil // nil clears it = no expiry
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}

			// Durable copy of the review result for the player's notification feed.
			title := "Payment confirmed"
			body := "Your payment was confirmed. See you on the field!"
			if newStatus != models.PaymentStatusConfirmed {
				title = "Payment " + string(newStatus)
				body = "Your payment was " + string(newStatus) + ". Talk to the organizer if that's unexpected."
			}
			eventID := payment.EventID
			return tx.Create(&models.Notification{
				UserID:  payment.UserID,
				Kind:    models.NotificationKindPaymentReview,
				Title:   title,
				Body:    body,
				EventID: &eventID,
			}).Error
		})
		if txErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to review payment"})
		}

		// Live update for everyone watching the event (the organizer's review
		// screen, the player's payment sheet).
		update, _ := json.Marshal(fiber.Map{
			"type":       "payment_reviewed",
			"payment_id": payment.ID.String(),
			"user_id":    payment.UserID.String(),
			"status":     string(newStatus),
		})
		hub.BroadcastToEvent(payment.EventID.String(), update)

		db.Preload("User").Preload("Reviewer").First(&payment, "id = ?", payment.ID)
		return c.JSON(paymentResponse(payment))
	}
}
