// notifications.go — the authenticated user's notification feed.
// Rows are written by other handlers (payment review, team draft, follows);
// these endpoints just read the feed and mark entries as seen.
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/models"
)

// NotificationResponse is one feed entry.
type NotificationResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	EventID   *string `json:"event_id"` // Deep-link target, when there is one
	Read      bool    `json:"read"`
	CreatedAt string  `json:"created_at"`
}

// GetNotifications returns a handler for GET /api/v1/me/notifications.
// Newest first. Optional ?unread=true narrows to unseen entries.
func GetNotifications(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		query := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
		if c.Query("unread") == "true" {
			query = query.Where("read = ?", false)
		}

		var notifications []models.Notification
		if err := query.Find(&notifications).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch notifications"})
		}

		response := make([]NotificationResponse, 0, len(notifications))
		for _, n := range notifications {
			var eventID *string
			if n.EventID != nil {
				s := n.EventID.String()
				eventID = &s
			}
			response = append(response, NotificationResponse{
				ID:        n.ID.String(),
				Kind:      string(n.Kind),
				Title:     n.Title,
				Body:      n.Body,
				EventID:   eventID,
				Read:      n.Read,
				CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return c.JSON(response)
	}
}

// MarkNotificationRead returns a handler for PATCH /api/v1/notifications/:id/read.
// Users can only mark their own notifications — the WHERE clause enforces it.
func MarkNotificationRead(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		notificationID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification ID"})
		}

		result := db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Update("read", true)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update notification"})
		}
		if result.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}

		return c.JSON(fiber.Map{"read": true})
	}
}
