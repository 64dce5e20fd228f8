// followers.go — the friend graph: following another peladeiro puts their
// upcoming peladas in your feed and lets organizers invite from their circle.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/models"
)

// FollowerResponse is one user in a followers/following list.
type FollowerResponse struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// FollowUser returns a handler for POST /api/v1/users/:id/follow.
// Following is one-directional and idempotent — following twice is a no-op.
func FollowUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		followedID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user ID"})
		}
		if followedID == userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot follow yourself"})
		}

		var followed models.User
		if err := db.First(&followed, "id = ?", followedID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		// Already following? Then there's nothing to do.
		var existing int64
		db.Model(&models.Follower{}).
			Where("follower_id = ? AND followed_id = ?", userID, followedID).
			Count(&existing)
		if existing > 0 {
			return c.JSON(fiber.Map{"following": true})
		}

		var follower models.User
		db.First(&follower, "id = ?", userID)

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Follower{
				FollowerID: userID,
				FollowedID: followedID,
			}).Error; err != nil {
				return err
			}
			// Tell the followed user about their new follower.
			return tx.Create(&models.Notification{
				UserID: followedID,
				Kind:   models.NotificationKindNewFollower,
				Title:  "New follower",
				Body:   follower.DisplayName + " is now following you",
			}).Error
		})
		if txErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to follow user"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"following": true})
	}
}

// UnfollowUser returns a handler for DELETE /api/v1/users/:id/follow.
func UnfollowUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		followedID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user ID"})
		}

		if err := db.Where("follower_id = ? AND followed_id = ?", userID, followedID).
			Delete(&models.Follower{}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unfollow user"})
		}

		return c.JSON(fiber.Map{"following": false})
	}
}

// GetFollowers returns a handler for GET /api/v1/users/:id/followers —
// who follows this user.
func GetFollowers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var users []models.User
		if err := db.
			Joins("JOIN followers ON followers.follower_id = users.id").
			Where("followers.followed_id = ?", targetID).
			Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch followers"})
		}

		return c.JSON(userList(users))
	}
}

// GetFollowing returns a handler for GET /api/v1/users/:id/following —
// who this user follows.
func GetFollowing(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var users []models.User
		if err := db.
			Joins("JOIN followers ON followers.followed_id = users.id").
			Where("followers.follower_id = ?", targetID).
			Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch following"})
		}

		return c.JSON(userList(users))
	}
}

func userList(users []models.User) []FollowerResponse {
	response := make([]FollowerResponse, 0, len(users))
	for _, u := range users {
		response = append(response, FollowerResponse{
			UserID:      u.ID.String(),
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
		})
	}
	return response
}
