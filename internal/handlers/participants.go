// participants.go — handlers for an event's roster:
//   - joining a pelada (which creates the event_player row)
//   - listing the roster, with optional fuzzy name search
//   - a player changing their own RSVP (gated by the payment presence gate)
//   - an organizer toggling a player's match-day presence flag
package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	// fuzzy gives typo-tolerant name matching for the roster search box,
	// so "ze" still finds "Zé Carlos".
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/matchday/presence"
	"github.com/pelada-hub/pelada-api/internal/models"
)

// PlayerResponse is one roster entry as the app sees it.
type PlayerResponse struct {
	ID                string  `json:"id"` // event_player UUID
	UserID            string  `json:"user_id"`
	DisplayName       string  `json:"display_name"`
	AvatarURL         *string `json:"avatar_url"`
	Position          *string `json:"position"` // Preferred field position; informational only
	Role              string  `json:"role"`     // "organizer" or "player"
	RSVPStatus        string  `json:"rsvp_status"`
	PresenceConfirmed bool    `json:"presence_confirmed"`
}

func playerResponse(p models.EventPlayer) PlayerResponse {
	var position *string
	if p.User.Position != nil {
		s := string(*p.User.Position)
		position = &s
	}
	return PlayerResponse{
		ID:                p.ID.String(),
		UserID:            p.UserID.String(),
		DisplayName:       p.User.DisplayName,
		AvatarURL:         p.User.AvatarURL,
		Position:          position,
		Role:              string(p.Role),
		RSVPStatus:        string(p.RSVPStatus),
		PresenceConfirmed: p.PresenceConfirmed,
	}
}

// GetEventPlayers returns a handler for GET /api/v1/events/:id/players.
// Optional query param ?search= filters the roster by fuzzy-matched display name.
func GetEventPlayers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		if userRole != "admin" && !isEventMember(db, eventID, userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a member of this event"})
		}

		var players []models.EventPlayer
		if err := db.Preload("User").
			Where("event_id = ?", eventID).
			Order("created_at ASC").
			Find(&players).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
		}

		// Fuzzy search happens in memory — rosters are dozens of players, not
		// millions, so there's no point pushing this into SQL.
		search := strings.TrimSpace(c.Query("search"))

		response := make([]PlayerResponse, 0, len(players))
		for _, p := range players {
			if search != "" && !fuzzy.MatchNormalizedFold(search, p.User.DisplayName) {
				continue
			}
			response = append(response, playerResponse(p))
		}

		return c.JSON(response)
	}
}

// JoinEvent returns a handler for POST /api/v1/events/:id/players.
// The caller adds themselves to the roster. If the event has a player cap and
// it's already full, they're waitlisted instead of confirmed.
func JoinEvent(db *gorm.DB) fiber.Handler {
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

		if isEventMember(db, eventID, userID) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already on the roster"})
		}

		// Decide confirmed vs waitlisted based on the cap. Only confirmed RSVPs
		// count against MaxPlayers — declined and waitlisted players don't hold spots.
		status := models.RSVPStatusConfirmed
		if event.MaxPlayers > 0 {
			var confirmed int64
			db.Model(&models.EventPlayer{}).
				Where("event_id = ? AND rsvp_status = ?", eventID, models.RSVPStatusConfirmed).
				Count(&confirmed)
			if confirmed >= int64(event.MaxPlayers) {
				status = models.RSVPStatusWaitlisted
			}
		}

		player := models.EventPlayer{
			EventID:    eventID,
			UserID:     userID,
			Role:       models.EventPlayerRolePlayer,
			RSVPStatus: status,
		}
		if err := db.Create(&player).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join event"})
		}

		db.Preload("User").First(&player, "id = ?", player.ID)
		return c.Status(fiber.StatusCreated).JSON(playerResponse(player))
	}
}

// UpdateRSVPRequest is the body for PATCH /api/v1/events/:id/rsvp.
type UpdateRSVPRequest struct {
	RSVPStatus string `json:"rsvp_status"` // "confirmed" or "declined"
}

// UpdateRSVP returns a handler for PATCH /api/v1/events/:id/rsvp.
// The caller changes their own answer. For paid events the presence gate decides
// whether the change is allowed based on their latest payment; when it denies,
// the response carries the gate's reason code and message so the app can explain
// exactly what's missing.
func UpdateRSVP(db *gorm.DB, gate *presence.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		var req UpdateRSVPRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		switch models.RSVPStatus(req.RSVPStatus) {
		case models.RSVPStatusConfirmed, models.RSVPStatusDeclined:
			// valid — players can only answer yes or no; waitlisting is the
			// server's decision and "invited" is the starting state
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "rsvp_status must be 'confirmed' or 'declined'",
			})
		}

		var event models.Event
		if err := db.First(&event, "id = ?", eventID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}

		var player models.EventPlayer
		if err := db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&player).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not on the roster"})
		}

		// The payment gate: consult the player's most recent payment for this
		// event and let the policy table decide.
		decision := gate.Check(event.RequiresPayment, latestPaymentState(db, eventID, userID))
		if !decision.Allowed {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":   decision.Message,
				"reason":  decision.Reason,
				"allowed": false,
			})
		}

		if err := db.Model(&player).Update("rsvp_status", models.RSVPStatus(req.RSVPStatus)).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update rsvp"})
		}
		player.RSVPStatus = models.RSVPStatus(req.RSVPStatus)

		db.Preload("User").First(&player, "id = ?", player.ID)
		return c.JSON(fiber.Map{
			"player": playerResponse(player),
			"reason": decision.Reason,
		})
	}
}

// UpdatePresenceRequest is the body for PATCH /api/v1/events/:id/players/:playerID/presence.
type UpdatePresenceRequest struct {
	PresenceConfirmed bool `json:"presence_confirmed"`
}

// UpdatePresence returns a handler for PATCH /api/v1/events/:id/players/:playerID/presence.
// Organizer only: the match-day checkbox marking whether a player actually showed
// up. The draft only considers players with this flag set.
func UpdatePresence(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}
		playerID, err := uuid.Parse(c.Params("playerID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid player ID"})
		}

		if !isEventOrganizer(db, eventID, userID, userRole) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
		}

		var req UpdatePresenceRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		var player models.EventPlayer
		if err := db.Where("id = ? AND event_id = ?", playerID, eventID).First(&player).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}

		if err := db.Model(&player).Update("presence_confirmed", req.PresenceConfirmed).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update presence"})
		}
		player.PresenceConfirmed = req.PresenceConfirmed

		db.Preload("User").First(&player, "id = ?", player.ID)
		return c.JSON(playerResponse(player))
	}
}

// latestPaymentState loads the player's most recent payment for the event as the
// presence gate's input. Returns nil when they've never started a payment —
// which the gate treats as its own policy row, not an error.
func latestPaymentState(db *gorm.DB, eventID, userID uuid.UUID) *presence.PaymentState {
	var payment models.Payment
	err := db.Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil
	}
	return &presence.PaymentState{
		Status:     payment.Status,
		ValidUntil: payment.ValidUntil,
	}
}
