// Package handlers contains HTTP route handler functions for the Pelada API.
// This file handles the /api/v1/events routes — listing, creating, and reading
// peladas, plus the PIX charge endpoint for paid events.
//
// Each exported function follows the "handler factory" pattern: it takes a *gorm.DB
// and returns a fiber.Handler (a function that handles a single HTTP request).
// This lets us inject the database without using global variables.
//
// --- Permission model ---
// Two layers of access control are used:
//
//  1. Route-level (middleware.RequireRole): controls who can call certain routes at all.
//     Any authenticated user can create a pelada and read the ones they belong to;
//     only "admin" and "manager" global roles can list every event on the platform.
//
//  2. Resource-level (isEventOrganizer, defined below): controls who can modify
//     a specific event (edit it, review payments, toggle presence, draft teams).
//     - "admin" global role → can manage ANY event (full platform access).
//     - everyone else → must hold the "organizer" event_player role for that event
//       (granted automatically when they create it, or manually by another organizer).
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/models"
	"github.com/pelada-hub/pelada-api/internal/pix"
)

// EventResponse is what we send back to the app.
// We use a dedicated response struct (instead of the raw GORM model) so we control
// exactly what fields are serialised to JSON and can add computed fields like PlayerCount.
type EventResponse struct {
	ID              string  `json:"id"`               // The event's UUID as a string
	Name            string  `json:"name"`             // Event display name
	Description     *string `json:"description"`      // Optional description; null if not set
	VenueName       string  `json:"venue_name"`       // Where the pelada happens
	VenueAddress    string  `json:"venue_address"`    // Street address (the app geocodes it for the map/weather card)
	ScheduledAt     string  `json:"scheduled_at"`     // ISO 8601 timestamp of kickoff
	Recurring       bool    `json:"recurring"`        // Weekly pelada at the same slot
	MaxPlayers      int     `json:"max_players"`      // 0 = unlimited
	RequiresPayment bool    `json:"requires_payment"` // Whether the presence gate applies
	PriceCents      int     `json:"price_cents"`      // Per-player price in centavos
	Status          string  `json:"status"`           // "upcoming", "active", "completed", "cancelled"
	CreatorName     string  `json:"creator_name"`     // Display name of the user who created the event
	PlayerCount     int64   `json:"player_count"`     // How many players are on the roster
	CreatedAt       string  `json:"created_at"`       // ISO 8601 timestamp string
}

// CreateEventRequest is the JSON body we expect on POST /api/v1/events.
type CreateEventRequest struct {
	Name            string  `json:"name"`         // Required: the pelada's name
	Description     *string `json:"description"`  // Optional: longer description
	VenueName       string  `json:"venue_name"`   // Optional: court/field name
	VenueAddress    string  `json:"venue_address"`
	ScheduledAt     string  `json:"scheduled_at"` // Required: RFC 3339 timestamp of kickoff
	Recurring       bool    `json:"recurring"`
	MaxPlayers      int     `json:"max_players"`      // 0 = unlimited
	RequiresPayment bool    `json:"requires_payment"` // If true, pix_key is required too
	PriceCents      int     `json:"price_cents"`
	PixKey          *string `json:"pix_key"`
	PixKeyType      *string `json:"pix_key_type"` // "cpf", "cnpj", "phone", "email", "random"
	PixCity         *string `json:"pix_city"`     // Merchant city for the BR Code; defaults to "SAO PAULO"
}

// eventResponse converts a preloaded Event model (Creator populated) plus its
// roster count into the response shape. Shared by the list and detail handlers.
func eventResponse(event models.Event, playerCount int64) EventResponse {
	return EventResponse{
		ID:              event.ID.String(),
		Name:            event.Name,
		Description:     event.Description,
		VenueName:       event.VenueName,
		VenueAddress:    event.VenueAddress,
		ScheduledAt:     event.ScheduledAt.UTC().Format(time.RFC3339),
		Recurring:       event.Recurring,
		MaxPlayers:      event.MaxPlayers,
		RequiresPayment: event.RequiresPayment,
		PriceCents:      event.PriceCents,
		Status:          string(event.Status),
		CreatorName:     event.Creator.DisplayName,
		PlayerCount:     playerCount,
		// Format the timestamp as ISO 8601 for easy parsing in TypeScript
		CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// GetEvents returns a handler for GET /api/v1/events.
// - Admins see all events in the system.
// - Everyone else sees only events they are an event_player of.
// - Optional query param: ?status=upcoming etc. to filter by lifecycle state.
func GetEvents(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Read the current user's ID and role from the request context.
		// These were set by the Auth middleware earlier in the request chain.
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user ID",
			})
		}

		// Optional filter: ?status=upcoming, ?status=active, ...
		statusFilter := c.Query("status") // empty string if not provided

		// Preload("Creator") tells GORM to automatically fetch the related User record
		// for each event's CreatedBy foreign key. This avoids N+1 queries.
		var events []models.Event
		query := db.Preload("Creator")

		if statusFilter != "" {
			query = query.Where("status = ?", statusFilter)
		}

		if userRole == "admin" {
			// Admins can see all events
			query = query.Find(&events)
		} else {
			// Regular users and managers only see peladas they've joined.
			// We JOIN to event_players and filter by the current user's ID.
			query = query.
				Joins("JOIN event_players ON event_players.event_id = events.id").
				Where("event_players.user_id = ?", userID).
				Find(&events)
		}

		if query.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch events",
			})
		}

		// Build the response array, adding the roster count for each event
		response := make([]EventResponse, 0, len(events))
		for _, event := range events {
			var playerCount int64
			db.Model(&models.EventPlayer{}).
				Where("event_id = ?", event.ID).
				Count(&playerCount)

			response = append(response, eventResponse(event, playerCount))
		}

		return c.JSON(response)
	}
}

// GetAllEvents returns a handler for GET /api/v1/admin/events.
// Platform staff only — the route carries RequireRole("admin", "manager"), so
// by the time this runs the caller is known to be staff. Unlike GetEvents,
// membership doesn't matter here: every event on the platform is listed,
// which is what moderation needs. Same optional ?status= filter.
func GetAllEvents(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statusFilter := c.Query("status")

		var events []models.Event
		query := db.Preload("Creator")
		if statusFilter != "" {
			query = query.Where("status = ?", statusFilter)
		}
		if err := query.Find(&events).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch events",
			})
		}

		response := make([]EventResponse, 0, len(events))
		for _, event := range events {
			var playerCount int64
			db.Model(&models.EventPlayer{}).
				Where("event_id = ?", event.ID).
				Count(&playerCount)

			response = append(response, eventResponse(event, playerCount))
		}

		return c.JSON(response)
	}
}

// GetEvent returns a handler for GET /api/v1/events/:id — a single pelada.
// Any roster member (or an admin) can read it.
func GetEvent(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user ID",
			})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid event ID",
			})
		}

		var event models.Event
		if err := db.Preload("Creator").First(&event, "id = ?", eventID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "event not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch event",
			})
		}

		// Non-admins must be on the roster to see the event's details.
		if userRole != "admin" && !isEventMember(db, eventID, userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not a member of this event",
			})
		}

		var playerCount int64
		db.Model(&models.EventPlayer{}).Where("event_id = ?", event.ID).Count(&playerCount)

		return c.JSON(eventResponse(event, playerCount))
	}
}

// CreateEvent returns a handler for POST /api/v1/events.
// Any authenticated user can create a pelada — creating one makes them its organizer.
func CreateEvent(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Read the creator's internal UUID from the request context
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user ID",
			})
		}

		// Parse the JSON request body into our request struct.
		// c.BodyParser reads the body and unmarshals JSON fields that match struct tags.
		var req CreateEventRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		// Validate required fields
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name is required",
			})
		}

		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "scheduled_at must be an RFC 3339 timestamp",
			})
		}

		// A paid pelada needs somewhere for the money to go.
		if req.RequiresPayment {
			if req.PriceCents <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "price_cents must be positive for a paid event",
				})
			}
			if req.PixKey == nil || *req.PixKey == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "pix_key is required for a paid event",
				})
			}
		}

		var pixKeyType *models.PixKeyType
		if req.PixKeyType != nil {
			switch models.PixKeyType(*req.PixKeyType) {
			case models.PixKeyTypeCPF, models.PixKeyTypeCNPJ, models.PixKeyTypePhone,
				models.PixKeyTypeEmail, models.PixKeyTypeRandom:
				t := models.PixKeyType(*req.PixKeyType)
				pixKeyType = &t
			default:
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "pix_key_type must be 'cpf', 'cnpj', 'phone', 'email', or 'random'",
				})
			}
		}

		// --- Create the event record ---
		// We use a database transaction so that if the event_player insert fails,
		// the event itself is also rolled back — preventing orphaned event records.
		var createdEvent models.Event

		txErr := db.Transaction(func(tx *gorm.DB) error {
			// Build the Event struct — GORM will INSERT this row
			event := models.Event{
				Name:            req.Name,
				Description:     req.Description,
				VenueName:       req.VenueName,
				VenueAddress:    req.VenueAddress,
				ScheduledAt:     scheduledAt,
				Recurring:       req.Recurring,
				MaxPlayers:      req.MaxPlayers,
				RequiresPayment: req.RequiresPayment,
				PriceCents:      req.PriceCents,
				PixKey:          req.PixKey,
				PixKeyType:      pixKeyType,
				PixCity:         req.PixCity,
				Status:          models.EventStatusUpcoming,
				CreatedBy:       userID, // Foreign key pointing to the creator's users.id
			}

			// tx.Create() runs an INSERT and populates event.ID with the new UUID
			if err := tx.Create(&event).Error; err != nil {
				return err // Returning an error causes the transaction to roll back
			}

			// --- Add the creator as an event organizer ---
			// Every pelada must have at least one organizer — the creator gets that role.
			// The organizer can edit the event, review payments, and draft the teams.
			player := models.EventPlayer{
				EventID:    event.ID,
				UserID:     userID,
				Role:       models.EventPlayerRoleOrganizer, // creator = organizer
				RSVPStatus: models.RSVPStatusConfirmed,      // and obviously they're coming
			}
			if err := tx.Create(&player).Error; err != nil {
				return err
			}

			// Store the created event so we can reference it outside the transaction
			createdEvent = event
			return nil // Returning nil commits the transaction
		})

		if txErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create event",
			})
		}

		// Fetch the creator's display name for the response
		var creator models.User
		db.First(&creator, "id = ?", userID)
		createdEvent.Creator = creator

		// Return the newly created event with HTTP 201 Created
		return c.Status(fiber.StatusCreated).JSON(eventResponse(createdEvent, 1))
	}
}

// GetEventPixCharge returns a handler for GET /api/v1/events/:id/pix.
// It renders the "copia e cola" BR Code payload for the event's PIX key and price
// so the app can show a copy button next to the payment instructions.
func GetEventPixCharge(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid user ID",
			})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid event ID",
			})
		}

		var event models.Event
		if err := db.Preload("Creator").First(&event, "id = ?", eventID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "event not found",
			})
		}

		if userRole != "admin" && !isEventMember(db, eventID, userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not a member of this event",
			})
		}

		if !event.RequiresPayment || event.PixKey == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "this event does not collect payments",
			})
		}

		city := "SAO PAULO" // EMV requires a merchant city; most peladas never set one
		if event.PixCity != nil && *event.PixCity != "" {
			city = *event.PixCity
		}

		payload, err := pix.Charge{
			Key:          *event.PixKey,
			MerchantName: event.Creator.DisplayName,
			City:         city,
			AmountCents:  event.PriceCents,
		}.Payload()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to build pix charge",
			})
		}

		return c.JSON(fiber.Map{
			"payload":      payload,
			"amount_cents": event.PriceCents,
		})
	}
}

// currentUser reads the authenticated user's UUID and global role out of the
// request context, where the Auth middleware stored them.
func currentUser(c *fiber.Ctx) (uuid.UUID, string, error) {
	userIDStr, _ := c.Locals("userID").(string)
	userRole, _ := c.Locals("userRole").(string)
	userID, err := uuid.Parse(userIDStr)
	return userID, userRole, err
}

// isEventMember reports whether a user is on the event's roster at all,
// in any role and any RSVP state.
func isEventMember(db *gorm.DB, eventID, userID uuid.UUID) bool {
	var count int64
	db.Model(&models.EventPlayer{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count)
	return count > 0
}

// isEventOrganizer reports whether a user has permission to manage a specific event.
//
// Two-tier permission model:
//   - Global "admin" role → can manage ANY event (platform-wide access).
//   - Everyone else (including global "manager") → must hold the "organizer"
//     event_player role for THIS specific event.
//
// Usage: call this at the start of any handler that modifies an event.
//
//	if !isEventOrganizer(db, eventID, userID, userRole) {
//	    return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
//	}
func isEventOrganizer(db *gorm.DB, eventID, userID uuid.UUID, userRole string) bool {
	// Global admins bypass all event-level checks
	if userRole == "admin" {
		return true
	}

	// All other roles (manager, user) must be explicitly an organizer of this event.
	// We look up their event_player row and check the role column.
	var player models.EventPlayer
	err := db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&player).Error
	return err == nil && player.Role == models.EventPlayerRoleOrganizer
}
