// evaluations.go — handlers for skill ratings.
//
// Two sources feed the match-day score resolver:
//   - peer Evaluations: a full five-score card one player submits about another
//   - the SelfEvaluation: a player's own card, any subset of scores filled in
//
// Range and step validation happens here, on the way into the database. The
// resolver downstream trusts stored values to already be clean.
package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/models"
)

// SubmitEvaluationRequest is the body for POST /api/v1/events/:id/evaluations.
// All five scores are required — the rating form submits a complete card.
type SubmitEvaluationRequest struct {
	EvaluatedID string  `json:"evaluated_id"` // Who is being rated
	Defense     float64 `json:"defense"`
	Speed       float64 `json:"speed"`
	Passing     float64 `json:"passing"`
	Shooting    float64 `json:"shooting"`
	Dribbling   float64 `json:"dribbling"`
}

// validScore reports whether v is a legal rating: within [0.5, 5.0] and on a
// half-point step. Multiplying by 2 turns legal values into whole numbers.
func validScore(v float64) bool {
	return v >= 0.5 && v <= 5.0 && v*2 == math.Trunc(v*2)
}

// SubmitEvaluation returns a handler for POST /api/v1/events/:id/evaluations.
// Rating the same player again for the same event updates the existing card
// instead of stacking a duplicate.
func SubmitEvaluation(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		var req SubmitEvaluationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		evaluatedID, err := uuid.Parse(req.EvaluatedID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid evaluated_id"})
		}
		if evaluatedID == userID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "use the self-evaluation endpoint to rate yourself",
			})
		}

		for _, v := range []float64{req.Defense, req.Speed, req.Passing, req.Shooting, req.Dribbling} {
			if !validScore(v) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "scores must be between 0.5 and 5.0 in steps of 0.5",
				})
			}
		}

		// Both sides of the rating must be on this event's roster.
		if !isEventMember(db, eventID, userID) || !isEventMember(db, eventID, evaluatedID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "both players must be on the event's roster",
			})
		}

		// Upsert: one card per (event, evaluator, evaluated).
		var eval models.Evaluation
		err = db.Where("event_id = ? AND evaluator_id = ? AND evaluated_id = ?",
			eventID, userID, evaluatedID).First(&eval).Error

		eval.Defense = req.Defense
		eval.Speed = req.Speed
		eval.Passing = req.Passing
		eval.Shooting = req.Shooting
		eval.Dribbling = req.Dribbling

		if err == gorm.ErrRecordNotFound {
			eval.EventID = eventID
			eval.EvaluatorID = userID
			eval.EvaluatedID = evaluatedID
			err = db.Create(&eval).Error
		} else if err == nil {
			err = db.Save(&eval).Error
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save evaluation"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": eval.ID.String()})
	}
}

// SelfEvaluationRequest is the body for PUT /api/v1/me/self-evaluation.
// Every field is optional — players answer as much or as little as they want.
// Omitted fields are cleared, which matches the app's "save the whole form" flow.
type SelfEvaluationRequest struct {
	Defense   *float64 `json:"defense"`
	Speed     *float64 `json:"speed"`
	Passing   *float64 `json:"passing"`
	Shooting  *float64 `json:"shooting"`
	Dribbling *float64 `json:"dribbling"`
}

// UpsertSelfEvaluation returns a handler for PUT /api/v1/me/self-evaluation.
func UpsertSelfEvaluation(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var req SelfEvaluationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		for _, v := range []*float64{req.Defense, req.Speed, req.Passing, req.Shooting, req.Dribbling} {
			if v != nil && !validScore(*v) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "scores must be between 0.5 and 5.0 in steps of 0.5",
				})
			}
		}

		var selfEval models.SelfEvaluation
		err = db.Where("user_id = ?", userID).First(&selfEval).Error

		selfEval.Defense = req.Defense
		selfEval.Speed = req.Speed
		selfEval.Passing = req.Passing
		selfEval.Shooting = req.Shooting
		selfEval.Dribbling = req.Dribbling

		if err == gorm.ErrRecordNotFound {
			selfEval.UserID = userID
			err = db.Create(&selfEval).Error
		} else if err == nil {
			// Save writes all columns, so cleared (nil) scores are persisted too.
			err = db.Save(&selfEval).Error
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save self-evaluation"})
		}

		return c.JSON(fiber.Map{"id": selfEval.ID.String()})
	}
}
