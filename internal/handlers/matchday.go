// matchday.go — the match-day draft: turn the present roster into balanced teams.
//
// The handler assembles the candidate pool (confirmed RSVP + organizer-confirmed
// presence), resolves one skill score per player, runs the serpentine balancer,
// and persists the result — replacing any previous draft for the event — before
// notifying every drafted player which color vest to grab.
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pelada-hub/pelada-api/internal/matchday/balancer"
	"github.com/pelada-hub/pelada-api/internal/matchday/scoring"
	"github.com/pelada-hub/pelada-api/internal/models"
	"github.com/pelada-hub/pelada-api/internal/websocket"
)

// minPlayersPerTeam is the smallest side the draft accepts. Below three a
// "team" stops being one, so the handler rejects the request before the
// balancer ever sees it — the balancer itself only guards against zero.
const minPlayersPerTeam = 3

// DraftTeamsRequest is the body for POST /api/v1/events/:id/teams/draft.
type DraftTeamsRequest struct {
	PlayersPerTeam int    `json:"players_per_team"` // Target side size; the last team may run short
	ScoreMode      string `json:"score_mode"`       // "historic" (default) or "self"
}

// TeamResponse is one drafted team in API shape.
type TeamResponse struct {
	ID           string               `json:"id"`
	TeamNumber   int                  `json:"team_number"`
	ColorLabel   string               `json:"color_label"`
	AverageScore float64              `json:"average_score"`
	Players      []TeamPlayerResponse `json:"players"` // In pick order
	OpenSlots    int                  `json:"open_slots"`
}

// TeamPlayerResponse is one drafted player.
type TeamPlayerResponse struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// DraftTeams returns a handler for POST /api/v1/events/:id/teams/draft.
// Organizer only. Re-running the draft replaces the event's previous teams.
func DraftTeams(db *gorm.DB, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userRole, err := currentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		eventID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event ID"})
		}

		if !isEventOrganizer(db, eventID, userID, userRole) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized"})
		}

		var req DraftTeamsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		// These are the balancer's preconditions, enforced here at the boundary:
		// by the time Generate runs, its inputs are already known to be sane.
		if req.PlayersPerTeam < minPlayersPerTeam {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("players_per_team must be at least %d", minPlayersPerTeam),
			})
		}

		mode := scoring.ModeHistoric // the app's default toggle state
		switch req.ScoreMode {
		case "", string(scoring.ModeHistoric):
			// keep historic
		case string(scoring.ModeSelf):
			mode = scoring.ModeSelf
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "score_mode must be 'historic' or 'self'",
			})
		}

		// --- Assemble the candidate pool ---
		// Confirmed RSVP plus the organizer's presence checkbox. Order matters:
		// roster order is the tie-break for equal scores, so we pin it to
		// join order to keep the draft reproducible.
		var roster []models.EventPlayer
		if err := db.Preload("User").
			Where("event_id = ? AND rsvp_status = ? AND presence_confirmed = ?",
				eventID, models.RSVPStatusConfirmed, true).
			Order("created_at ASC").
			Find(&roster).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch roster"})
		}

		if len(roster) == 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "no present players to draft — confirm presence first",
			})
		}

		// --- Resolve one score per player ---
		// A player's evaluation history spans all their peladas, not just this
		// one — skill doesn't reset per event.
		scored := make([]balancer.Player, 0, len(roster))
		for _, p := range roster {
			input, err := loadScoreInput(db, p.UserID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load evaluations"})
			}
			scored = append(scored, balancer.Player{
				ID:          p.UserID.String(),
				DisplayName: p.User.DisplayName,
				Score:       scoring.Resolve(input, mode),
			})
		}

		teams, err := balancer.Generate(scored, req.PlayersPerTeam)
		if err != nil {
			// Unreachable given the checks above; surfacing it anyway beats hiding it.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		// --- Persist, replacing the previous draft ---
		// Delete-then-insert in one transaction so a failed draft never leaves
		// the event half with old teams, half with new ones.
		var saved []models.Team
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var oldTeamIDs []uuid.UUID
			if err := tx.Model(&models.Team{}).
				Where("event_id = ?", eventID).
				Pluck("id", &oldTeamIDs).Error; err != nil {
				return err
			}
			if len(oldTeamIDs) > 0 {
				if err := tx.Where("team_id IN ?", oldTeamIDs).Delete(&models.TeamMember{}).Error; err != nil {
					return err
				}
				if err := tx.Where("event_id = ?", eventID).Delete(&models.Team{}).Error; err != nil {
					return err
				}
			}

			for _, t := range teams {
				team := models.Team{
					EventID:      eventID,
					TeamNumber:   t.TeamNumber,
					ColorLabel:   t.ColorLabel,
					AverageScore: t.AverageScore,
				}
				if err := tx.Create(&team).Error; err != nil {
					return err
				}

				for i, p := range t.Players {
					memberID, err := uuid.Parse(p.ID)
					if err != nil {
						return err
					}
					member := models.TeamMember{
						TeamID:    team.ID,
						UserID:    memberID,
						Score:     p.Score,
						PickOrder: i + 1,
					}
					if err := tx.Create(&member).Error; err != nil {
						return err
					}

					// "You are on team X" — the durable notification each
					// player sees even if they weren't watching live.
					eID := eventID
					note := models.Notification{
						UserID:  memberID,
						Kind:    models.NotificationKindTeamAssigned,
						Title:   fmt.Sprintf("You're on team %d (%s)", t.TeamNumber, t.ColorLabel),
						Body:    fmt.Sprintf("Teams are out! Grab a %s vest.", t.ColorLabel),
						EventID: &eID,
					}
					if err := tx.Create(&note).Error; err != nil {
						return err
					}
				}
				saved = append(saved, team)
			}
			return nil
		})
		if txErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save teams"})
		}

		response := teamResponses(saved, teams, req.PlayersPerTeam)

		// Live update for everyone on the event's channel.
		update, _ := json.Marshal(fiber.Map{
			"type":  "teams_published",
			"teams": response,
		})
		hub.BroadcastToEvent(eventID.String(), update)

		return c.Status(fiber.StatusCreated).JSON(response)
	}
}

// GetTeams returns a handler for GET /api/v1/events/:id/teams — the latest draft.
func GetTeams(db *gorm.DB) fiber.Handler {
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

		var dbTeams []models.Team
		if err := db.Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("pick_order ASC")
		}).Preload("Members.User").
			Where("event_id = ?", eventID).
			Order("team_number ASC").
			Find(&dbTeams).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch teams"})
		}

		response := make([]TeamResponse, 0, len(dbTeams))
		for _, team := range dbTeams {
			players := make([]TeamPlayerResponse, 0, len(team.Members))
			for _, m := range team.Members {
				players = append(players, TeamPlayerResponse{
					UserID:      m.UserID.String(),
					DisplayName: m.User.DisplayName,
					Score:       m.Score,
				})
			}
			response = append(response, TeamResponse{
				ID:           team.ID.String(),
				TeamNumber:   team.TeamNumber,
				ColorLabel:   team.ColorLabel,
				AverageScore: team.AverageScore,
				Players:      players,
			})
		}
		return c.JSON(response)
	}
}

// loadScoreInput gathers a user's peer evaluation history and self-evaluation
// into the score resolver's input shape.
func loadScoreInput(db *gorm.DB, userID uuid.UUID) (scoring.Input, error) {
	var evals []models.Evaluation
	if err := db.Where("evaluated_id = ?", userID).
		Order("created_at ASC").
		Find(&evals).Error; err != nil {
		return scoring.Input{}, err
	}

	input := scoring.Input{Evaluations: make([]scoring.Card, 0, len(evals))}
	for _, e := range evals {
		input.Evaluations = append(input.Evaluations, scoring.Card{
			Defense:   e.Defense,
			Speed:     e.Speed,
			Passing:   e.Passing,
			Shooting:  e.Shooting,
			Dribbling: e.Dribbling,
		})
	}

	var selfEval models.SelfEvaluation
	err := db.Where("user_id = ?", userID).First(&selfEval).Error
	if err == nil {
		input.Self = scoring.SelfCard{
			Defense:   selfEval.Defense,
			Speed:     selfEval.Speed,
			Passing:   selfEval.Passing,
			Shooting:  selfEval.Shooting,
			Dribbling: selfEval.Dribbling,
		}
	} else if err != gorm.ErrRecordNotFound {
		return scoring.Input{}, err
	}

	return input, nil
}

// teamResponses merges the persisted team rows (for their IDs) with the
// balancer's output (for player order) into the API shape. Open slots show the
// uneven tail: how many more players the team could take at the requested size.
func teamResponses(saved []models.Team, teams []balancer.Team, playersPerTeam int) []TeamResponse {
	response := make([]TeamResponse, 0, len(teams))
	for i, t := range teams {
		players := make([]TeamPlayerResponse, 0, len(t.Players))
		for _, p := range t.Players {
			players = append(players, TeamPlayerResponse{
				UserID:      p.ID,
				DisplayName: p.DisplayName,
				Score:       p.Score,
			})
		}
		open := playersPerTeam - len(t.Players)
		if open < 0 {
			open = 0
		}
		response = append(response, TeamResponse{
			ID:           saved[i].ID.String(),
			TeamNumber:   t.TeamNumber,
			ColorLabel:   t.ColorLabel,
			AverageScore: t.AverageScore,
			Players:      players,
			OpenSlots:    open,
		})
	}
	return response
}
