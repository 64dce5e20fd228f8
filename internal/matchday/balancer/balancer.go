// Package balancer partitions a scored roster into teams of roughly equal skill
// using a serpentine (zig-zag) draft. It is deliberately a fast, explainable
// heuristic rather than an optimal partition — good enough for an informal
// pelada, and deterministic so re-running the draft with the same roster always
// produces the same teams.
package balancer

import (
	"errors"
	"sort"
)

// Palette is the fixed set of vest colors assigned to teams, cycling by
// (teamNumber - 1) mod len(Palette). With more teams than colors, colors repeat;
// that's allowed — nobody brings eleven distinct vest colors to a pelada.
var Palette = []string{
	"yellow", "blue", "red", "green",
	"orange", "purple", "white", "black",
	"gray", "teal",
}

// Errors returned for the two precondition violations. Both are
// programming-contract errors: the handler validates user input (minimum roster
// size, players-per-team >= 3) before calling Generate, so hitting these means
// the caller skipped its own validation.
var (
	ErrEmptyRoster     = errors.New("balancer: roster is empty")
	ErrInvalidTeamSize = errors.New("balancer: players per team must be at least 1")
)

// Player is one presence-confirmed roster entry with its resolved skill score.
type Player struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Team is one drafted side.
type Team struct {
	TeamNumber   int      `json:"team_number"`   // 1-based
	ColorLabel   string   `json:"color_label"`   // Vest color from Palette
	Players      []Player `json:"players"`       // In pick order
	AverageScore float64  `json:"average_score"` // 0 when the team is empty
}

// Generate splits the roster into ceil(len(roster)/playersPerTeam) teams.
//
// The draft sorts players by score, strongest first (ties keep their roster
// order, so the result is fully deterministic), then deals them out one at a
// time walking the team list forward and backward. At each edge the walk
// reflects rather than skips: the edge team receives a second consecutive pick
// before the direction reverses. For 7 players into 3 teams the team index
// sequence is 0,1,2,2,1,0,0 — team 0 ends up with the best player plus the two
// weakest, keeping cumulative skill close across teams.
//
// Uneven tail sizes (roster not a multiple of playersPerTeam) are expected and
// surfaced as open slots, never an error.
func Generate(roster []Player, playersPerTeam int) ([]Team, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if playersPerTeam < 1 {
		return nil, ErrInvalidTeamSize
	}

	// Ceiling division; roster is non-empty so numTeams >= 1.
	numTeams := (len(roster) + playersPerTeam - 1) / playersPerTeam

	// Sort a copy so the caller's slice keeps its original order.
	sorted := make([]Player, len(roster))
	copy(sorted, roster)
	// SliceStable keeps equal scores in roster order — the tie-break rule.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	teams := make([]Team, numTeams)
	for i := range teams {
		teams[i] = Team{
			TeamNumber: i + 1,
			ColorLabel: Palette[i%len(Palette)],
			Players:    []Player{},
		}
	}

	// The serpentine walk. After each pick the index tries to advance by dir;
	// when that would leave the team list it stays put for one pick and the
	// direction flips. With a single team the index just stays at 0.
	idx, dir := 0, 1
	for _, p := range sorted {
		teams[idx].Players = append(teams[idx].Players, p)
		next := idx + dir
		if next < 0 || next >= numTeams {
			dir = -dir
		} else {
			idx = next
		}
	}

	for i := range teams {
		teams[i].AverageScore = average(teams[i].Players)
	}
	return teams, nil
}

// average is the mean score of a team's players, 0 for an empty team.
func average(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	var sum float64
	for _, p := range players {
		sum += p.Score
	}
	return sum / float64(len(players))
}
