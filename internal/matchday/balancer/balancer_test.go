package balancer_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pelada-hub/pelada-api/internal/matchday/balancer"
)

// roster builds n players named p1..pn with the given descending scores.
func roster(scores ...float64) []balancer.Player {
	players := make([]balancer.Player, len(scores))
	for i, s := range scores {
		players[i] = balancer.Player{
			ID:          fmt.Sprintf("p%d", i+1),
			DisplayName: fmt.Sprintf("Player %d", i+1),
			Score:       s,
		}
	}
	return players
}

func TestGenerateSerpentine(t *testing.T) {
	Convey("Given 7 players with descending scores into teams of 3", t, func() {
		teams, err := balancer.Generate(roster(5.0, 4.5, 4.0, 3.5, 3.0, 2.5, 2.0), 3)
		So(err, ShouldBeNil)

		Convey("It produces ceil(7/3) = 3 teams", func() {
			So(teams, ShouldHaveLength, 3)
		})

		Convey("The walk reflects at the edges: index sequence 0,1,2,2,1,0,0", func() {
			// Team 1 gets picks 1, 6, 7; team 2 gets picks 2, 5; team 3 gets picks 3, 4.
			So(scoresOf(teams[0]), ShouldResemble, []float64{5.0, 2.5, 2.0})
			So(scoresOf(teams[1]), ShouldResemble, []float64{4.5, 3.0})
			So(scoresOf(teams[2]), ShouldResemble, []float64{4.0, 3.5})
		})

		Convey("Team numbers are 1-based and sequential", func() {
			for i, team := range teams {
				So(team.TeamNumber, ShouldEqual, i+1)
			}
		})

		Convey("Average scores come out of the assignment", func() {
			So(teams[0].AverageScore, ShouldAlmostEqual, (5.0+2.5+2.0)/3)
			So(teams[1].AverageScore, ShouldAlmostEqual, (4.5+3.0)/2)
			So(teams[2].AverageScore, ShouldAlmostEqual, (4.0+3.5)/2)
		})
	})
}

func TestGenerateProperties(t *testing.T) {
	Convey("Given rosters of assorted sizes", t, func() {
		sizes := []int{1, 3, 6, 7, 10, 11, 22, 30}

		for _, n := range sizes {
			n := n
			Convey(fmt.Sprintf("A roster of %d players into teams of 5", n), func() {
				scores := make([]float64, n)
				for i := range scores {
					// Repeating scores on purpose, to exercise the tie-break.
					scores[i] = float64(i%9)/2 + 0.5
				}
				in := roster(scores...)

				teams, err := balancer.Generate(in, 5)
				So(err, ShouldBeNil)

				Convey("Team count follows the ceiling formula", func() {
					So(teams, ShouldHaveLength, (n+4)/5)
				})

				Convey("Every player lands in exactly one team", func() {
					seen := map[string]int{}
					total := 0
					for _, team := range teams {
						total += len(team.Players)
						for _, p := range team.Players {
							seen[p.ID]++
						}
					}
					So(total, ShouldEqual, n)
					for _, p := range in {
						So(seen[p.ID], ShouldEqual, 1)
					}
				})

				Convey("A second run produces the identical assignment", func() {
					again, err := balancer.Generate(in, 5)
					So(err, ShouldBeNil)
					So(again, ShouldResemble, teams)
				})
			})
		}
	})
}

func TestGenerateTies(t *testing.T) {
	Convey("Given players with equal scores", t, func() {
		in := roster(3.0, 3.0, 3.0, 3.0)

		Convey("Ties keep their roster order", func() {
			teams, err := balancer.Generate(in, 2)
			So(err, ShouldBeNil)
			So(teams, ShouldHaveLength, 2)
			// Walk is 0,1,1,0 for 4 players into 2 teams.
			So(idsOf(teams[0]), ShouldResemble, []string{"p1", "p4"})
			So(idsOf(teams[1]), ShouldResemble, []string{"p2", "p3"})
		})
	})
}

func TestGenerateColors(t *testing.T) {
	Convey("Given more teams than palette colors", t, func() {
		// 33 players in teams of 3 → 11 teams against a 10-color palette.
		scores := make([]float64, 33)
		for i := range scores {
			scores[i] = 2.5
		}
		teams, err := balancer.Generate(roster(scores...), 3)
		So(err, ShouldBeNil)
		So(teams, ShouldHaveLength, 11)

		Convey("Colors cycle by (teamNumber - 1) mod palette size", func() {
			for _, team := range teams {
				So(team.ColorLabel, ShouldEqual, balancer.Palette[(team.TeamNumber-1)%len(balancer.Palette)])
			}
			// The 11th team wraps around to the first color.
			So(teams[10].ColorLabel, ShouldEqual, balancer.Palette[0])
		})
	})

	Convey("The palette has at least 8 distinct colors", t, func() {
		So(len(balancer.Palette), ShouldBeGreaterThanOrEqualTo, 8)
		distinct := map[string]bool{}
		for _, c := range balancer.Palette {
			distinct[c] = true
		}
		So(len(distinct), ShouldEqual, len(balancer.Palette))
	})
}

func TestGeneratePreconditions(t *testing.T) {
	Convey("An empty roster is rejected", t, func() {
		_, err := balancer.Generate(nil, 3)
		So(err, ShouldEqual, balancer.ErrEmptyRoster)
	})

	Convey("A players-per-team below 1 is rejected", t, func() {
		_, err := balancer.Generate(roster(3.0), 0)
		So(err, ShouldEqual, balancer.ErrInvalidTeamSize)
	})

	Convey("A single team just collects everyone in score order", t, func() {
		teams, err := balancer.Generate(roster(2.0, 4.0, 3.0), 5)
		So(err, ShouldBeNil)
		So(teams, ShouldHaveLength, 1)
		So(scoresOf(teams[0]), ShouldResemble, []float64{4.0, 3.0, 2.0})
	})

	Convey("The caller's roster slice is left untouched", t, func() {
		in := roster(1.0, 5.0, 3.0)
		_, err := balancer.Generate(in, 2)
		So(err, ShouldBeNil)
		So(in[0].Score, ShouldEqual, 1.0)
		So(in[1].Score, ShouldEqual, 5.0)
		So(in[2].Score, ShouldEqual, 3.0)
	})
}

func scoresOf(t balancer.Team) []float64 {
	out := make([]float64, len(t.Players))
	for i, p := range t.Players {
		out[i] = p.Score
	}
	return out
}

func idsOf(t balancer.Team) []string {
	out := make([]string, len(t.Players))
	for i, p := range t.Players {
		out[i] = p.ID
	}
	return out
}
