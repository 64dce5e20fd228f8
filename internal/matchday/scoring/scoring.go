// Package scoring reduces a player's evaluation history and self-assessment into
// a single comparable skill score. The match-day draft calls Resolve for every
// player on the roster and hands the scores to the team balancer.
//
// Resolution is a chain of strategies tried in order — first one that produces a
// value wins, and the chain always ends in a fixed default, so Resolve is total:
// it never errors and never returns a value outside [0.5, 5.0].
package scoring

// DefaultScore is the terminal fallback for players with no peer evaluations and
// no self-evaluation — the midpoint of the 0.5–5.0 rating scale.
const DefaultScore = 2.5

// Mode selects which score source to prefer.
type Mode string

const (
	// ModeHistoric averages the player's peer evaluations, falling back to the
	// self-evaluation (and then the default) when there are none.
	ModeHistoric Mode = "historic"
	// ModeSelf ignores peer evaluations and uses only the self-evaluation.
	ModeSelf Mode = "self"
)

// Card is one complete peer evaluation: five sub-scores, each in [0.5, 5.0] in
// 0.5 steps. Range and step are validated at the HTTP boundary when the rating
// is submitted — this package treats its input as already clean.
type Card struct {
	Defense   float64
	Speed     float64
	Passing   float64
	Shooting  float64
	Dribbling float64
}

// Mean is the average of the card's five sub-scores.
func (c Card) Mean() float64 {
	return (c.Defense + c.Speed + c.Passing + c.Shooting + c.Dribbling) / 5
}

// SelfCard is a self-reported rating. Players can fill in any subset of the five
// sub-scores, so each one is a pointer — nil means "didn't answer".
type SelfCard struct {
	Defense   *float64
	Speed     *float64
	Passing   *float64
	Shooting  *float64
	Dribbling *float64
}

// Mean averages whichever sub-scores are present. The bool is false when none are.
func (c SelfCard) Mean() (float64, bool) {
	var sum float64
	var n int
	for _, v := range []*float64{c.Defense, c.Speed, c.Passing, c.Shooting, c.Dribbling} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Input is everything known about one player's skill: their peer evaluation
// history and their self-evaluation. Either or both may be empty.
type Input struct {
	Evaluations []Card
	Self        SelfCard
}

// strategy tries to produce a score from the input. The bool reports whether the
// strategy applies; when false the resolver moves on to the next one.
type strategy func(Input) (float64, bool)

// historicMean averages the per-evaluation means across all peer evaluations.
// Each evaluation contributes equally regardless of when it was submitted.
func historicMean(in Input) (float64, bool) {
	if len(in.Evaluations) == 0 {
		return 0, false
	}
	var sum float64
	for _, e := range in.Evaluations {
		sum += e.Mean()
	}
	return sum / float64(len(in.Evaluations)), true
}

// selfMean averages the filled-in self-evaluation sub-scores.
func selfMean(in Input) (float64, bool) {
	return in.Self.Mean()
}

// fixedDefault always applies. It terminates every chain.
func fixedDefault(Input) (float64, bool) {
	return DefaultScore, true
}

// Resolve computes the player's skill score for the given mode.
//
// ModeHistoric degrades gracefully: no peer evaluations → self-evaluation →
// DefaultScore. ModeSelf skips straight to the self-evaluation. An unrecognized
// mode behaves like ModeHistoric, which is the app's default toggle state.
func Resolve(in Input, mode Mode) float64 {
	var chain []strategy
	if mode == ModeSelf {
		chain = []strategy{selfMean, fixedDefault}
	} else {
		chain = []strategy{historicMean, selfMean, fixedDefault}
	}
	for _, try := range chain {
		if score, ok := try(in); ok {
			return score
		}
	}
	// Unreachable: every chain ends in fixedDefault.
	return DefaultScore
}
