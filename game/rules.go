package game

import (
	"fmt"
	"iter"

	"github.com/twipi/twinrow/minimax"
)

const (
	// Host is the mark played by the maximizing side in [DefaultRules].
	Host Mark = "host"
	// Opponent is the mark played by the minimizing side in [DefaultRules].
	Opponent Mark = "opponent"
)

// DefaultDepth is the search depth of [DefaultRules].
const DefaultDepth = 5

// Scores returned by [Rules.Heuristic].
const (
	ScoreLoss    = 0
	ScorePending = 1
	ScoreDraw    = 2
	ScoreWin     = 3
)

// Rules adapts [State] to [minimax.Rules]. Max plays the Max mark and Min
// plays the Min mark. Only the outcome of the last move is scored, so
// non-terminal states reached at the depth limit all score the same.
type Rules struct {
	Max   Mark
	Min   Mark
	Depth int
}

var (
	_ minimax.Rules[*State, Pos, int] = (*Rules)(nil)
	_ minimax.Validator               = (*Rules)(nil)
)

// DefaultRules returns rules for [Host] against [Opponent] searching
// [DefaultDepth] plies.
func DefaultRules() *Rules {
	return &Rules{Max: Host, Min: Opponent, Depth: DefaultDepth}
}

// Validate implements [minimax.Validator].
func (r *Rules) Validate() error {
	for _, m := range []Mark{r.Max, r.Min} {
		if m.IsReserved() {
			return &minimax.ConfigurationError{
				Reason: fmt.Sprintf("mark %q is reserved", string(m)),
			}
		}
	}
	if r.Max == r.Min {
		return &minimax.ConfigurationError{
			Reason: fmt.Sprintf("both players use the mark %q", string(r.Max)),
		}
	}
	return nil
}

// Mark returns the mark played by p.
func (r *Rules) Mark(p minimax.Player) Mark {
	if p == minimax.Max {
		return r.Max
	}
	return r.Min
}

// Player returns the side playing m. If m is neither mark, returns false.
func (r *Rules) Player(m Mark) (minimax.Player, bool) {
	switch m {
	case r.Max:
		return minimax.Max, true
	case r.Min:
		return minimax.Min, true
	default:
		return 0, false
	}
}

func (r *Rules) MaxDepth() int   { return r.Depth }
func (r *Rules) LowerBound() int { return ScoreLoss - 1 }
func (r *Rules) UpperBound() int { return ScoreWin + 1 }

func (r *Rules) Heuristic(s *State) int {
	switch s.Outcome() {
	case r.Min:
		return ScoreLoss
	case Draw:
		return ScoreDraw
	case r.Max:
		return ScoreWin
	default:
		return ScorePending
	}
}

func (r *Rules) IsTerminal(s *State) bool {
	return s.IsTerminal()
}

// Children yields the state after each possible move of p, with the
// position of that move.
func (r *Rules) Children(s *State, p minimax.Player) iter.Seq2[*State, Pos] {
	mark := r.Mark(p)
	return func(yield func(*State, Pos) bool) {
		for pos := range s.EmptyCells() {
			child, err := s.ApplyMove(pos.X, pos.Y, mark)
			if err != nil {
				// Only a terminal state or a reserved mark gets here, neither of
				// which has children.
				return
			}
			if !yield(child, pos) {
				return
			}
		}
	}
}
