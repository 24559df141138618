package minimax

import (
	"cmp"
	"iter"
)

// Rules translates a game's states into the primitives the search needs.
// S is the state type, P the payload reported for a move and V the score.
type Rules[S, P any, V cmp.Ordered] interface {
	// MaxDepth returns the number of plies explored before states are
	// evaluated with Heuristic regardless of terminality.
	MaxDepth() int
	// LowerBound returns a score below anything Heuristic can return.
	LowerBound() V
	// UpperBound returns a score above anything Heuristic can return.
	UpperBound() V
	// Heuristic scores the state. Greater is better for Max.
	Heuristic(state S) V
	// IsTerminal returns true if the game has ended in the state.
	IsTerminal(state S) bool
	// Children yields every state reachable by one move of player, along
	// with the payload describing that move. It must yield at least one
	// state for any non-terminal state.
	Children(state S, player Player) iter.Seq2[S, P]
}

// Validator is implemented by rules that can check themselves before a
// search starts. A non-nil error aborts the search.
type Validator interface {
	Validate() error
}

// Funcs implements [Rules] with function fields. A nil field is a missing
// capability and is reported by [Funcs.Validate].
type Funcs[S, P any, V cmp.Ordered] struct {
	LowerBoundFunc func() V
	UpperBoundFunc func() V
	MaxDepthFunc   func() int
	HeuristicFunc  func(state S) V
	IsTerminalFunc func(state S) bool
	ChildrenFunc   func(state S, player Player) iter.Seq2[S, P]
}

var _ Validator = Funcs[any, any, int]{}

// Validate implements [Validator].
func (f Funcs[S, P, V]) Validate() error {
	for _, c := range []struct {
		name    string
		missing bool
	}{
		{"LowerBound", f.LowerBoundFunc == nil},
		{"UpperBound", f.UpperBoundFunc == nil},
		{"MaxDepth", f.MaxDepthFunc == nil},
		{"Heuristic", f.HeuristicFunc == nil},
		{"IsTerminal", f.IsTerminalFunc == nil},
		{"Children", f.ChildrenFunc == nil},
	} {
		if c.missing {
			return missingCapability(c.name)
		}
	}
	return nil
}

func (f Funcs[S, P, V]) MaxDepth() int { return f.MaxDepthFunc() }
func (f Funcs[S, P, V]) LowerBound() V { return f.LowerBoundFunc() }
func (f Funcs[S, P, V]) UpperBound() V { return f.UpperBoundFunc() }
func (f Funcs[S, P, V]) Heuristic(state S) V { return f.HeuristicFunc(state) }
func (f Funcs[S, P, V]) IsTerminal(state S) bool { return f.IsTerminalFunc(state) }

func (f Funcs[S, P, V]) Children(state S, player Player) iter.Seq2[S, P] {
	return f.ChildrenFunc(state, player)
}
