// Package minimax implements minimax search with alpha-beta pruning for
// two-player zero-sum games.
package minimax

import (
	"cmp"
	"fmt"
)

// MaxDepthLimit is the largest MaxDepth a [Rules] may report.
const MaxDepthLimit = 1024

// Player is the side being optimized.
type Player int8

const (
	Min Player = -1
	Max Player = 1
)

// String returns the string representation of the player.
func (p Player) String() string {
	switch p {
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return fmt.Sprintf("Player(%d)", int8(p))
	}
}

// Opponent returns the other player.
func (p Player) Opponent() Player {
	return -p
}

// Search returns the payload of the optimal move for player in state.
// If state is terminal, returns false.
//
// The rules are checked before searching: a nil rules, a failing
// [Validator], an empty bounds interval, an unknown player or an out of range
// max depth all return a [*ConfigurationError]. A non-terminal state without
// children returns a [*NoSuccessorsError].
//
// Among equally scored moves, the first one yielded by [Rules.Children] wins.
func Search[S, P any, V cmp.Ordered](state S, player Player, rules Rules[S, P, V]) (P, bool, error) {
	var none P

	if rules == nil {
		return none, false, missingCapability("Rules")
	}
	if v, ok := rules.(Validator); ok {
		if err := v.Validate(); err != nil {
			return none, false, err
		}
	}

	lower, upper := rules.LowerBound(), rules.UpperBound()
	if !(lower < upper) {
		return none, false, &ConfigurationError{
			Reason: fmt.Sprintf("lower bound should be less than upper bound (now lower=%v, upper=%v)", lower, upper),
		}
	}

	depth := rules.MaxDepth()
	if depth < 0 || depth > MaxDepthLimit {
		return none, false, &ConfigurationError{
			Capability: "MaxDepth",
			Reason:     fmt.Sprintf("max depth %d is outside [0, %d]", depth, MaxDepthLimit),
		}
	}

	s := searcher[S, P, V]{rules: rules, maxDepth: depth}

	var (
		payload P
		ok      bool
		err     error
	)
	switch player {
	case Max:
		_, payload, ok, err = s.maxValue(state, lower, upper, 0)
	case Min:
		_, payload, ok, err = s.minValue(state, lower, upper, 0)
	default:
		return none, false, &ConfigurationError{
			Reason: fmt.Sprintf("player can only be %v or %v, not %v", Max, Min, player),
		}
	}
	if err != nil {
		return none, false, err
	}
	return payload, ok, nil
}

type searcher[S, P any, V cmp.Ordered] struct {
	rules    Rules[S, P, V]
	maxDepth int
}

func (s *searcher[S, P, V]) maxValue(state S, alpha, beta V, depth int) (V, P, bool, error) {
	var none P

	if s.rules.IsTerminal(state) || depth > s.maxDepth {
		return s.rules.Heuristic(state), none, false, nil
	}

	best := TrackMax[V, P]()
	for child, payload := range s.rules.Children(state, Max) {
		value, _, _, err := s.minValue(child, alpha, beta, depth+1)
		if err != nil {
			return value, none, false, err
		}
		if value >= beta {
			return value, payload, true, nil
		}
		best.Offer(value, payload)
		alpha, _ = best.Value()
	}

	return s.result(state, best)
}

func (s *searcher[S, P, V]) minValue(state S, alpha, beta V, depth int) (V, P, bool, error) {
	var none P

	if s.rules.IsTerminal(state) || depth > s.maxDepth {
		return s.rules.Heuristic(state), none, false, nil
	}

	best := TrackMin[V, P]()
	for child, payload := range s.rules.Children(state, Min) {
		value, _, _, err := s.maxValue(child, alpha, beta, depth+1)
		if err != nil {
			return value, none, false, err
		}
		if value <= alpha {
			return value, payload, true, nil
		}
		best.Offer(value, payload)
		beta, _ = best.Value()
	}

	return s.result(state, best)
}

func (s *searcher[S, P, V]) result(state S, best *Extremum[V, P]) (V, P, bool, error) {
	value, ok := best.Value()
	payload, _ := best.Payload()
	if !ok {
		return value, payload, false, &NoSuccessorsError[S]{State: state, Rules: s.rules}
	}
	return value, payload, true, nil
}
