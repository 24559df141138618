package minimax

import (
	"cmp"
	"context"
	"iter"
)

// WithContext returns rules that report every state as terminal once ctx
// is done, cutting the search short. States cut this way are scored with
// the wrapped Heuristic.
//
// If ctx is already done when the search starts, the root itself is
// terminal and [Search] returns no payload.
func WithContext[S, P any, V cmp.Ordered](ctx context.Context, rules Rules[S, P, V]) Rules[S, P, V] {
	return contextRules[S, P, V]{ctx: ctx, rules: rules}
}

type contextRules[S, P any, V cmp.Ordered] struct {
	ctx   context.Context
	rules Rules[S, P, V]
}

// Validate implements [Validator].
func (r contextRules[S, P, V]) Validate() error {
	if r.rules == nil {
		return missingCapability("Rules")
	}
	if v, ok := r.rules.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func (r contextRules[S, P, V]) MaxDepth() int { return r.rules.MaxDepth() }
func (r contextRules[S, P, V]) LowerBound() V { return r.rules.LowerBound() }
func (r contextRules[S, P, V]) UpperBound() V { return r.rules.UpperBound() }
func (r contextRules[S, P, V]) Heuristic(state S) V { return r.rules.Heuristic(state) }

func (r contextRules[S, P, V]) IsTerminal(state S) bool {
	return r.ctx.Err() != nil || r.rules.IsTerminal(state)
}

func (r contextRules[S, P, V]) Children(state S, player Player) iter.Seq2[S, P] {
	return r.rules.Children(state, player)
}
