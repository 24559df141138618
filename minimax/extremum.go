package minimax

import "cmp"

// Extremum keeps the best scored candidate offered so far, along with the
// payload that came with it.
type Extremum[V cmp.Ordered, P any] struct {
	better  func(a, b V) bool
	value   V
	payload P
	set     bool
}

// TrackMax returns an Extremum that keeps the maximum value.
func TrackMax[V cmp.Ordered, P any]() *Extremum[V, P] {
	return &Extremum[V, P]{better: func(a, b V) bool { return a > b }}
}

// TrackMin returns an Extremum that keeps the minimum value.
func TrackMin[V cmp.Ordered, P any]() *Extremum[V, P] {
	return &Extremum[V, P]{better: func(a, b V) bool { return a < b }}
}

// Offer records value and payload if nothing was offered yet or if value is
// strictly better than the current best. Ties keep the earlier offer.
func (e *Extremum[V, P]) Offer(value V, payload P) {
	if e.set && !e.better(value, e.value) {
		return
	}
	e.value = value
	e.payload = payload
	e.set = true
}

// Value returns the best value offered so far.
// If nothing was offered, returns false.
func (e *Extremum[V, P]) Value() (V, bool) {
	return e.value, e.set
}

// Payload returns the payload of the best value offered so far.
// If nothing was offered, returns false.
func (e *Extremum[V, P]) Payload() (P, bool) {
	return e.payload, e.set
}
