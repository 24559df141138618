package game

import "iter"

// Walker walks the cells of a board outward from an anchor cell, one axis
// at a time. It is used to count the run of equal marks through a cell
// without scanning the whole board.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	width, height int
	anchor        Pos
	stopped       bool
}

// NewWalker creates a walker anchored at the given position.
// If the anchor lies outside the board, returns an [*OutOfBoundsError].
func NewWalker(width, height int, anchor Pos) (*Walker, error) {
	w := &Walker{width: width, height: height, anchor: anchor}
	if !w.contains(anchor) {
		return nil, &OutOfBoundsError{Width: width, Height: height, Pos: anchor}
	}
	return w, nil
}

func (w *Walker) contains(p Pos) bool {
	return p.X >= 0 && p.X < w.width && p.Y >= 0 && p.Y < w.height
}

// Walk returns the cells along the axis (dx, dy). It yields the anchor,
// then every cell in direction (dx, dy) up to the board's edge, then every
// cell in direction (-dx, -dy) up to the opposite edge.
//
// dx and dy can only be -1, 0 or 1 and can't both be 0, otherwise an
// [*InvalidDirectionError] is returned.
func (w *Walker) Walk(dx, dy int) (iter.Seq[Pos], error) {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
		return nil, &InvalidDirectionError{DX: dx, DY: dy}
	}

	return func(yield func(Pos) bool) {
		if !yield(w.anchor) {
			return
		}
		for _, sign := range [2]int{1, -1} {
			w.stopped = false
			step := Pos{dx * sign, dy * sign}
			for p := w.anchor.Add(step); !w.stopped && w.contains(p); p = p.Add(step) {
				if !yield(p) {
					return
				}
			}
		}
	}, nil
}

// Reverse stops the direction being walked. Walking continues from the
// anchor in the opposite direction, or ends if that was already walked.
// Reverse has no effect on the anchor itself.
func (w *Walker) Reverse() {
	w.stopped = true
}
