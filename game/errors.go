package game

import (
	"errors"
	"fmt"
)

var (
	// ErrGameOver is returned when a move is made on a terminal state.
	ErrGameOver = errors.New("game: the game is already over")
	// ErrInvalidDimensions is returned when a board cannot be created with
	// the given width, height and win length.
	ErrInvalidDimensions = errors.New("game: invalid board dimensions")
)

// OutOfBoundsError is returned when a position lies outside the board.
type OutOfBoundsError struct {
	Width, Height int
	Pos           Pos
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"game: position should be inside the board (width: %d, height: %d, x: %d, y: %d)",
		e.Width, e.Height, e.Pos.X, e.Pos.Y)
}

// InvalidDirectionError is returned when walking in a direction that isn't
// horizontal, vertical or diagonal.
type InvalidDirectionError struct {
	DX, DY int
}

func (e *InvalidDirectionError) Error() string {
	if e.DX == 0 && e.DY == 0 {
		return "game: direction can't be (0, 0)"
	}
	return fmt.Sprintf("game: direction components can only be -1, 0 or 1, not (%d, %d)", e.DX, e.DY)
}

// ReservedMarkError is returned when a move is made with a mark that is
// reserved for outcomes or empty cells.
type ReservedMarkError struct {
	Mark Mark
}

func (e *ReservedMarkError) Error() string {
	return fmt.Sprintf("game: mark %q is reserved", string(e.Mark))
}

// OccupiedCellError is returned when a move is made on a non-empty cell.
type OccupiedCellError struct {
	Pos Pos
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("game: the cell (%d, %d) is already set", e.Pos.X, e.Pos.Y)
}
