// Package game implements an N-in-a-row game on a rectangular board, such
// as Tic-Tac-Toe or Gomoku.
package game

import (
	"fmt"
	"iter"
	"strings"
)

// Mark identifies whose piece occupies a cell.
// It doubles as the outcome of the last move, see [State.Outcome].
type Mark string

const (
	// Empty is the mark of a cell nobody has played.
	Empty Mark = ""
	// Pending is the outcome of a move that neither won nor drew the game.
	Pending Mark = "nothing"
	// Draw is the outcome of a move that filled the board without a winner.
	Draw Mark = "draw"
)

// IsReserved returns true if the mark can't be played.
func (m Mark) IsReserved() bool {
	return m == Empty || m == Pending || m == Draw
}

// Pos is a position on the board.
type Pos struct {
	X, Y int
}

// Add returns the position moved by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{p.X + d.X, p.Y + d.Y}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// axes are the directions checked for a winning run, opposite directions
// being walked by the same [Walker.Walk] call.
var axes = [4]Pos{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// State is an immutable snapshot of a board. Making a move returns a new
// State, so a State can be shared freely, including across goroutines.
type State struct {
	width     int
	height    int
	winLength int
	cells     []Mark // indexed by x*height + y
	empty     int
	outcome   Mark
}

// MaxCells is the largest number of cells a board may have.
const MaxCells = 1 << 16

// NewState creates an empty board. winLength is the number of marks in a
// row needed to win.
func NewState(width, height, winLength int) (*State, error) {
	if width <= 0 || height <= 0 || width > MaxCells/height ||
		winLength <= 0 || winLength > max(width, height) {
		return nil, fmt.Errorf(
			"%w: width %d, height %d, win length %d",
			ErrInvalidDimensions, width, height, winLength)
	}
	return &State{
		width:     width,
		height:    height,
		winLength: winLength,
		cells:     make([]Mark, width*height),
		empty:     width * height,
		outcome:   Pending,
	}, nil
}

// NewStateFromGrid creates a board holding the marks in grid, indexed as
// grid[x][y]. The outcome of the returned state is [Pending] regardless of
// the marks.
func NewStateFromGrid(width, height, winLength int, grid [][]Mark) (*State, error) {
	s, err := NewState(width, height, winLength)
	if err != nil {
		return nil, err
	}
	if len(grid) != width {
		return nil, fmt.Errorf("%w: grid has %d columns, want %d", ErrInvalidDimensions, len(grid), width)
	}
	for x, col := range grid {
		if len(col) != height {
			return nil, fmt.Errorf("%w: grid column %d has %d cells, want %d", ErrInvalidDimensions, x, len(col), height)
		}
		for y, m := range col {
			if m == Empty {
				continue
			}
			if m.IsReserved() {
				return nil, &ReservedMarkError{Mark: m}
			}
			s.cells[s.index(Pos{x, y})] = m
			s.empty--
		}
	}
	return s, nil
}

func (s *State) index(p Pos) int {
	return p.X*s.height + p.Y
}

func (s *State) contains(p Pos) bool {
	return p.X >= 0 && p.X < s.width && p.Y >= 0 && p.Y < s.height
}

// Width returns the number of columns.
func (s *State) Width() int { return s.width }

// Height returns the number of rows.
func (s *State) Height() int { return s.height }

// WinLength returns the number of marks in a row needed to win.
func (s *State) WinLength() int { return s.winLength }

// Moves returns the number of occupied cells.
func (s *State) Moves() int { return len(s.cells) - s.empty }

// At returns the mark at the given position.
// If the position is outside the board, returns [Empty].
func (s *State) At(x, y int) Mark {
	p := Pos{x, y}
	if !s.contains(p) {
		return Empty
	}
	return s.cells[s.index(p)]
}

// Outcome returns the result of the move that produced this state: the
// winner's mark, [Draw] or [Pending].
func (s *State) Outcome() Mark {
	return s.outcome
}

// IsTerminal returns true if the game has ended.
func (s *State) IsTerminal() bool {
	return s.outcome != Pending
}

// Grid returns a copy of the board's marks, indexed as grid[x][y].
func (s *State) Grid() [][]Mark {
	grid := make([][]Mark, s.width)
	for x := range grid {
		grid[x] = append([]Mark(nil), s.cells[x*s.height:(x+1)*s.height]...)
	}
	return grid
}

// EmptyCells returns the positions of the empty cells, ordered by x, then
// by y.
func (s *State) EmptyCells() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for x := range s.width {
			for y := range s.height {
				if s.cells[s.index(Pos{x, y})] == Empty && !yield(Pos{x, y}) {
					return
				}
			}
		}
	}
}

// ApplyMove places mark at (x, y) and returns the resulting state. The
// receiver is left unchanged.
//
// Instead of scanning the whole board for a winner, only the row, the
// column and the two diagonals crossing (x, y) are walked, since any new
// winning run has to go through the new mark.
func (s *State) ApplyMove(x, y int, mark Mark) (*State, error) {
	if mark.IsReserved() {
		return nil, &ReservedMarkError{Mark: mark}
	}

	p := Pos{x, y}
	walker, err := NewWalker(s.width, s.height, p)
	if err != nil {
		return nil, err
	}

	if s.cells[s.index(p)] != Empty {
		return nil, &OccupiedCellError{Pos: p}
	}
	if s.IsTerminal() {
		return nil, ErrGameOver
	}

	next := s.clone()
	next.cells[next.index(p)] = mark
	next.empty--

	for _, axis := range axes {
		cells, err := walker.Walk(axis.X, axis.Y)
		if err != nil {
			panic(err) // axes holds no zero vector
		}

		run := 0
		for c := range cells {
			if next.cells[next.index(c)] != mark {
				walker.Reverse()
				continue
			}
			run++
			if run == next.winLength {
				next.outcome = mark
				return next, nil
			}
		}
	}

	if next.empty == 0 {
		next.outcome = Draw
	} else {
		next.outcome = Pending
	}
	return next, nil
}

func (s *State) clone() *State {
	s2 := *s
	s2.cells = append([]Mark(nil), s.cells...)
	return &s2
}

// String returns the board row by row, y growing downward.
func (s *State) String() string {
	var b strings.Builder
	for y := range s.height {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		for x := range s.width {
			if x > 0 {
				b.WriteByte(' ')
			}
			m := s.cells[s.index(Pos{x, y})]
			if m == Empty {
				m = "."
			}
			b.WriteString(string(m))
		}
		b.WriteByte(']')
	}
	return b.String()
}
