package game

import (
	"context"
	"fmt"
	"time"

	"github.com/twipi/twinrow/minimax"
)

// AI represents an AI player.
// The AI is implemented using the minimax algorithm with alpha-beta pruning.
type AI struct {
	rules  *Rules
	mark   Mark
	player minimax.Player

	// ThinkTime bounds how long NextMove searches. Zero means no bound.
	ThinkTime time.Duration
}

// NewAI creates a new AI player playing mark under the given rules.
// If mark is not one of the rules' marks, returns an error.
func NewAI(rules *Rules, mark Mark) (*AI, error) {
	player, ok := rules.Player(mark)
	if !ok {
		return nil, fmt.Errorf("mark %q is not played under these rules", string(mark))
	}
	return &AI{rules: rules, mark: mark, player: player}, nil
}

// Mark returns the mark the AI plays.
func (a *AI) Mark() Mark {
	return a.mark
}

// NextMove returns the next move that the AI should make.
// If the game is over, returns false.
//
// If the search is cut short by ctx or ThinkTime before any move was
// scored, the first empty cell is returned.
func (a *AI) NextMove(ctx context.Context, s *State) (Pos, bool, error) {
	if s.IsTerminal() {
		return Pos{}, false, nil
	}

	if a.ThinkTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.ThinkTime)
		defer cancel()
	}

	rules := minimax.WithContext[*State, Pos, int](ctx, a.rules)

	pos, ok, err := minimax.Search(s, a.player, rules)
	if err != nil {
		return Pos{}, false, fmt.Errorf("failed to search for a move: %w", err)
	}
	if !ok {
		for pos := range s.EmptyCells() {
			return pos, true, nil
		}
		return Pos{}, false, nil
	}
	return pos, true, nil
}

// MakeMove makes the next move for the AI and returns the new state.
// If the game is over, returns false.
func (a *AI) MakeMove(ctx context.Context, s *State) (*State, bool, error) {
	pos, ok, err := a.NextMove(ctx, s)
	if err != nil || !ok {
		return s, false, err
	}
	next, err := s.ApplyMove(pos.X, pos.Y, a.mark)
	if err != nil {
		return s, false, err
	}
	return next, true, nil
}
