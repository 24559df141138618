package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twipi/twinrow/game"
)

// AIConfig configures an AI participant.
type AIConfig struct {
	// Rules are the search rules. Their marks must be [Host] and [Opponent].
	// Defaults to [game.DefaultRules].
	Rules *game.Rules
	// ThinkTime bounds each move's search. Zero means no bound.
	ThinkTime time.Duration
}

// AI is a participant that moves whenever it's its turn.
type AI struct {
	ctx    context.Context
	match  *Match
	logger *slog.Logger

	mu     sync.Mutex
	handle Handle
	ai     *game.AI
}

var _ Participant = (*AI)(nil)

// NewAI joins an AI to the match as the next free player. If both player
// seats are taken, returns an error.
//
// The AI replies to moves on its own; call [AI.Play] to have it move first.
// The replies are searched under ctx, and the AI stops replying once ctx is
// done.
func NewAI(ctx context.Context, m *Match, cfg AIConfig, logger *slog.Logger) (*AI, error) {
	if cfg.Rules == nil {
		cfg.Rules = game.DefaultRules()
	}

	a := &AI{ctx: ctx, match: m, logger: logger}
	h := m.Join(a)
	if !h.IsPlayer() {
		m.Leave(h)
		return nil, fmt.Errorf("no player seat left, joined as %q", h)
	}

	ai, err := game.NewAI(cfg.Rules, game.Mark(h))
	if err != nil {
		m.Leave(h)
		return nil, err
	}
	ai.ThinkTime = cfg.ThinkTime

	a.mu.Lock()
	a.handle = h
	a.ai = ai
	a.mu.Unlock()

	a.logger = logger.With("handle", h)
	return a, nil
}

// Handle returns the AI's handle.
func (a *AI) Handle() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}

// Play makes a move if it's the AI's turn and the game isn't over.
func (a *AI) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	h, ai := a.handle, a.ai
	a.mu.Unlock()

	if ai == nil || a.match.Turn() != h {
		return nil
	}

	pos, ok, err := ai.NextMove(ctx, a.match.State())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := a.match.Perform(h, pos.X, pos.Y); err != nil {
		return fmt.Errorf("failed to perform move %v: %w", pos, err)
	}
	return nil
}

// Notify implements [Participant].
func (a *AI) Notify(ev Event) {
	if ev.Kind != EventMove {
		return
	}
	if err := a.Play(a.ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.logger.Debug(
				"AI stopped replying",
				"err", err)
			return
		}
		a.logger.Error(
			"AI failed to move",
			"err", err)
	}
}
