// Package match runs N-in-a-row games between participants: two players
// and any number of spectators, either of which may be humans behind a
// transport or an AI.
package match

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twipi/twinrow/game"
)

// Handle identifies a participant within a match. The two players' handles
// are also the marks they play.
type Handle string

const (
	Host     Handle = Handle(game.Host)
	Opponent Handle = Handle(game.Opponent)
)

// IsPlayer returns true if the handle belongs to one of the two players.
func (h Handle) IsPlayer() bool {
	return h == Host || h == Opponent
}

// Other returns the other player's handle.
func (h Handle) Other() Handle {
	switch h {
	case Host:
		return Opponent
	case Opponent:
		return Host
	default:
		return h
	}
}

var (
	// ErrGameOver is returned when a move is made after the game ended.
	ErrGameOver = errors.New("match: the game is over")
	// ErrNotYourTurn is returned when a player moves out of turn.
	ErrNotYourTurn = errors.New("match: not your turn")
	// ErrNotAPlayer is returned when a spectator or a stranger moves.
	ErrNotAPlayer = errors.New("match: only the host or the opponent can move")
)

// Participant receives the events of a match.
//
// Notify is called without the match's lock held, so it may call back into
// the match. It should not block for long.
type Participant interface {
	Notify(Event)
}

// ParticipantFunc adapts a function to [Participant].
type ParticipantFunc func(Event)

// Notify implements [Participant].
func (f ParticipantFunc) Notify(ev Event) { f(ev) }

// Config describes a new match.
type Config struct {
	Width     int
	Height    int
	WinLength int
	// StartHandle is the player moving first. Defaults to [Host].
	StartHandle Handle
	// HostChar is the character the host is drawn with, "x" or "o".
	// Defaults to "x".
	HostChar string
}

// DefaultConfig returns the config of a Tic-Tac-Toe match.
func DefaultConfig() Config {
	return Config{Width: 3, Height: 3, WinLength: 3, StartHandle: Host, HostChar: "x"}
}

// Signs returns the characters each player is drawn with.
func (c Config) Signs() map[Handle]string {
	other := "o"
	if c.HostChar == "o" {
		other = "x"
	}
	return map[Handle]string{Host: c.HostChar, Opponent: other}
}

type member struct {
	handle Handle
	p      Participant
}

// delivery is a queued event. If to is set, only that participant receives
// it, otherwise everyone but skip does.
type delivery struct {
	ev   Event
	to   Handle
	skip Handle
}

// Match is a single game. It is safe for concurrent use.
type Match struct {
	id        string
	cfg       Config
	createdAt time.Time
	logger    *slog.Logger

	mu          sync.Mutex
	state       *game.State
	turn        Handle
	members     []member
	spectators  int
	queue       []delivery
	dispatching bool
}

// New creates a new match.
func New(cfg Config, logger *slog.Logger) (*Match, error) {
	if cfg.StartHandle == "" {
		cfg.StartHandle = Host
	}
	if !cfg.StartHandle.IsPlayer() {
		return nil, fmt.Errorf("invalid start player %q", cfg.StartHandle)
	}
	switch cfg.HostChar {
	case "":
		cfg.HostChar = "x"
	case "x", "o":
	default:
		return nil, fmt.Errorf("invalid host char %q", cfg.HostChar)
	}

	state, err := game.NewState(cfg.Width, cfg.Height, cfg.WinLength)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Match{
		id:        id,
		cfg:       cfg,
		createdAt: time.Now(),
		logger:    logger.With("match_id", id),
		state:     state,
		turn:      cfg.StartHandle,
	}, nil
}

// ID returns the match's unique ID.
func (m *Match) ID() string { return m.id }

// Config returns the config the match was created with.
func (m *Match) Config() Config { return m.cfg }

// CreatedAt returns when the match was created.
func (m *Match) CreatedAt() time.Time { return m.createdAt }

// State returns the current board.
func (m *Match) State() *game.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Turn returns the player to move.
func (m *Match) Turn() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn
}

// IsOver returns true if the game has ended.
func (m *Match) IsOver() bool {
	return m.State().IsTerminal()
}

// Join adds a participant and returns its handle: the host first, then the
// opponent, then numbered spectators. The other participants are notified.
func (m *Match) Join(p Participant) Handle {
	m.mu.Lock()
	var h Handle
	switch {
	case !m.has(Host):
		h = Host
	case !m.has(Opponent):
		h = Opponent
	default:
		h = Handle(fmt.Sprintf("spectator_%d", m.spectators))
		m.spectators++
	}
	m.members = append(m.members, member{h, p})
	m.enqueue(
		delivery{ev: Event{Kind: EventPlayerJoined, Handle: h}, skip: h},
		delivery{ev: m.setup(h), to: h},
	)
	m.mu.Unlock()

	m.logger.Debug(
		"participant joined",
		"handle", h)

	m.dispatch()
	return h
}

// Leave removes the participant with the given handle and notifies the
// others.
func (m *Match) Leave(h Handle) {
	m.mu.Lock()
	i := m.index(h)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.members = append(m.members[:i], m.members[i+1:]...)
	m.enqueue(delivery{ev: Event{Kind: EventPlayerLeft, Handle: h}})
	m.mu.Unlock()

	m.logger.Debug(
		"participant left",
		"handle", h)

	m.dispatch()
}

// Participant returns the participant with the given handle.
func (m *Match) Participant(h Handle) (Participant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(h); i >= 0 {
		return m.members[i].p, true
	}
	return nil, false
}

// setup describes the match to the participant with the given handle.
// Participants receive it when they join. It must be called with mu held.
func (m *Match) setup(h Handle) Event {
	return Event{
		Kind:   EventSetup,
		Handle: h,
		Setup: &Setup{
			MatchID:     m.id,
			Signs:       m.cfg.Signs(),
			StartHandle: m.cfg.StartHandle,
			Width:       m.cfg.Width,
			Height:      m.cfg.Height,
			WinLength:   m.state.WinLength(),
			Grid:        m.state.Grid(),
			Turn:        m.turn,
		},
	}
}

// Perform makes a move for the player with the given handle. Every
// participant, the mover included, is notified of the move, then of the
// end of the game if the move ended it.
//
// Events are delivered in the order the moves were made. A Perform called
// from within Notify returns before its events are delivered.
func (m *Match) Perform(h Handle, x, y int) error {
	if !h.IsPlayer() {
		return ErrNotAPlayer
	}

	m.mu.Lock()
	if m.state.IsTerminal() {
		m.mu.Unlock()
		return ErrGameOver
	}
	if h != m.turn {
		m.mu.Unlock()
		return ErrNotYourTurn
	}
	next, err := m.state.ApplyMove(x, y, game.Mark(h))
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("invalid move: %w", err)
	}
	m.state = next
	m.turn = h.Other()
	m.enqueue(delivery{ev: Event{Kind: EventMove, Handle: h, Pos: game.Pos{X: x, Y: y}, State: next}})
	if next.IsTerminal() {
		m.enqueue(delivery{ev: Event{Kind: EventGameOver, Handle: h, Outcome: next.Outcome(), State: next}})
	}
	m.mu.Unlock()

	m.logger.Debug(
		"move performed",
		"handle", h,
		"x", x,
		"y", y,
		"outcome", next.Outcome())

	m.dispatch()
	return nil
}

// enqueue must be called with mu held.
func (m *Match) enqueue(ds ...delivery) {
	m.queue = append(m.queue, ds...)
}

// dispatch delivers queued events until the queue is empty. Only one
// goroutine dispatches at a time; the others leave their events to it.
func (m *Match) dispatch() {
	m.mu.Lock()
	if m.dispatching {
		m.mu.Unlock()
		return
	}
	m.dispatching = true

	for len(m.queue) > 0 {
		d := m.queue[0]
		m.queue = m.queue[1:]
		members := append([]member(nil), m.members...)
		m.mu.Unlock()

		for _, mb := range members {
			if (d.to != "" && mb.handle != d.to) || mb.handle == d.skip {
				continue
			}
			mb.p.Notify(d.ev)
		}

		m.mu.Lock()
	}

	m.dispatching = false
	m.mu.Unlock()
}

func (m *Match) has(h Handle) bool {
	return m.index(h) >= 0
}

func (m *Match) index(h Handle) int {
	for i, mb := range m.members {
		if mb.handle == h {
			return i
		}
	}
	return -1
}
