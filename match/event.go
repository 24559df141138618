package match

import "github.com/twipi/twinrow/game"

// EventKind is the kind of an [Event].
type EventKind string

const (
	EventSetup        EventKind = "setup"
	EventMove         EventKind = "move"
	EventGameOver     EventKind = "gameover"
	EventPlayerJoined EventKind = "playerjoined"
	EventPlayerLeft   EventKind = "playerleft"
)

// Event is something that happened in a match.
type Event struct {
	Kind EventKind
	// Handle is the participant the event is about: the one who joined, left
	// or moved, or the receiver of a setup event.
	Handle Handle
	// Pos is the position of a move.
	Pos game.Pos
	// Outcome is the result of the game, for game over events.
	Outcome game.Mark
	// State is the board after a move.
	State *game.State
	// Setup is set for setup events.
	Setup *Setup
}

// Setup describes a match to a participant that just joined it.
type Setup struct {
	MatchID     string
	Signs       map[Handle]string
	StartHandle Handle
	Width       int
	Height      int
	WinLength   int
	Grid        [][]game.Mark
	Turn        Handle
}
