package web

import (
	"encoding/json"

	"github.com/twipi/twinrow/game"
	"github.com/twipi/twinrow/match"
)

// Message is a single WebSocket frame, in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SetupData is sent to a participant right after it joined.
type SetupData struct {
	// ConnectionGameID is the ID others join the game with. It is only set
	// for human versus human games.
	ConnectionGameID  *string                 `json:"connection_game_id"`
	PlayerHandle      match.Handle            `json:"player_handle"`
	SignsMap          map[match.Handle]string `json:"signs_map"`
	StartPlayerHandle match.Handle            `json:"start_player_handle"`
	FieldWidth        int                     `json:"field_width"`
	FieldHeight       int                     `json:"field_height"`
	QtyToWin          int                     `json:"qty_to_win"`
	// Field is indexed as Field[x][y].
	Field [][]game.Mark `json:"field"`
	Turn  match.Handle  `json:"turn"`
}

// MoveData is a move, sent by clients to move and by the server to report
// moves.
type MoveData struct {
	PlayerHandle match.Handle `json:"player_handle,omitempty"`
	X            int          `json:"x"`
	Y            int          `json:"y"`
}

// GameOverData reports the result of the move that ended the game.
type GameOverData struct {
	ResultOfMove game.Mark `json:"result_of_move"`
}

// PlayerData reports a participant joining or leaving.
type PlayerData struct {
	PlayerHandle match.Handle `json:"player_handle"`
}

// ErrorData reports a rejected client message.
type ErrorData struct {
	Message string `json:"message"`
}

func newMessage(event string, data any) (Message, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: event, Data: b}, nil
}

// eventMessage converts a match event into its frame. gameID is reported in
// setup frames.
func eventMessage(ev match.Event, gameID string) (Message, error) {
	switch ev.Kind {
	case match.EventSetup:
		var id *string
		if gameID != "" {
			id = &gameID
		}
		return newMessage(string(ev.Kind), SetupData{
			ConnectionGameID:  id,
			PlayerHandle:      ev.Handle,
			SignsMap:          ev.Setup.Signs,
			StartPlayerHandle: ev.Setup.StartHandle,
			FieldWidth:        ev.Setup.Width,
			FieldHeight:       ev.Setup.Height,
			QtyToWin:          ev.Setup.WinLength,
			Field:             ev.Setup.Grid,
			Turn:              ev.Setup.Turn,
		})
	case match.EventMove:
		return newMessage(string(ev.Kind), MoveData{
			PlayerHandle: ev.Handle,
			X:            ev.Pos.X,
			Y:            ev.Pos.Y,
		})
	case match.EventGameOver:
		return newMessage(string(ev.Kind), GameOverData{ResultOfMove: ev.Outcome})
	default:
		return newMessage(string(ev.Kind), PlayerData{PlayerHandle: ev.Handle})
	}
}
