package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twipi/twinrow/game"
	"github.com/twipi/twipi/proto/out/twicmdproto"
	"github.com/twipi/twipi/proto/out/twismsproto"
	"github.com/twipi/twipi/twicmd"
)

// outbox collects the messages a service sends.
type outbox struct {
	mu   sync.Mutex
	msgs []*twismsproto.Message
}

func newTestService(t *testing.T) (*Service, *outbox) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.AI.Rules.Depth = 9

	s := NewService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.aiCancel)

	out := &outbox{}
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go func() {
		for {
			select {
			case msg := <-s.sendCh:
				out.mu.Lock()
				out.msgs = append(out.msgs, msg)
				out.mu.Unlock()
			case <-done:
				return
			}
		}
	}()

	return s, out
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

// texts returns the texts sent so far and forgets them.
func (o *outbox) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	texts := make([]string, len(o.msgs))
	for i, msg := range o.msgs {
		texts[i] = msg.Body.Text.Text
	}
	o.msgs = nil
	return texts
}

var testMessage = &twismsproto.Message{From: "+15550100", To: "+15550199"}

func execute(t *testing.T, s *Service, command string, args ...*twicmdproto.CommandArgument) *twicmdproto.ExecuteResponse {
	t.Helper()

	resp, err := s.Execute(context.Background(), &twicmdproto.ExecuteRequest{
		Command: &twicmdproto.Command{
			Service:   s.Name(),
			Command:   command,
			Arguments: args,
		},
		Message: testMessage,
	})
	require.NoError(t, err)
	return resp
}

func position(v string) *twicmdproto.CommandArgument {
	return &twicmdproto.CommandArgument{Name: "position", Value: v}
}

func TestServiceCommands(t *testing.T) {
	s, _ := newTestService(t)

	lookup := twicmd.NewServiceLookup()
	lookup.Register(s)

	start, err := lookup.LookupCommand(context.Background(), "twinrow", "start")
	require.NoError(t, err)
	require.Equal(t, "start", start.Command.Name)

	place, err := lookup.LookupCommand(context.Background(), "twinrow", "place")
	require.NoError(t, err)
	require.Equal(t, []string{"position"}, place.Command.ArgumentPositions)
	require.True(t, place.Command.Arguments["position"].Required)

	_, err = lookup.LookupCommand(context.Background(), "twinrow", "resign")
	require.Error(t, err)
}

func TestServiceExecute(t *testing.T) {
	s, out := newTestService(t)

	resp := execute(t, s, "place", position("5"))
	require.Equal(t, "No game found. Please start a new game.", resp.GetStatus())

	require.Nil(t, execute(t, s, "start"))
	require.Eventually(t, func() bool { return out.len() == 2 }, time.Second, time.Millisecond)
	texts := out.texts()
	require.Equal(t, "A new game has started. It is now your turn.", texts[0])
	require.True(t, strings.HasPrefix(texts[1], "⬜⬜⬜\n⬜⬜⬜\n⬜⬜⬜\n"), texts[1])

	require.Nil(t, execute(t, s, "place", position("5")))
	require.Eventually(t, func() bool { return out.len() == 2 }, time.Second, time.Millisecond)
	texts = out.texts()
	require.True(t, strings.HasPrefix(texts[0], "You just placed:\n\n⬜⬜⬜\n⬜❌⬜\n⬜⬜⬜\n"), texts[0])
	require.True(t, strings.HasPrefix(texts[1], "In return, the AI placed:"), texts[1])
	require.Equal(t, 1, strings.Count(texts[1], "⚫")-1, "the AI should place one piece")

	m, ok := s.games.Load(testMessage.From)
	require.True(t, ok)
	require.Equal(t, 2, m.State().Moves())

	resp = execute(t, s, "place", position("5"))
	require.Equal(t, "Invalid move. Please try again.", resp.GetStatus())

	resp = execute(t, s, "place", position("10"))
	require.Equal(t, "Invalid position. Please provide a number between 1 and 9.", resp.GetStatus())

	require.Nil(t, execute(t, s, "start"))
	require.Eventually(t, func() bool { return out.len() == 2 }, time.Second, time.Millisecond)
	require.Equal(t, "An existing game was overridden. A new game has started. It is now your turn.", out.texts()[0])

	_, err := s.Execute(context.Background(), &twicmdproto.ExecuteRequest{
		Command: &twicmdproto.Command{Service: s.Name(), Command: "resign"},
		Message: testMessage,
	})
	require.Error(t, err)
}

func TestPositionFromIndex(t *testing.T) {
	state, err := game.NewState(3, 2, 2)
	require.NoError(t, err)

	tests := []struct {
		arg  string
		pos  game.Pos
		fail bool
	}{
		{arg: "1", pos: game.Pos{X: 0, Y: 0}},
		{arg: "3", pos: game.Pos{X: 2, Y: 0}},
		{arg: "4", pos: game.Pos{X: 0, Y: 1}},
		{arg: "6", pos: game.Pos{X: 2, Y: 1}},
		{arg: "0", fail: true},
		{arg: "7", fail: true},
		{arg: "-1", fail: true},
		{arg: "a1", fail: true},
		{arg: "", fail: true},
	}

	for _, test := range tests {
		t.Run(test.arg, func(t *testing.T) {
			pos, ok := positionFromIndex(test.arg, state)
			if test.fail {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, test.pos, pos)
		})
	}
}

func TestGameOverMessage(t *testing.T) {
	require.Equal(t, "The game is over. It's a draw!", gameOverMessage(game.Draw))
	require.Equal(t, "The game is over. ❌ wins!", gameOverMessage(game.Host))
	require.Equal(t, "The game is over. ⚫ wins!", gameOverMessage(game.Opponent))
}
