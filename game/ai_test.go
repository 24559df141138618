package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAI(t *testing.T) {
	rules := &Rules{Max: Host, Min: Opponent, Depth: 9}

	for x := range 3 {
		for y := range 3 {
			t.Run(fmt.Sprintf("start(%d,%d)", x, y), func(t *testing.T) {
				ctx := context.Background()

				s, err := NewState(3, 3, 3)
				require.NoError(t, err)

				s, err = s.ApplyMove(x, y, Host)
				require.NoError(t, err)
				t.Log("\n" + s.String())

				host, err := NewAI(rules, Host)
				require.NoError(t, err)
				opponent, err := NewAI(rules, Opponent)
				require.NoError(t, err)

				ps := []*AI{host, opponent}
				for turn := 1; ; turn++ {
					next, ok, err := ps[turn%2].MakeMove(ctx, s)
					require.NoError(t, err)
					if !ok {
						break
					}
					s = next
					t.Log("\n" + s.String())
				}

				require.Equal(t, Draw, s.Outcome(), "game should always end in a draw")
			})
		}
	}
}

func TestAITakesWin(t *testing.T) {
	s, err := NewStateFromGrid(3, 3, 3, [][]Mark{
		{Host, Opponent, ""},
		{Host, Opponent, ""},
		{"", "", ""},
	})
	require.NoError(t, err)

	ai, err := NewAI(DefaultRules(), Host)
	require.NoError(t, err)

	pos, ok, err := ai.NextMove(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Pos{2, 0}, pos)
}

func TestAIBlocks(t *testing.T) {
	s, err := NewStateFromGrid(3, 3, 3, [][]Mark{
		{Host, "", ""},
		{Host, Opponent, ""},
		{"", "", ""},
	})
	require.NoError(t, err)

	ai, err := NewAI(&Rules{Max: Host, Min: Opponent, Depth: 9}, Opponent)
	require.NoError(t, err)

	pos, ok, err := ai.NextMove(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Pos{2, 0}, pos)
}

func TestAIThinkTime(t *testing.T) {
	s, err := NewState(5, 5, 4)
	require.NoError(t, err)

	ai, err := NewAI(&Rules{Max: Host, Min: Opponent, Depth: 20}, Host)
	require.NoError(t, err)
	ai.ThinkTime = 1

	pos, ok, err := ai.NextMove(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Empty, s.At(pos.X, pos.Y))
}

func TestAIGameOver(t *testing.T) {
	s, err := NewStateFromGrid(3, 2, 3, [][]Mark{
		{Host, Opponent},
		{Host, Opponent},
		{"", ""},
	})
	require.NoError(t, err)

	s, err = s.ApplyMove(2, 0, Host)
	require.NoError(t, err)

	ai, err := NewAI(DefaultRules(), Opponent)
	require.NoError(t, err)

	_, ok, err := ai.NextMove(context.Background(), s)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewAIUnknownMark(t *testing.T) {
	_, err := NewAI(DefaultRules(), "x")
	require.Error(t, err)
}
