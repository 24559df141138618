package minimax

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// node is a game tree with a heuristic value on every node.
type node struct {
	value    int
	children []*node
}

func (n *node) String() string {
	return fmt.Sprintf("node(%d, %d children)", n.value, len(n.children))
}

func leaf(v int) *node { return &node{value: v} }

func branch(v int, children ...*node) *node {
	return &node{value: v, children: children}
}

// treeRules searches a *node tree. Payloads are child indices.
type treeRules struct {
	depth      int
	lower      int
	upper      int
	evaluated  int
	heuristics []int
}

func newTreeRules(depth int) *treeRules {
	return &treeRules{depth: depth, lower: -1, upper: 100}
}

func (r *treeRules) MaxDepth() int   { return r.depth }
func (r *treeRules) LowerBound() int { return r.lower }
func (r *treeRules) UpperBound() int { return r.upper }

func (r *treeRules) Heuristic(n *node) int {
	r.evaluated++
	r.heuristics = append(r.heuristics, n.value)
	return n.value
}

func (r *treeRules) IsTerminal(n *node) bool {
	return len(n.children) == 0
}

func (r *treeRules) Children(n *node, _ Player) iter.Seq2[*node, int] {
	return func(yield func(*node, int) bool) {
		for i, c := range n.children {
			if !yield(c, i) {
				return
			}
		}
	}
}

// exhaustive is plain minimax without pruning, with the same depth rule and
// tie breaking as Search.
func exhaustive(n *node, player Player, depth, maxDepth int) (int, int) {
	if len(n.children) == 0 || depth > maxDepth {
		return n.value, -1
	}

	best := TrackMax[int, int]()
	if player == Min {
		best = TrackMin[int, int]()
	}
	for i, c := range n.children {
		v, _ := exhaustive(c, player.Opponent(), depth+1, maxDepth)
		best.Offer(v, i)
	}

	v, _ := best.Value()
	p, _ := best.Payload()
	return v, p
}

func randomTree(r *rand.Rand, height int) *node {
	n := &node{value: r.Intn(100)}
	if height == 0 {
		return n
	}
	n.children = make([]*node, 1+r.Intn(4))
	for i := range n.children {
		// Leaves at uneven depths.
		if r.Intn(5) == 0 {
			n.children[i] = &node{value: r.Intn(100)}
		} else {
			n.children[i] = randomTree(r, height-1)
		}
	}
	return n
}

func TestSearchMatchesExhaustiveMinimax(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := range 300 {
		tree := randomTree(r, 1+r.Intn(5))
		for _, player := range []Player{Max, Min} {
			for _, depth := range []int{0, 1, 2, 3, 10} {
				t.Run(fmt.Sprintf("tree%d/%v/depth%d", i, player, depth), func(t *testing.T) {
					_, want := exhaustive(tree, player, 0, depth)

					got, ok, err := Search[*node, int, int](tree, player, newTreeRules(depth))
					require.NoError(t, err)
					require.True(t, ok)
					require.Equal(t, want, got)
				})
			}
		}
	}
}

func TestSearchPrunes(t *testing.T) {
	tree := branch(0,
		branch(0, leaf(3), leaf(5)),
		branch(0, leaf(2), leaf(9)),
	)

	rules := newTreeRules(10)
	got, ok, err := Search[*node, int, int](tree, Max, rules)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, got)
	require.Equal(t, []int{3, 5, 2}, rules.heuristics, "leaf 9 should be pruned")
}

func TestSearchTies(t *testing.T) {
	tree := branch(0, leaf(4), leaf(7), leaf(7), leaf(1), leaf(1))

	got, _, err := Search[*node, int, int](tree, Max, newTreeRules(10))
	require.NoError(t, err)
	require.Equal(t, 1, got, "first of the best moves should win")

	got, _, err = Search[*node, int, int](tree, Min, newTreeRules(10))
	require.NoError(t, err)
	require.Equal(t, 3, got, "first of the best moves should win")
}

func TestSearchTerminalRoot(t *testing.T) {
	rules := newTreeRules(10)
	got, ok, err := Search[*node, int, int](leaf(5), Max, rules)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, got)
	require.Equal(t, 1, rules.evaluated)
}

func TestSearchNoSuccessors(t *testing.T) {
	stuck := &node{value: 1}
	rules := Funcs[*node, int, int]{
		LowerBoundFunc: func() int { return -1 },
		UpperBoundFunc: func() int { return 4 },
		MaxDepthFunc:   func() int { return 3 },
		HeuristicFunc:  func(n *node) int { return n.value },
		IsTerminalFunc: func(*node) bool { return false },
		ChildrenFunc: func(*node, Player) iter.Seq2[*node, int] {
			return func(func(*node, int) bool) {}
		},
	}

	for _, player := range []Player{Max, Min} {
		t.Run(player.String(), func(t *testing.T) {
			_, ok, err := Search[*node, int, int](stuck, player, rules)
			require.False(t, ok)
			require.ErrorIs(t, err, ErrNoSuccessors)

			var nserr *NoSuccessorsError[*node]
			require.ErrorAs(t, err, &nserr)
			require.Same(t, stuck, nserr.State)
		})
	}
}

func TestSearchNoSuccessorsDeep(t *testing.T) {
	// The root has a child, but the child is stuck.
	stuck := &node{value: 1}
	root := &node{value: 1, children: []*node{stuck}}

	rules := Funcs[*node, int, int]{
		LowerBoundFunc: func() int { return -1 },
		UpperBoundFunc: func() int { return 4 },
		MaxDepthFunc:   func() int { return 3 },
		HeuristicFunc:  func(n *node) int { return n.value },
		IsTerminalFunc: func(*node) bool { return false },
		ChildrenFunc: func(n *node, _ Player) iter.Seq2[*node, int] {
			return newTreeRules(0).Children(n, Max)
		},
	}

	_, _, err := Search[*node, int, int](root, Max, rules)

	var nserr *NoSuccessorsError[*node]
	require.ErrorAs(t, err, &nserr)
	require.Same(t, stuck, nserr.State)
}

func TestSearchConfiguration(t *testing.T) {
	t.Run("missing capabilities", func(t *testing.T) {
		var rules Funcs[*node, int, int]

		steps := []struct {
			capability string
			set        func()
		}{
			{"LowerBound", func() { rules.LowerBoundFunc = func() int { return 0 } }},
			{"UpperBound", func() { rules.UpperBoundFunc = func() int { return 1 } }},
			{"MaxDepth", func() { rules.MaxDepthFunc = func() int { return 0 } }},
			{"Heuristic", func() { rules.HeuristicFunc = func(*node) int { return 0 } }},
			{"IsTerminal", func() { rules.IsTerminalFunc = func(*node) bool { return true } }},
			{"Children", func() {
				rules.ChildrenFunc = func(*node, Player) iter.Seq2[*node, int] { return nil }
			}},
		}

		for _, step := range steps {
			_, _, err := Search[*node, int, int](leaf(0), Max, rules)

			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, step.capability, cerr.Capability)
			require.EqualError(t, err, fmt.Sprintf(
				"minimax: rules must implement all required capabilities, %q is not implemented",
				step.capability))

			step.set()
		}

		_, _, err := Search[*node, int, int](leaf(0), Max, rules)
		require.NoError(t, err)
	})

	t.Run("nil rules", func(t *testing.T) {
		_, _, err := Search[*node, int, int](leaf(0), Max, nil)

		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		rules := newTreeRules(3)
		rules.lower, rules.upper = 2, 1

		_, _, err := Search[*node, int, int](leaf(0), Max, rules)
		require.EqualError(t, err,
			"minimax: lower bound should be less than upper bound (now lower=2, upper=1)")
		require.Zero(t, rules.evaluated, "no search work should be done")
	})

	t.Run("equal bounds", func(t *testing.T) {
		rules := newTreeRules(3)
		rules.lower, rules.upper = 1, 1

		_, _, err := Search[*node, int, int](leaf(0), Max, rules)

		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("invalid player", func(t *testing.T) {
		_, _, err := Search[*node, int, int](leaf(0), Player(0), newTreeRules(3))

		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr)
	})

	for _, depth := range []int{-1, MaxDepthLimit + 1} {
		t.Run(fmt.Sprintf("max depth %d", depth), func(t *testing.T) {
			_, _, err := Search[*node, int, int](leaf(0), Max, newTreeRules(depth))

			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, "MaxDepth", cerr.Capability)
		})
	}
}

func TestWithContext(t *testing.T) {
	tree := branch(0, leaf(1), leaf(2))

	t.Run("live", func(t *testing.T) {
		rules := WithContext[*node, int, int](context.Background(), newTreeRules(3))

		got, ok, err := Search(tree, Max, rules)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1, got)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rules := WithContext[*node, int, int](ctx, newTreeRules(3))

		_, ok, err := Search(tree, Max, rules)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("validates wrapped rules", func(t *testing.T) {
		rules := WithContext[*node, int, int](context.Background(), Funcs[*node, int, int]{})

		_, _, err := Search(tree, Max, rules)

		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		require.Equal(t, "LowerBound", cerr.Capability)
	})
}
