package graphstorage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corpusgraph/internal/types"
)

func buildAdjacency(edges ...types.Edge) *AdjacencyList {
	a := NewAdjacencyList()
	for _, e := range edges {
		a.AddEdge(e)
	}
	return a
}

func drain(it interface {
	Next() (types.NodeID, bool)
}) []types.NodeID {
	var out []types.NodeID
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func TestFindConnectedInverseSymmetry(t *testing.T) {
	g := buildAdjacency(
		types.Edge{Source: 1, Target: 2},
		types.Edge{Source: 2, Target: 3},
		types.Edge{Source: 1, Target: 4},
	)

	forward := drain(g.FindConnected(1, 1, types.Unbounded()))
	require.ElementsMatch(t, []types.NodeID{2, 3, 4}, forward)

	for _, t2 := range forward {
		inverse := drain(g.FindConnectedInverse(t2, 1, types.Unbounded()))
		require.Contains(t, inverse, types.NodeID(1), "find_connected_inverse(%d) must contain 1", t2)
	}
}

func TestIsConnectedMatchesFindConnected(t *testing.T) {
	g := buildAdjacency(
		types.Edge{Source: 1, Target: 2},
		types.Edge{Source: 2, Target: 3},
	)
	reachable := drain(g.FindConnected(1, 1, types.Included(5)))
	for _, n := range reachable {
		require.True(t, g.IsConnected(1, n, 1, types.Included(5)))
	}
	require.False(t, g.IsConnected(1, 99, 1, types.Unbounded()))
}

func TestCycleSafeDFSTerminatesAndDedups(t *testing.T) {
	g := buildAdjacency(
		types.Edge{Source: 1, Target: 2},
		types.Edge{Source: 2, Target: 3},
		types.Edge{Source: 3, Target: 1}, // cycle
	)
	reached := drain(g.FindConnected(1, 1, types.Unbounded()))
	require.ElementsMatch(t, []types.NodeID{2, 3}, reached, "node 1 itself must not reappear from the cycle")
}

func TestDiamondYieldedOnce(t *testing.T) {
	// 1 -> 2 -> 4, 1 -> 3 -> 4 : diamond shape, 4 must appear once.
	g := buildAdjacency(
		types.Edge{Source: 1, Target: 2},
		types.Edge{Source: 1, Target: 3},
		types.Edge{Source: 2, Target: 4},
		types.Edge{Source: 3, Target: 4},
	)
	reached := drain(g.FindConnected(1, 1, types.Unbounded()))
	count := 0
	for _, n := range reached {
		if n == 4 {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestLinearDistance(t *testing.T) {
	l := NewLinear()
	l.AddEdge(types.Edge{Source: 1, Target: 2})
	l.AddEdge(types.Edge{Source: 2, Target: 3})
	l.AddEdge(types.Edge{Source: 3, Target: 4})

	d, ok := l.Distance(1, 4)
	require.True(t, ok)
	require.Equal(t, uint64(3), d)

	require.True(t, l.IsConnected(1, 3, 1, types.Unbounded()))
	require.False(t, l.IsConnected(4, 1, 1, types.Unbounded()))
}

func TestPrePostOrderAncestry(t *testing.T) {
	p := NewPrePostOrder()
	// root -> a -> b, root -> c
	p.AddEdge(types.Edge{Source: 1, Target: 2})
	p.AddEdge(types.Edge{Source: 2, Target: 3})
	p.AddEdge(types.Edge{Source: 1, Target: 4})
	p.Build()

	require.True(t, p.IsConnected(1, 3, 1, types.Unbounded()))
	require.True(t, p.IsConnected(1, 4, 1, types.Unbounded()))
	require.False(t, p.IsConnected(4, 3, 1, types.Unbounded()))
	require.False(t, p.IsConnected(2, 4, 1, types.Unbounded()))
}

func TestUnionMergesMembers(t *testing.T) {
	a := buildAdjacency(types.Edge{Source: 1, Target: 2})
	b := buildAdjacency(types.Edge{Source: 1, Target: 3})
	u := NewUnion(a, b)
	out := u.GetOutgoingEdges(1)
	require.ElementsMatch(t, []types.NodeID{2, 3}, out)
}

func TestClassifyPicksRepresentation(t *testing.T) {
	require.Equal(t, LinearV1, Classify(types.GraphStatistic{Valid: true, MaxFanOut: 1, InverseFanOut99Percentile: 1}))
	require.Equal(t, DenseAdjacencyListV1, Classify(types.GraphStatistic{Valid: true, MaxFanOut: 1, InverseFanOut99Percentile: 3}))
	require.Equal(t, PrePostOrderO16L8, Classify(types.GraphStatistic{Valid: true, RootedTree: true, Nodes: 10, MaxDepth: 2}))
	require.Equal(t, AdjacencyListV1, Classify(types.GraphStatistic{Valid: true, MaxFanOut: 5}))
}
