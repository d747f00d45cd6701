package exec

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/types"
)

func TestMain(m *testing.M) {
	os.Exit(goleak.VerifyTestMain(m))
}

func allTokensLeaf(t *testing.T) *Leaf {
	t.Helper()
	g := testcorpus.Build()
	search, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)
	return NewLeaf(search, 0, "tok")
}

func drainAll(t *testing.T, it Iterator) []types.MatchGroup {
	t.Helper()
	ctx := context.Background()
	var out []types.MatchGroup
	for {
		m, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

func TestLeafProducesAllTokens(t *testing.T) {
	leaf := allTokensLeaf(t)
	out := drainAll(t, leaf)
	require.Len(t, out, 5)
}

func TestIndexJoinPrecedence(t *testing.T) {
	g := testcorpus.Build()
	leftSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)
	leftLeaf := NewLeaf(leftSearch, 0, "tok")

	rightSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)

	op := operator.NewPrecedence(g, "annis", 1, 1, true)
	join := NewIndexJoin(leftLeaf, 0, op, rightSearch, 1, false, "tok . tok")

	out := drainAll(t, join)
	require.Len(t, out, 4, "tok . tok over 5 tokens should yield 4 immediate-precedence pairs")
}

func TestIndexJoinIdenticalNodeMatchesEveryNodeWithItself(t *testing.T) {
	g := testcorpus.Build()
	leftSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)
	leftLeaf := NewLeaf(leftSearch, 0, "tok")

	rightSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)

	identOp := operator.IdenticalNode{}
	join := NewIndexJoin(leftLeaf, 0, identOp, rightSearch, 1, false, "tok & tok & #1 _ident_ #2")
	out := drainAll(t, join)
	require.Len(t, out, 5, "identity join over N nodes should yield N pairs")
}

func TestBinaryFilterRejectsNonMatches(t *testing.T) {
	g := testcorpus.Build()
	leftSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)
	leftLeaf := NewLeaf(leftSearch, 0, "tok")

	rightSearch, err := operator.NewNodeSearch(g, operator.NodeSearchSpec{Kind: operator.SpecAnyToken})
	require.NoError(t, err)

	// A broad join (distance 1..10) over-generates pairs; the filter then
	// narrows to exactly distance-3 pairs the same way placeBinaryFilter
	// narrows an already-joined tree with a redundant constraint.
	broad := operator.NewPrecedence(g, "annis", 1, 10, true)
	join := NewIndexJoin(leftLeaf, 0, broad, rightSearch, 1, false, "tok .1,10 tok")
	exact := operator.NewPrecedence(g, "annis", 3, 3, true)
	filter := NewBinaryFilter(join, 0, 1, exact, "#1 .3,3 #2")
	out := drainAll(t, filter)
	require.Len(t, out, 2, "only tok1-tok4 and tok2-tok5 are exactly 3 tokens apart")
	for _, tuple := range out {
		require.True(t, exact.FilterMatch(tuple[0], tuple[1]))
	}
}

func TestCancellationStopsIteration(t *testing.T) {
	leaf := allTokensLeaf(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := leaf.Next(ctx)
	require.Error(t, err)
	require.False(t, ok)
}
