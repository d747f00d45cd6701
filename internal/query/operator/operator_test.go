package operator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/types"
)

// retrieveContains supports checks of design §8 property 4: for every
// pair, rhs is contained in retrieve_matches(lhs) iff filter_match(lhs,
// rhs) is true, restricted to candidates actually present in the graph.
func retrieveContains(op BinaryOperator, lhs types.Match, rhs types.NodeID) bool {
	it := op.RetrieveMatches(lhs)
	for {
		m, ok := it.Next()
		if !ok {
			return false
		}
		if m.Node == rhs {
			return true
		}
	}
}

func TestIdenticalNodeRetrieveMatchesFilterMatchAgree(t *testing.T) {
	op := IdenticalNode{}
	lhs := types.Match{Node: testcorpus.Tok1, Anno: 0}
	for _, candidate := range []types.NodeID{testcorpus.Tok1, testcorpus.Tok2} {
		rhs := types.Match{Node: candidate, Anno: 0}
		require.Equal(t, op.FilterMatch(lhs, rhs), retrieveContains(op, lhs, candidate))
	}
}

func TestOverlapCountsForSpans(t *testing.T) {
	g := testcorpus.Build()
	op := NewOverlap(g, "annis")

	s1 := types.Match{Node: testcorpus.Span1, Anno: 0}
	s2 := types.Match{Node: testcorpus.Span2, Anno: 0}

	require.True(t, op.FilterMatch(s1, s2), "s1 (t2-t4) and s2 (t3-t5) overlap")
	require.True(t, op.FilterMatch(s2, s1))
	require.True(t, retrieveContains(op, s1, testcorpus.Span2))
	require.True(t, retrieveContains(op, s2, testcorpus.Span1))
}

func TestPrecedenceImmediateOrdering(t *testing.T) {
	g := testcorpus.Build()
	op := NewPrecedence(g, "annis", 1, 1, true)

	lhs := types.Match{Node: testcorpus.Tok1, Anno: 0}
	rhs := types.Match{Node: testcorpus.Tok2, Anno: 0}
	require.True(t, op.FilterMatch(lhs, rhs))
	require.True(t, retrieveContains(op, lhs, testcorpus.Tok2))

	notAdjacent := types.Match{Node: testcorpus.Tok3, Anno: 0}
	require.False(t, op.FilterMatch(lhs, notAdjacent))
}

func TestLeftAlignmentMatchesSharedLeftToken(t *testing.T) {
	g := testcorpus.Build()
	op := NewLeftAlignment(g)

	span := types.Match{Node: testcorpus.Span1, Anno: 0}
	tok := types.Match{Node: testcorpus.Tok2, Anno: 0}
	require.True(t, op.FilterMatch(span, tok))
}

func TestIdenticalCoverageRejectsDifferentRange(t *testing.T) {
	g := testcorpus.Build()
	op := NewIdenticalCoverage(g)
	span := types.Match{Node: testcorpus.Span1, Anno: 0}
	require.False(t, op.FilterMatch(span, types.Match{Node: testcorpus.Span2, Anno: 0}))
}

func TestCommutativeOperatorMatchesItsOwnInverse(t *testing.T) {
	// Property 5: for commutative operators, retrieve_matches restricted
	// to the symmetric candidate set equals that of the inverse operator.
	g := testcorpus.Build()
	op := NewOverlap(g, "annis")
	inv, ok := op.InverseOperator()
	require.True(t, ok)

	s1 := types.Match{Node: testcorpus.Span1, Anno: 0}
	require.Equal(t, retrieveContains(op, s1, testcorpus.Span2), retrieveContains(inv, s1, testcorpus.Span2))
}
