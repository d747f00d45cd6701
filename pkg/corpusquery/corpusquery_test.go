package corpusquery

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"corpusgraph/internal/config"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/types"
)

func TestMain(m *testing.M) {
	os.Exit(goleak.VerifyTestMain(m))
}

func tokenNodes() []plan.NodeConstraint {
	return []plan.NodeConstraint{{NodeNum: 0, Spec: operator.NodeSearchSpec{Kind: operator.SpecAnyToken}}}
}

func TestCountAllTokens(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	n, err := Count(context.Background(), g, disj, config.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestCountImmediatePrecedence(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{
		Nodes: []plan.NodeConstraint{
			{NodeNum: 0, Spec: operator.NodeSearchSpec{Kind: operator.SpecAnyToken}},
			{NodeNum: 1, Spec: operator.NodeSearchSpec{Kind: operator.SpecAnyToken}},
		},
		Operators: []plan.OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}}
	n, err := Count(context.Background(), g, disj, config.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestFindReturnsSerializedNodeNames(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	out, err := Find(context.Background(), g, disj, 0, nil, config.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out, 5)
	require.Equal(t, "doc1#tok1", out[0])
	require.Equal(t, "doc1#tok5", out[4])
}

func TestFindRespectsOffsetAndLimit(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	limit := 2
	out, err := Find(context.Background(), g, disj, 1, &limit, config.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"doc1#tok2", "doc1#tok3"}, out)
}

func TestCountEnforcesMaxResultSetSize(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	cfg := config.DefaultConfig()
	cfg.CoreLimits.MaxResultSetSize = 1
	_, err := Count(context.Background(), g, disj, cfg)
	require.Error(t, err)
}

func TestFrequencyGroupsByAnnotationValue(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	def := FrequencyDefinition{{NodeNum: 0, Key: types.TokKey}}
	rows, err := Frequency(context.Background(), g, disj, def, config.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, rows, 5, "each of the 5 tokens has a distinct tok value")
	for _, row := range rows {
		require.Equal(t, 1, row.Count)
	}
}

func TestSubgraphExtractsWindowAroundMatch(t *testing.T) {
	g := testcorpus.Build()
	sub, err := Subgraph(g, []string{"doc1#tok3"}, 1, 1, nil)
	require.NoError(t, err)

	disj := plan.Disjunction{{Nodes: tokenNodes()}}
	out, err := Find(context.Background(), sub, disj, 0, nil, config.DefaultConfig())
	require.NoError(t, err)
	// s2 covers tok3 inside the window, so its full extent (through tok5)
	// is pulled in as well.
	require.ElementsMatch(t, []string{"doc1#tok2", "doc1#tok3", "doc1#tok4", "doc1#tok5"}, out)
}

func TestSerializeMatchGroupOmitsDefaultAnnotation(t *testing.T) {
	g := testcorpus.Build()
	keyID, ok := g.NodeAnnos.LookupKey(types.NodeNameKey)
	require.True(t, ok)
	m := types.Match{Node: testcorpus.Tok1, Anno: keyID}
	s := SerializeMatchGroup(g, types.MatchGroup{m})
	require.Equal(t, "doc1#tok1", s)
	require.False(t, strings.Contains(s, "::"))
}
