package executor

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"corpusgraph/internal/config"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

func TestMain(m *testing.M) {
	os.Exit(goleak.VerifyTestMain(m))
}

func anySpec() operator.NodeSearchSpec {
	return operator.NodeSearchSpec{Kind: operator.SpecAnyToken}
}

func TestExecuteOrdersByTextPosition(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{
		Nodes: []plan.NodeConstraint{{NodeNum: 0, Spec: anySpec()}},
	}}
	cfg := config.DefaultConfig()
	out, err := Execute(context.Background(), g, disj, cfg)
	require.NoError(t, err)
	require.Len(t, out, 5)
	for i := 1; i < len(out); i++ {
		name0, _ := g.NodeName(out[i-1][0].Node)
		name1, _ := g.NodeName(out[i][0].Node)
		require.LessOrEqual(t, name0, name1)
	}
	require.Equal(t, testcorpus.Tok1, out[0][0].Node)
	require.Equal(t, testcorpus.Tok5, out[4][0].Node)

	gotNames := make([]string, len(out))
	for i, tuple := range out {
		gotNames[i], _ = g.NodeName(tuple[0].Node)
	}
	wantNames := []string{"doc1#tok1", "doc1#tok2", "doc1#tok3", "doc1#tok4", "doc1#tok5"}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("token order mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteDedupsAcrossDisjunctionBranches(t *testing.T) {
	g := testcorpus.Build()
	spanSpec := func(name string) operator.NodeSearchSpec {
		return operator.NodeSearchSpec{Kind: operator.SpecExactValue, Name: types.NodeNameKey.Name, Value: name}
	}
	branch := plan.Conjunction{Nodes: []plan.NodeConstraint{{NodeNum: 0, Spec: spanSpec("doc1#s1")}}}
	disj := plan.Disjunction{branch, branch} // identical branch twice
	cfg := config.DefaultConfig()
	out, err := Execute(context.Background(), g, disj, cfg)
	require.NoError(t, err)
	require.Len(t, out, 1, "identical branches must dedup to a single result")
}

func TestExecuteSingleBranchSkipsDedup(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{
		Nodes: []plan.NodeConstraint{{NodeNum: 0, Spec: anySpec()}},
	}}
	cfg := config.DefaultConfig()
	out, err := Execute(context.Background(), g, disj, cfg)
	require.NoError(t, err)
	require.Len(t, out, 5)
}

func TestExecuteCancellation(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{
		Nodes: []plan.NodeConstraint{{NodeNum: 0, Spec: anySpec()}},
	}}
	cfg := config.DefaultConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Execute(ctx, g, disj, cfg)
	require.Error(t, err)
}

func TestExecuteReordersToCanonicalNodeOrder(t *testing.T) {
	g := testcorpus.Build()
	disj := plan.Disjunction{{
		Nodes: []plan.NodeConstraint{
			{NodeNum: 0, Spec: anySpec()},
			{NodeNum: 1, Spec: anySpec()},
		},
		Operators: []plan.OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}}
	cfg := config.DefaultConfig()
	out, err := Execute(context.Background(), g, disj, cfg)
	require.NoError(t, err)
	require.Len(t, out, 4)
	h := tokenhelper.New(g)
	for _, tuple := range out {
		require.Len(t, tuple, 2)
		leftPos, ok := h.TextPosition(tuple[0].Node, "annis")
		require.True(t, ok)
		rightPos, ok := h.TextPosition(tuple[1].Node, "annis")
		require.True(t, ok)
		require.Equal(t, leftPos+1, rightPos, "node #0 must precede node #1 by exactly one token")
	}
}
