package plan

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"corpusgraph/internal/config"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/testcorpus"
	"corpusgraph/internal/types"
)

func TestMain(m *testing.M) {
	os.Exit(goleak.VerifyTestMain(m))
}

func drain(t *testing.T, op interface {
	Next(ctx context.Context) (types.MatchGroup, bool, error)
}) []types.MatchGroup {
	t.Helper()
	ctx := context.Background()
	var out []types.MatchGroup
	for {
		m, ok, err := op.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

func anyTokenSpec() operator.NodeSearchSpec {
	return operator.NodeSearchSpec{Kind: operator.SpecAnyToken}
}

func TestBuildTwoNodePrecedenceUsesIndexJoin(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: anyTokenSpec()},
			{NodeNum: 1, Spec: anyTokenSpec()},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}
	cfg := config.DefaultConfig().Planner
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	out := drain(t, plan)
	require.Len(t, out, 4, "immediate precedence over 5 tokens yields 4 pairs")
	require.Equal(t, "IndexJoin(.)", plan.Desc().ImplName)
}

func TestBuildUsesParallelIndexJoinWhenConfigured(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: anyTokenSpec()},
			{NodeNum: 1, Spec: anyTokenSpec()},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}
	cfg := config.DefaultConfig().Planner
	cfg.UseParallelJoins = true
	cfg.MaxWorkers = 2
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	require.Equal(t, "ParallelIndexJoin(.)", plan.Desc().ImplName)
	out := drain(t, plan)
	require.Len(t, out, 4, "parallel index join must emit the same tuples as the sequential one")
}

func TestBuildTransitiveChainPlacesOperatorsInOrder(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: anyTokenSpec()},
			{NodeNum: 1, Spec: anyTokenSpec()},
			{NodeNum: 2, Spec: anyTokenSpec()},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
			{LHSNode: 1, RHSNode: 2, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}
	cfg := config.DefaultConfig().Planner
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	out := drain(t, plan)
	require.Len(t, out, 3, "three-token immediate-precedence chain over 5 tokens yields 3 triples")
	for _, tuple := range out {
		require.Len(t, tuple, 3)
	}
}

func TestBuildSameTreeConstraintUsesBinaryFilter(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: anyTokenSpec()},
			{NodeNum: 1, Spec: anyTokenSpec()},
			{NodeNum: 2, Spec: anyTokenSpec()},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
			{LHSNode: 1, RHSNode: 2, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
			{LHSNode: 0, RHSNode: 2, Op: operator.NewPrecedence(g, "annis", 2, 2, true), GlobalReflexive: true},
		},
	}
	cfg := config.DefaultConfig().Planner
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	out := drain(t, plan)
	require.Len(t, out, 3, "redundant distance-2 constraint over an existing chain doesn't change cardinality")
	require.Equal(t, "BinaryFilter(.)", plan.Desc().ImplName)
}

func TestBuildOverlapOnTwoSpans(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: operator.NodeSearchSpec{Kind: operator.SpecExactValue, NS: nil, Name: types.NodeNameKey.Name, Value: "doc1#s1"}},
			{NodeNum: 1, Spec: operator.NodeSearchSpec{Kind: operator.SpecExactValue, NS: nil, Name: types.NodeNameKey.Name, Value: "doc1#s2"}},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewOverlap(g, "annis")},
		},
	}
	cfg := config.DefaultConfig().Planner
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	out := drain(t, plan)
	require.Len(t, out, 1, "s1 and s2 overlap on tok3/tok4")
}

func TestBuildDisconnectedNodesUseCartesianJoin(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: operator.NodeSearchSpec{Kind: operator.SpecExactValue, NS: nil, Name: types.NodeNameKey.Name, Value: "doc1#s1"}},
			{NodeNum: 1, Spec: operator.NodeSearchSpec{Kind: operator.SpecExactValue, NS: nil, Name: types.NodeNameKey.Name, Value: "doc1#s2"}},
		},
	}
	cfg := config.DefaultConfig().Planner
	plan, err := Build(g, conj, cfg)
	require.NoError(t, err)
	out := drain(t, plan)
	require.Len(t, out, 1, "one s1 times one s2 is a single cartesian pair")
	require.Equal(t, 2, plan.Width())
}

func TestBuildExhaustiveMatchesGreedyResultSet(t *testing.T) {
	g := testcorpus.Build()
	conj := Conjunction{
		Nodes: []NodeConstraint{
			{NodeNum: 0, Spec: anyTokenSpec()},
			{NodeNum: 1, Spec: anyTokenSpec()},
			{NodeNum: 2, Spec: anyTokenSpec()},
		},
		Operators: []OperatorConstraint{
			{LHSNode: 0, RHSNode: 1, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
			{LHSNode: 1, RHSNode: 2, Op: operator.NewPrecedence(g, "annis", 1, 1, true), GlobalReflexive: true},
		},
	}

	exhaustiveCfg := config.DefaultConfig().Planner
	exhaustiveCfg.AllPermutationsThreshold = 7
	exhaustivePlan, err := Build(g, conj, exhaustiveCfg)
	require.NoError(t, err)
	exhaustiveOut := drain(t, exhaustivePlan)

	greedyCfg := exhaustiveCfg
	greedyCfg.AllPermutationsThreshold = 0
	greedyPlan, err := Build(g, conj, greedyCfg)
	require.NoError(t, err)
	greedyOut := drain(t, greedyPlan)

	require.ElementsMatch(t, toNodeTriples(exhaustiveOut), toNodeTriples(greedyOut))
}

func toNodeTriples(groups []types.MatchGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		nodes := make(map[types.NodeID]struct{}, len(g))
		for _, m := range g {
			nodes[m.Node] = struct{}{}
		}
		var ids []types.NodeID
		for n := range nodes {
			ids = append(ids, n)
		}
		out[i] = nodeSetKey(ids)
	}
	return out
}

func nodeSetKey(ids []types.NodeID) string {
	seen := make(map[types.NodeID]bool)
	for _, id := range ids {
		seen[id] = true
	}
	key := ""
	for id := types.NodeID(1); id <= 10; id++ {
		if seen[id] {
			key += "1"
		} else {
			key += "0"
		}
	}
	return key
}
