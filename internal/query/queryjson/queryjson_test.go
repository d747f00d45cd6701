package queryjson

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"corpusgraph/internal/config"
	"corpusgraph/internal/query/executor"
	"corpusgraph/internal/testcorpus"
)

func TestMain(m *testing.M) {
	os.Exit(goleak.VerifyTestMain(m))
}

const twoTokenPrecedence = `[
	{
		"nodes": [
			{"node_num": 0, "kind": "any_token"},
			{"node_num": 1, "kind": "any_token"}
		],
		"operators": [
			{"lhs_node": 0, "rhs_node": 1, "global_reflexive": true, "op": {"kind": "precedence", "min": 1, "max": 1, "has_max": true}}
		]
	}
]`

func TestDecodeBuildsRunnableDisjunction(t *testing.T) {
	g := testcorpus.Build()
	disj, err := Decode(g, []byte(twoTokenPrecedence))
	require.NoError(t, err)
	require.Len(t, disj, 1)

	results, err := executor.Execute(context.Background(), g, disj, config.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, results, 4)
}

func TestDecodeRejectsUnknownNodeKind(t *testing.T) {
	g := testcorpus.Build()
	_, err := Decode(g, []byte(`[{"nodes":[{"node_num":0,"kind":"bogus"}],"operators":[]}]`))
	require.Error(t, err)
}

func TestDecodeRejectsEmptyDisjunction(t *testing.T) {
	g := testcorpus.Build()
	_, err := Decode(g, []byte(`[]`))
	require.Error(t, err)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	g := testcorpus.Build()
	_, err := Decode(g, []byte(`not json`))
	require.Error(t, err)
}
