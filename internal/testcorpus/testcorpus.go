// Package testcorpus builds the synthetic corpus used by design §8's
// scenarios: five tokens t1..t5 over one document, with span s1 covering
// t2-t4 and span s2 covering t3-t5. It is shared by operator, planner, and
// executor tests so each package exercises the same fixture.
package testcorpus

import (
	"corpusgraph/internal/graph"
	"corpusgraph/internal/graphstorage"
	"corpusgraph/internal/types"
)

// Node IDs, fixed for test determinism.
const (
	Tok1 types.NodeID = iota + 1
	Tok2
	Tok3
	Tok4
	Tok5
	Span1 // covers Tok2..Tok4
	Span2 // covers Tok3..Tok5
)

// Build returns a fully wired Graph for the five-token scenario corpus.
func Build() *graph.Graph {
	g := graph.New()

	tokens := map[types.NodeID]string{
		Tok1: "the", Tok2: "cat", Tok3: "sat", Tok4: "on", Tok5: "mat",
	}
	for id, val := range tokens {
		g.NodeAnnos.Insert(id, types.TokKey, val)
		g.NodeAnnos.Insert(id, types.NodeNameKey, nodeName(id))
	}
	g.NodeAnnos.Insert(Span1, types.NodeNameKey, nodeName(Span1))
	g.NodeAnnos.Insert(Span2, types.NodeNameKey, nodeName(Span2))

	ordering := graphstorage.NewLinear()
	ordering.AddEdge(types.Edge{Source: Tok1, Target: Tok2})
	ordering.AddEdge(types.Edge{Source: Tok2, Target: Tok3})
	ordering.AddEdge(types.Edge{Source: Tok3, Target: Tok4})
	ordering.AddEdge(types.Edge{Source: Tok4, Target: Tok5})
	g.AddComponent(types.Component{Type: types.ComponentOrdering, Layer: "annis", Name: ""}, ordering)

	coverage := graphstorage.NewAdjacencyList()
	coverage.AddEdge(types.Edge{Source: Span1, Target: Tok2})
	coverage.AddEdge(types.Edge{Source: Span1, Target: Tok3})
	coverage.AddEdge(types.Edge{Source: Span1, Target: Tok4})
	coverage.AddEdge(types.Edge{Source: Span2, Target: Tok3})
	coverage.AddEdge(types.Edge{Source: Span2, Target: Tok4})
	coverage.AddEdge(types.Edge{Source: Span2, Target: Tok5})
	g.AddComponent(types.Component{Type: types.ComponentCoverage, Layer: "annis", Name: ""}, coverage)

	invCoverage := graphstorage.NewAdjacencyList()
	invCoverage.AddEdge(types.Edge{Source: Tok2, Target: Span1})
	invCoverage.AddEdge(types.Edge{Source: Tok3, Target: Span1})
	invCoverage.AddEdge(types.Edge{Source: Tok4, Target: Span1})
	invCoverage.AddEdge(types.Edge{Source: Tok3, Target: Span2})
	invCoverage.AddEdge(types.Edge{Source: Tok4, Target: Span2})
	invCoverage.AddEdge(types.Edge{Source: Tok5, Target: Span2})
	g.AddComponent(types.Component{Type: types.ComponentInverseCoverage, Layer: "annis", Name: ""}, invCoverage)

	leftToken := graphstorage.NewDenseAdjacency()
	leftToken.AddEdge(types.Edge{Source: Span1, Target: Tok2})
	leftToken.AddEdge(types.Edge{Source: Span2, Target: Tok3})
	g.AddComponent(types.Component{Type: types.ComponentLeftToken, Layer: "annis", Name: "LeftToken"}, leftToken)

	rightToken := graphstorage.NewDenseAdjacency()
	rightToken.AddEdge(types.Edge{Source: Span1, Target: Tok4})
	rightToken.AddEdge(types.Edge{Source: Span2, Target: Tok5})
	g.AddComponent(types.Component{Type: types.ComponentRightToken, Layer: "annis", Name: "RightToken"}, rightToken)

	return g
}

func nodeName(id types.NodeID) string {
	switch id {
	case Tok1:
		return "doc1#tok1"
	case Tok2:
		return "doc1#tok2"
	case Tok3:
		return "doc1#tok3"
	case Tok4:
		return "doc1#tok4"
	case Tok5:
		return "doc1#tok5"
	case Span1:
		return "doc1#s1"
	case Span2:
		return "doc1#s2"
	default:
		return "doc1#unknown"
	}
}
