package corpusquery

import (
	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/graphstorage"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// allComponentTypes enumerates the closed ComponentType set so Subgraph can
// walk every registered component without the Graph needing a bespoke
// "list everything" accessor.
var allComponentTypes = []types.ComponentType{
	types.ComponentCoverage,
	types.ComponentInverseCoverage,
	types.ComponentDominance,
	types.ComponentPointing,
	types.ComponentOrdering,
	types.ComponentLeftToken,
	types.ComponentRightToken,
	types.ComponentPartOfSubcorpus,
}

// Subgraph extracts a new, independent Graph covering the given match node
// names plus leftCtx/rightCtx tokens of surrounding context, following
// original_source's find_subgraph pattern: look up matches, expand by
// context, copy into a fresh in-memory graph (design §6 names `subgraph`
// without a dedicated [MODULE]). segmentation selects which Ordering layer
// context is measured in; nil means the primary "annis" layer.
func Subgraph(g *graph.Graph, nodeNames []string, leftCtx, rightCtx uint64, segmentation *string) (*graph.Graph, error) {
	layer := "annis"
	if segmentation != nil {
		layer = *segmentation
	}
	ordering, ok := g.OrderingComponent(layer)
	if !ok {
		return nil, corpuserrors.New(corpuserrors.ImpossibleSearch, "no ordering component for layer %q", layer)
	}

	h := tokenhelper.New(g)
	included := make(map[types.NodeID]struct{})

	for _, name := range nodeNames {
		node, ok := resolveNodeName(g, name)
		if !ok {
			logging.QueryDebug("subgraph: node name %q not found, skipping", name)
			continue
		}
		included[node] = struct{}{}
		for _, tok := range h.CoveredTokens(node) {
			included[tok] = struct{}{}
		}

		if left, ok := h.LeftToken(node); ok {
			it := ordering.FindConnectedInverse(left, 1, types.Included(leftCtx))
			for {
				tok, more := it.Next()
				if !more {
					break
				}
				included[tok] = struct{}{}
			}
		}
		if right, ok := h.RightToken(node); ok {
			it := ordering.FindConnected(right, 1, types.Included(rightCtx))
			for {
				tok, more := it.Next()
				if !more {
					break
				}
				included[tok] = struct{}{}
			}
		}
	}

	// Pull in any span whose covered tokens intersect what's already
	// included, along with the rest of its own covered tokens, so a
	// partially-windowed span still shows its full extent.
	for _, comp := range g.ComponentsByType(types.ComponentCoverage) {
		gs, _ := g.Component(comp)
		for _, span := range gs.SourceNodes() {
			covers := gs.GetOutgoingEdges(span)
			if !anyIncluded(covers, included) {
				continue
			}
			included[span] = struct{}{}
			for _, tok := range covers {
				included[tok] = struct{}{}
			}
		}
	}

	out := graph.New()
	for node := range included {
		for _, anno := range g.NodeAnnos.GetAnnotationsForItem(node) {
			key, ok := g.NodeAnnos.ResolveKey(anno.Key)
			if !ok {
				continue
			}
			out.NodeAnnos.Insert(node, key, anno.Value)
		}
	}

	for _, ct := range allComponentTypes {
		for _, comp := range g.ComponentsByType(ct) {
			gs, _ := g.Component(comp)
			filtered := filteredCopy(gs, included)
			if len(filtered.SourceNodes()) == 0 {
				continue
			}
			out.AddComponent(comp, filtered)
		}
	}

	return out, nil
}

func anyIncluded(nodes []types.NodeID, included map[types.NodeID]struct{}) bool {
	for _, n := range nodes {
		if _, ok := included[n]; ok {
			return true
		}
	}
	return false
}

func resolveNodeName(g *graph.Graph, name string) (types.NodeID, bool) {
	it := g.NodeAnnos.ExactAnnoSearch(nil, types.NodeNameKey.Name, types.SomeValue(name))
	m, ok := it.Next()
	if !ok {
		return 0, false
	}
	return m.Item, true
}

// filteredCopy rebuilds gs restricted to nodes in included, as a plain
// AdjacencyList: extracted subgraphs are small and read once, so the
// source storage's specialized representation isn't worth reconstructing.
func filteredCopy(gs graphstorage.GraphStorage, included map[types.NodeID]struct{}) graphstorage.GraphStorage {
	out := graphstorage.NewAdjacencyList()
	for _, src := range gs.SourceNodes() {
		if _, ok := included[src]; !ok {
			continue
		}
		for _, tgt := range gs.GetOutgoingEdges(src) {
			if _, ok := included[tgt]; !ok {
				continue
			}
			edge := types.Edge{Source: src, Target: tgt}
			out.AddEdge(edge)
			for _, anno := range gs.EdgeAnnos().GetAnnotationsForItem(edge) {
				key, ok := gs.EdgeAnnos().ResolveKey(anno.Key)
				if !ok {
					continue
				}
				out.EdgeAnnos().Insert(edge, key, anno.Value)
			}
		}
	}
	return out
}
