// Package tokenhelper layers left/right token and coverage queries on top
// of graph.Graph (design §4.E), used by binary operators that reason about
// token ranges (Overlap, Inclusion, Precedence, alignment operators).
package tokenhelper

import (
	"corpusgraph/internal/graph"
	"corpusgraph/internal/types"
)

// Helper wraps a Graph with the token-range queries operators need.
type Helper struct {
	g *graph.Graph
}

// New wraps g.
func New(g *graph.Graph) *Helper {
	return &Helper{g: g}
}

// LeftToken returns the leftmost token covered by node. For a token node
// itself, that is the node. For a non-token node, it follows the single
// outgoing LeftToken edge.
func (h *Helper) LeftToken(node types.NodeID) (types.NodeID, bool) {
	if h.g.IsToken(node) {
		return node, true
	}
	lt, ok := h.g.LeftTokenComponent()
	if !ok {
		return 0, false
	}
	out := lt.GetOutgoingEdges(node)
	if len(out) == 0 {
		return 0, false
	}
	return out[0], true
}

// RightToken returns the rightmost token covered by node.
func (h *Helper) RightToken(node types.NodeID) (types.NodeID, bool) {
	if h.g.IsToken(node) {
		return node, true
	}
	rt, ok := h.g.RightTokenComponent()
	if !ok {
		return 0, false
	}
	out := rt.GetOutgoingEdges(node)
	if len(out) == 0 {
		return 0, false
	}
	return out[0], true
}

// CoveredTokens returns every token covered by node: itself if node is a
// token, otherwise every token reachable by a single Coverage edge.
func (h *Helper) CoveredTokens(node types.NodeID) []types.NodeID {
	if h.g.IsToken(node) {
		return []types.NodeID{node}
	}
	cov := h.g.CoverageUnion()
	out := cov.GetOutgoingEdges(node)
	result := make([]types.NodeID, 0, len(out))
	for _, t := range out {
		if h.g.IsToken(t) {
			result = append(result, t)
		}
	}
	return result
}

// CoveringNodes returns every non-token node that covers token via an
// inverse Coverage edge (i.e. spans overlapping that token), plus the
// token itself since a token trivially covers itself for range purposes.
func (h *Helper) CoveringNodes(token types.NodeID) []types.NodeID {
	inv := h.g.InverseCoverageUnion()
	out := append([]types.NodeID{token}, inv.GetOutgoingEdges(token)...)
	return out
}

// TextPosition returns the left-token's position in the Ordering component
// for layer, used by result ordering (§4.I). ok is false if no Ordering
// component is registered for layer or the token is not part of it.
func (h *Helper) TextPosition(node types.NodeID, layer string) (uint64, bool) {
	left, ok := h.LeftToken(node)
	if !ok {
		return 0, false
	}
	ordering, ok := h.g.OrderingComponent(layer)
	if !ok {
		return 0, false
	}
	// Position is computed as distance from an arbitrary chain start; since
	// Ordering is built as Linear chains, Distance from the chain's first
	// token gives a stable, comparable position. Graph storages do not
	// expose "position in chain" directly, so fall back to counting
	// predecessors via FindConnectedInverse with Unbounded, which is exact
	// but only cheap for the Linear representation the classifier picks
	// for Ordering components.
	count := uint64(0)
	it := ordering.FindConnectedInverse(left, 1, types.Unbounded())
	for {
		_, more := it.Next()
		if !more {
			break
		}
		count++
	}
	return count, true
}
