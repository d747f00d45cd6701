// Package graph owns the node annotation store plus one graph storage per
// component and exposes the lookups operators need (design §4.D).
package graph

import (
	"sort"
	"sync"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graphstorage"
	"corpusgraph/internal/types"
)

// Graph is read-only during query evaluation (§3 Lifecycles): it is built
// once by an importer (external to this module) and shared by pointer
// across concurrent queries.
type Graph struct {
	mu sync.RWMutex

	NodeAnnos *annostorage.Store[types.NodeID]

	components map[types.Component]graphstorage.GraphStorage

	// coverageUnion lazily combines every Coverage component; token
	// helpers (§4.E) use it to decide whether a node has any outgoing
	// coverage edge.
	coverageUnion     graphstorage.GraphStorage
	coverageUnionOnce sync.Once
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		NodeAnnos:  annostorage.NewStore[types.NodeID](func(a, b types.NodeID) bool { return a < b }),
		components: make(map[types.Component]graphstorage.GraphStorage),
	}
}

// AddComponent installs (or replaces) the storage for a component.
func (g *Graph) AddComponent(c types.Component, gs graphstorage.GraphStorage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.components[c] = gs
	g.coverageUnion = nil
	g.coverageUnionOnce = sync.Once{}
}

// Component returns the storage for c, if one exists.
func (g *Graph) Component(c types.Component) (graphstorage.GraphStorage, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	gs, ok := g.components[c]
	return gs, ok
}

// ComponentsByType returns every component of the given type, ordered by
// (layer, name) for determinism.
func (g *Graph) ComponentsByType(t types.ComponentType) []types.Component {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []types.Component
	for c := range g.components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CoverageUnion returns the union of every Coverage component's storage,
// built lazily and cached for the Graph's lifetime (it is read-only once
// queries begin).
func (g *Graph) CoverageUnion() graphstorage.GraphStorage {
	g.coverageUnionOnce.Do(func() {
		var members []graphstorage.EdgeContainer
		for _, c := range g.ComponentsByType(types.ComponentCoverage) {
			if gs, ok := g.Component(c); ok {
				members = append(members, gs)
			}
		}
		g.coverageUnion = graphstorage.NewUnion(members...)
	})
	return g.coverageUnion
}

// InverseCoverageUnion returns the union of every InverseCoverage
// component's storage.
func (g *Graph) InverseCoverageUnion() graphstorage.GraphStorage {
	var members []graphstorage.EdgeContainer
	for _, c := range g.ComponentsByType(types.ComponentInverseCoverage) {
		if gs, ok := g.Component(c); ok {
			members = append(members, gs)
		}
	}
	return graphstorage.NewUnion(members...)
}

// OrderingComponent returns the Ordering component storage for a given
// layer (conventionally "annis" for the primary text), if present.
func (g *Graph) OrderingComponent(layer string) (graphstorage.GraphStorage, bool) {
	return g.Component(types.Component{Type: types.ComponentOrdering, Layer: layer, Name: ""})
}

// LeftTokenComponent / RightTokenComponent return the helper component
// relating a non-token node to its leftmost/rightmost covered token.
func (g *Graph) LeftTokenComponent() (graphstorage.GraphStorage, bool) {
	return g.Component(types.Component{Type: types.ComponentLeftToken, Layer: "annis", Name: "LeftToken"})
}

func (g *Graph) RightTokenComponent() (graphstorage.GraphStorage, bool) {
	return g.Component(types.Component{Type: types.ComponentRightToken, Layer: "annis", Name: "RightToken"})
}

// PartOfSubcorpusComponent returns the subcorpus membership component.
func (g *Graph) PartOfSubcorpusComponent() (graphstorage.GraphStorage, bool) {
	return g.Component(types.Component{Type: types.ComponentPartOfSubcorpus, Layer: "annis", Name: "PartOfSubcorpus"})
}

// IsToken reports whether node carries the reserved (annis, tok)
// annotation and has no outgoing edge in any Coverage component — the
// sole ground truth for token-ness (§3).
func (g *Graph) IsToken(node types.NodeID) bool {
	if _, ok := g.NodeAnnos.GetValueForItem(node, types.TokKey); !ok {
		return false
	}
	return len(g.CoverageUnion().GetOutgoingEdges(node)) == 0
}

// NodeName returns the (annis, node_name) annotation value for node.
func (g *Graph) NodeName(node types.NodeID) (string, bool) {
	return g.NodeAnnos.GetValueForItem(node, types.NodeNameKey)
}
