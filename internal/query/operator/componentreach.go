package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/types"
)

// EdgeAnnoPredicate optionally restricts a path operator to edges carrying
// a particular annotation value.
type EdgeAnnoPredicate struct {
	Key   types.AnnoKey
	Value types.ValueSearch
	Set   bool
}

// ComponentReachability implements Dominance/Pointing (design §4.F):
// acceptance is a path in the named component whose length falls in
// [Min, Max], with an optional edge-annotation predicate checked on the
// direct edge to the matched node or, failing that, on the edges entering
// the matched node; the other edges of a multi-hop path are not examined
// (see edgeHoldsOnPath). PartOfSubcorpus reuses the same shape
// with Inverse=true (find_connected_inverse) and no range/edge predicate.
type ComponentReachability struct {
	g         *graph.Graph
	component types.Component
	min, max  uint64
	hasMax    bool
	edgeAnno  EdgeAnnoPredicate
	inverse   bool
	name      string
	reflexive bool
}

// NewDominance builds a Dominance-component reachability operator.
func NewDominance(g *graph.Graph, layer, name string, min, max uint64, hasMax bool, edgeAnno EdgeAnnoPredicate) *ComponentReachability {
	return &ComponentReachability{
		g:         g,
		component: types.Component{Type: types.ComponentDominance, Layer: layer, Name: name},
		min:       min, max: max, hasMax: hasMax,
		edgeAnno: edgeAnno,
		name:     ">",
	}
}

// NewPointing builds a Pointing-component reachability operator.
func NewPointing(g *graph.Graph, layer, name string, min, max uint64, hasMax bool, edgeAnno EdgeAnnoPredicate) *ComponentReachability {
	return &ComponentReachability{
		g:         g,
		component: types.Component{Type: types.ComponentPointing, Layer: layer, Name: name},
		min:       min, max: max, hasMax: hasMax,
		edgeAnno: edgeAnno,
		name:     "->",
	}
}

// NewPartOfSubcorpus builds the subcorpus-membership operator: connected
// in the PartOfSubcorpus component, searched via find_connected_inverse
// (design §4.F).
func NewPartOfSubcorpus(g *graph.Graph) *ComponentReachability {
	return &ComponentReachability{
		g:         g,
		component: types.Component{Type: types.ComponentPartOfSubcorpus, Layer: "annis", Name: "PartOfSubcorpus"},
		hasMax:    false,
		inverse:   true,
		name:      "@",
	}
}

func (o *ComponentReachability) Name() string { return o.name }

func (o *ComponentReachability) bound() types.Bound {
	if o.hasMax {
		return types.Included(o.max)
	}
	return types.Unbounded()
}

func (o *ComponentReachability) minDistance() uint64 {
	if o.min == 0 {
		return 1
	}
	return o.min
}

func (o *ComponentReachability) storage() (interface {
	GetOutgoingEdges(types.NodeID) []types.NodeID
	GetIngoingEdges(types.NodeID) []types.NodeID
	FindConnected(types.NodeID, uint64, types.Bound) annostorage.Iterator[types.NodeID]
	FindConnectedInverse(types.NodeID, uint64, types.Bound) annostorage.Iterator[types.NodeID]
	IsConnected(types.NodeID, types.NodeID, uint64, types.Bound) bool
	EdgeAnnos() *annostorage.Store[types.Edge]
}, bool) {
	return o.g.Component(o.component)
}

func (o *ComponentReachability) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	gs, ok := o.storage()
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	var it annostorage.Iterator[types.NodeID]
	if o.inverse {
		it = gs.FindConnectedInverse(lhs.Node, o.minDistance(), o.bound())
	} else {
		it = gs.FindConnected(lhs.Node, o.minDistance(), o.bound())
	}
	var out []types.Match
	for {
		n, more := it.Next()
		if !more {
			break
		}
		if o.edgeAnno.Set && !o.edgeHoldsOnPath(gs, lhs.Node, n) {
			continue
		}
		out = append(out, types.Match{Node: n, Anno: lhs.Anno})
	}
	return annostorage.NewSliceIterator(out)
}

// edgeHoldsOnPath checks whether at least one edge directly connecting
// source and target (or, lacking an annotated direct edge in a multi-hop
// path, at least one ingoing edge of target) carries the predicate's
// annotation — the design's "edge annotation predicate applied per
// returned node by examining the connecting edge".
func (o *ComponentReachability) edgeHoldsOnPath(gs interface {
	GetIngoingEdges(types.NodeID) []types.NodeID
	EdgeAnnos() *annostorage.Store[types.Edge]
}, source, target types.NodeID) bool {
	annos := gs.EdgeAnnos()
	v, ok := annos.GetValueForItem(types.Edge{Source: source, Target: target}, o.edgeAnno.Key)
	if ok {
		return o.edgeAnno.Value.Matches(v)
	}
	for _, pred := range gs.GetIngoingEdges(target) {
		if v, ok := annos.GetValueForItem(types.Edge{Source: pred, Target: target}, o.edgeAnno.Key); ok && o.edgeAnno.Value.Matches(v) {
			return true
		}
	}
	return false
}

func (o *ComponentReachability) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	gs, ok := o.storage()
	if !ok {
		return false
	}
	var connected bool
	if o.inverse {
		connected = gs.IsConnected(rhs.Node, lhs.Node, o.minDistance(), o.bound())
	} else {
		connected = gs.IsConnected(lhs.Node, rhs.Node, o.minDistance(), o.bound())
	}
	if !connected {
		return false
	}
	if o.edgeAnno.Set {
		if o.inverse {
			return o.edgeHoldsOnPath(gs, rhs.Node, lhs.Node)
		}
		return o.edgeHoldsOnPath(gs, lhs.Node, rhs.Node)
	}
	return true
}

func (o *ComponentReachability) IsReflexive() bool   { return o.minDistance() == 0 }
func (o *ComponentReachability) IsCommutative() bool { return false }

func (o *ComponentReachability) EstimationType() Estimation {
	gs, ok := o.storage()
	if !ok {
		return SelectivityOrDefault(false, 0)
	}
	stat := gs.(interface{ GetStatistics() types.GraphStatistic }).GetStatistics()
	if !stat.Valid || stat.Nodes == 0 {
		return SelectivityOrDefault(false, 0)
	}
	return SelectivityOrDefault(true, stat.AvgFanOut/float64(stat.Nodes))
}

func (o *ComponentReachability) EdgeAnnoSelectivity() (float64, bool) {
	if !o.edgeAnno.Set {
		return 0, false
	}
	gs, ok := o.storage()
	if !ok {
		return 0, false
	}
	_, hasVal := o.edgeAnno.Value.Value()
	if !hasVal {
		return 1, true
	}
	annos := gs.EdgeAnnos()
	keyID, ok := annos.LookupKey(o.edgeAnno.Key)
	if !ok {
		return 0, true
	}
	distinctValues := len(annos.GetAllValues(keyID, false))
	if distinctValues == 0 {
		return 0, true
	}
	// Without a per-value count accessor, approximate selectivity as
	// uniform over the observed distinct values for this key.
	return 1 / float64(distinctValues), true
}

func (o *ComponentReachability) InverseOperator() (BinaryOperator, bool) { return nil, false }

var _ BinaryOperator = (*ComponentReachability)(nil)
