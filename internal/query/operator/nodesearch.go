// Package operator implements node search leaves and binary operators
// (design §4.F): the only place query semantics live outside the planner
// and physical operator layers.
package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/types"
)

// SpecKind discriminates the closed set of node-search leaf variants.
type SpecKind int

const (
	SpecExactValue SpecKind = iota
	SpecNotExactValue
	SpecRegexValue
	SpecExactTokenValue
	SpecRegexTokenValue
	SpecAnyToken
	SpecAnyNode
)

// NodeSearchSpec is the closed variant set a query node search compiles
// from (design §4.F).
type NodeSearchSpec struct {
	Kind      SpecKind
	NS        *string
	Name      string
	Value     string // exact value, or regex pattern for *RegexValue kinds
	IsMeta    bool
	LeafsOnly bool
}

// NodeSearch is the leaf iterator producing single-position MatchGroups.
// It owns a base iterator from the annotation store plus an in-memory
// filter predicate, so a joining operator can reapply the same filter
// cheaply on the index side of an IndexJoin.
type NodeSearch struct {
	g    *graph.Graph
	spec NodeSearchSpec

	matches []annostorage.ItemMatch[types.NodeID]
	index   map[types.Match]struct{}
}

// NewNodeSearch compiles spec against g, eagerly materializing the match
// set (the in-memory engine this module targets holds a whole Graph
// resident, so there is no benefit to deferring beyond the annotation
// store's own lazy iterators).
func NewNodeSearch(g *graph.Graph, spec NodeSearchSpec) (*NodeSearch, error) {
	ns := &NodeSearch{g: g, spec: spec}
	if err := ns.compile(); err != nil {
		return nil, err
	}
	ns.index = make(map[types.Match]struct{}, len(ns.matches))
	for _, m := range ns.matches {
		ns.index[types.Match{Node: m.Item, Anno: m.Key}] = struct{}{}
	}
	return ns, nil
}

func (ns *NodeSearch) compile() error {
	g := ns.g
	switch ns.spec.Kind {
	case SpecExactValue:
		it := g.NodeAnnos.ExactAnnoSearch(ns.spec.NS, ns.spec.Name, types.SomeValue(ns.spec.Value))
		ns.matches = drainItems(it)
	case SpecNotExactValue:
		it := g.NodeAnnos.ExactAnnoSearch(ns.spec.NS, ns.spec.Name, types.NotSomeValue(ns.spec.Value))
		ns.matches = drainItems(it)
	case SpecRegexValue:
		it, err := g.NodeAnnos.RegexAnnoSearch(ns.spec.NS, ns.spec.Name, ns.spec.Value, false)
		if err != nil {
			return err
		}
		ns.matches = drainItems(it)
	case SpecExactTokenValue:
		it := g.NodeAnnos.ExactAnnoSearch(nil, types.TokKey.Name, types.SomeValue(ns.spec.Value))
		ns.matches = ns.filterLeafs(drainItems(it))
	case SpecRegexTokenValue:
		it, err := g.NodeAnnos.RegexAnnoSearch(nil, types.TokKey.Name, ns.spec.Value, false)
		if err != nil {
			return err
		}
		ns.matches = ns.filterLeafs(drainItems(it))
	case SpecAnyToken:
		it := g.NodeAnnos.ExactAnnoSearch(nil, types.TokKey.Name, types.AnyValue())
		ns.matches = ns.filterLeafs(drainItems(it))
	case SpecAnyNode:
		keyID, ok := g.NodeAnnos.LookupKey(types.NodeNameKey)
		if !ok {
			ns.matches = nil
			return nil
		}
		for _, v := range g.NodeAnnos.GetAllValues(keyID, false) {
			it := g.NodeAnnos.ExactAnnoSearch(nil, types.NodeNameKey.Name, types.SomeValue(v))
			ns.matches = append(ns.matches, drainItems(it)...)
		}
	default:
		return corpuserrors.New(corpuserrors.Internal, "unknown node search spec kind %v", ns.spec.Kind)
	}
	return nil
}

// filterLeafs restricts token matches to leaves (no outgoing Coverage
// edges in any Coverage component) when spec.LeafsOnly is set. Token nodes
// never have outgoing Coverage edges by definition (§3), so this is only
// a meaningful restriction when the spec intentionally broadens beyond
// strict tokens (kept for symmetry with the operator catalog's naming).
func (ns *NodeSearch) filterLeafs(in []annostorage.ItemMatch[types.NodeID]) []annostorage.ItemMatch[types.NodeID] {
	if !ns.spec.LeafsOnly {
		return in
	}
	out := in[:0]
	for _, m := range in {
		if len(ns.g.CoverageUnion().GetOutgoingEdges(m.Item)) == 0 {
			out = append(out, m)
		}
	}
	return out
}

func drainItems(it annostorage.Iterator[annostorage.ItemMatch[types.NodeID]]) []annostorage.ItemMatch[types.NodeID] {
	var out []annostorage.ItemMatch[types.NodeID]
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out
}

// Execute returns the leaf's MatchGroups (width 1).
func (ns *NodeSearch) Execute() annostorage.Iterator[types.MatchGroup] {
	groups := make([]types.MatchGroup, len(ns.matches))
	for i, m := range ns.matches {
		groups[i] = types.MatchGroup{{Node: m.Item, Anno: m.Key}}
	}
	return annostorage.NewSliceIterator(groups)
}

// Filter reapplies this leaf's predicate to a single match, used by
// IndexJoin to confirm an operator-supplied RHS candidate is a valid leaf.
func (ns *NodeSearch) Filter(m types.Match) bool {
	_, ok := ns.index[m]
	return ok
}

// EstimatedCardinality is the base cost the planner uses for this leaf.
func (ns *NodeSearch) EstimatedCardinality() int {
	return len(ns.matches)
}

// QualifiedName returns the (ns, name) this leaf searched.
func (ns *NodeSearch) QualifiedName() (*string, string) {
	return ns.spec.NS, ns.spec.Name
}
