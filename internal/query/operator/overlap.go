package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// Overlap accepts (lhs, rhs) iff their covered token ranges intersect in
// the Ordering component (design §4.F). Retrieval walks lhs's covered
// tokens and, for each, the inverse-Coverage covering nodes.
type Overlap struct {
	g     *graph.Graph
	h     *tokenhelper.Helper
	layer string
}

func NewOverlap(g *graph.Graph, layer string) *Overlap {
	return &Overlap{g: g, h: tokenhelper.New(g), layer: layer}
}

func (o *Overlap) Name() string { return "_o_" }

func (o *Overlap) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	seen := make(map[types.NodeID]struct{})
	var out []types.Match
	for _, tok := range o.h.CoveredTokens(lhs.Node) {
		for _, covering := range o.h.CoveringNodes(tok) {
			if _, dup := seen[covering]; dup {
				continue
			}
			seen[covering] = struct{}{}
			out = append(out, types.Match{Node: covering, Anno: lhs.Anno})
		}
	}
	return annostorage.NewSliceIterator(out)
}

// tokenRange returns [leftPos, rightPos] for node in the Ordering layer.
func (o *Overlap) tokenRange(node types.NodeID) (uint64, uint64, bool) {
	left, ok := o.h.LeftToken(node)
	if !ok {
		return 0, 0, false
	}
	right, ok := o.h.RightToken(node)
	if !ok {
		return 0, 0, false
	}
	leftPos, ok := o.h.TextPosition(left, o.layer)
	if !ok {
		return 0, 0, false
	}
	rightPos, ok := o.h.TextPosition(right, o.layer)
	if !ok {
		return 0, 0, false
	}
	return leftPos, rightPos, true
}

func (o *Overlap) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	ll, lr, ok1 := o.tokenRange(lhs.Node)
	rl, rr, ok2 := o.tokenRange(rhs.Node)
	if !ok1 || !ok2 {
		return false
	}
	return ll <= rr && rl <= lr
}

func (o *Overlap) IsReflexive() bool   { return false }
func (o *Overlap) IsCommutative() bool { return true }

func (o *Overlap) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *Overlap) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *Overlap) InverseOperator() (BinaryOperator, bool) { return o, true }

var _ BinaryOperator = (*Overlap)(nil)

// Inclusion accepts (lhs, rhs) iff rhs's token range is contained within
// lhs's (design §4.F): left(rhs) >= left(lhs) and right(rhs) <= right(lhs).
type Inclusion struct {
	g     *graph.Graph
	h     *tokenhelper.Helper
	layer string
}

func NewInclusion(g *graph.Graph, layer string) *Inclusion {
	return &Inclusion{g: g, h: tokenhelper.New(g), layer: layer}
}

func (o *Inclusion) Name() string { return "_i_" }

func (o *Inclusion) tokenRange(node types.NodeID) (uint64, uint64, bool) {
	left, ok := o.h.LeftToken(node)
	if !ok {
		return 0, 0, false
	}
	right, ok := o.h.RightToken(node)
	if !ok {
		return 0, 0, false
	}
	leftPos, ok := o.h.TextPosition(left, o.layer)
	if !ok {
		return 0, 0, false
	}
	rightPos, ok := o.h.TextPosition(right, o.layer)
	if !ok {
		return 0, 0, false
	}
	return leftPos, rightPos, true
}

// RetrieveMatches expands lhs by Coverage then walks inverse Coverage to
// find candidate contained spans, per the design's retrieval strategy.
func (o *Inclusion) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	seen := make(map[types.NodeID]struct{})
	var out []types.Match
	for _, tok := range o.h.CoveredTokens(lhs.Node) {
		for _, covering := range o.h.CoveringNodes(tok) {
			if _, dup := seen[covering]; dup {
				continue
			}
			seen[covering] = struct{}{}
			out = append(out, types.Match{Node: covering, Anno: lhs.Anno})
		}
	}
	return annostorage.NewSliceIterator(out)
}

func (o *Inclusion) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	ll, lr, ok1 := o.tokenRange(lhs.Node)
	rl, rr, ok2 := o.tokenRange(rhs.Node)
	if !ok1 || !ok2 {
		return false
	}
	return rl >= ll && rr <= lr
}

func (o *Inclusion) IsReflexive() bool   { return true }
func (o *Inclusion) IsCommutative() bool { return false }

func (o *Inclusion) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *Inclusion) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *Inclusion) InverseOperator() (BinaryOperator, bool) { return nil, false }

var _ BinaryOperator = (*Inclusion)(nil)
