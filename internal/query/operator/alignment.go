package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// LeftAlignment accepts (lhs, rhs) iff they share the same left token,
// retrieved via ingoing LeftToken edges from the alignment token (design
// §4.F).
type LeftAlignment struct {
	g *graph.Graph
	h *tokenhelper.Helper
}

// NewLeftAlignment builds the operator bound to g.
func NewLeftAlignment(g *graph.Graph) *LeftAlignment {
	return &LeftAlignment{g: g, h: tokenhelper.New(g)}
}

func (o *LeftAlignment) Name() string { return "_l_" }

func (o *LeftAlignment) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	leftTok, ok := o.h.LeftToken(lhs.Node)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	lt, ok := o.g.LeftTokenComponent()
	var candidates []types.NodeID
	if ok {
		candidates = lt.GetIngoingEdges(leftTok)
	}
	candidates = append(candidates, leftTok) // the token itself aligns with itself
	out := make([]types.Match, 0, len(candidates))
	for _, n := range candidates {
		out = append(out, types.Match{Node: n, Anno: lhs.Anno})
	}
	return annostorage.NewSliceIterator(out)
}

func (o *LeftAlignment) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	lt, ok1 := o.h.LeftToken(lhs.Node)
	rt, ok2 := o.h.LeftToken(rhs.Node)
	return ok1 && ok2 && lt == rt
}

func (o *LeftAlignment) IsReflexive() bool   { return false }
func (o *LeftAlignment) IsCommutative() bool { return true }

func (o *LeftAlignment) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *LeftAlignment) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *LeftAlignment) InverseOperator() (BinaryOperator, bool) { return o, true }

var _ BinaryOperator = (*LeftAlignment)(nil)

// RightAlignment is LeftAlignment's mirror over RightToken.
type RightAlignment struct {
	g *graph.Graph
	h *tokenhelper.Helper
}

func NewRightAlignment(g *graph.Graph) *RightAlignment {
	return &RightAlignment{g: g, h: tokenhelper.New(g)}
}

func (o *RightAlignment) Name() string { return "_r_" }

func (o *RightAlignment) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	rightTok, ok := o.h.RightToken(lhs.Node)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	rt, ok := o.g.RightTokenComponent()
	var candidates []types.NodeID
	if ok {
		candidates = rt.GetIngoingEdges(rightTok)
	}
	candidates = append(candidates, rightTok)
	out := make([]types.Match, 0, len(candidates))
	for _, n := range candidates {
		out = append(out, types.Match{Node: n, Anno: lhs.Anno})
	}
	return annostorage.NewSliceIterator(out)
}

func (o *RightAlignment) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	lt, ok1 := o.h.RightToken(lhs.Node)
	rt, ok2 := o.h.RightToken(rhs.Node)
	return ok1 && ok2 && lt == rt
}

func (o *RightAlignment) IsReflexive() bool   { return false }
func (o *RightAlignment) IsCommutative() bool { return true }

func (o *RightAlignment) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *RightAlignment) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *RightAlignment) InverseOperator() (BinaryOperator, bool) { return o, true }

var _ BinaryOperator = (*RightAlignment)(nil)
