package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// IdenticalCoverage accepts (lhs, rhs) iff left_tok(lhs) == left_tok(rhs)
// and right_tok(lhs) == right_tok(rhs) (design §4.F): lhs and rhs cover
// exactly the same token range.
type IdenticalCoverage struct {
	g *graph.Graph
	h *tokenhelper.Helper
}

func NewIdenticalCoverage(g *graph.Graph) *IdenticalCoverage {
	return &IdenticalCoverage{g: g, h: tokenhelper.New(g)}
}

func (o *IdenticalCoverage) Name() string { return "_=_" }

// RetrieveMatches enumerates, from lhs's left token, every node
// left-aligned to it (via ingoing LeftToken edges) and filters by matching
// right token, per the design's retrieval strategy for this operator.
func (o *IdenticalCoverage) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	leftTok, ok := o.h.LeftToken(lhs.Node)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	rightTok, ok := o.h.RightToken(lhs.Node)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}

	var candidates []types.NodeID
	if lt, ok := o.g.LeftTokenComponent(); ok {
		candidates = lt.GetIngoingEdges(leftTok)
	}
	candidates = append(candidates, leftTok)

	var out []types.Match
	for _, n := range candidates {
		rt, ok := o.h.RightToken(n)
		if ok && rt == rightTok {
			out = append(out, types.Match{Node: n, Anno: lhs.Anno})
		}
	}
	return annostorage.NewSliceIterator(out)
}

func (o *IdenticalCoverage) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	ll, ok1 := o.h.LeftToken(lhs.Node)
	lr, ok2 := o.h.LeftToken(rhs.Node)
	rl, ok3 := o.h.RightToken(lhs.Node)
	rr, ok4 := o.h.RightToken(rhs.Node)
	return ok1 && ok2 && ok3 && ok4 && ll == lr && rl == rr
}

func (o *IdenticalCoverage) IsReflexive() bool   { return false }
func (o *IdenticalCoverage) IsCommutative() bool { return true }

func (o *IdenticalCoverage) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *IdenticalCoverage) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *IdenticalCoverage) InverseOperator() (BinaryOperator, bool) { return o, true }

var _ BinaryOperator = (*IdenticalCoverage)(nil)
