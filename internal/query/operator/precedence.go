package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// Precedence accepts (lhs, rhs) iff there is an Ordering-component path
// from right_tok(lhs) to left_tok(rhs) whose length falls in [Min, Max]
// (design §4.F). Retrieval follows Ordering's find_connected from
// right_tok(lhs), then expands each reached token through inverse
// Coverage to the nodes it is the left edge of.
type Precedence struct {
	g        *graph.Graph
	h        *tokenhelper.Helper
	layer    string
	min, max uint64
	hasMax   bool
}

// NewPrecedence builds a Precedence operator over [min, max] token
// distance (hasMax false means unbounded).
func NewPrecedence(g *graph.Graph, layer string, min, max uint64, hasMax bool) *Precedence {
	return &Precedence{g: g, h: tokenhelper.New(g), layer: layer, min: min, max: max, hasMax: hasMax}
}

func (o *Precedence) Name() string { return "." }

func (o *Precedence) bound() types.Bound {
	if o.hasMax {
		return types.Included(o.max)
	}
	return types.Unbounded()
}

func (o *Precedence) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	rightTok, ok := o.h.RightToken(lhs.Node)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	ordering, ok := o.g.OrderingComponent(o.layer)
	if !ok {
		return annostorage.NewSliceIterator[types.Match](nil)
	}
	min := o.min
	if min == 0 {
		min = 1
	}

	seen := make(map[types.NodeID]struct{})
	var out []types.Match
	it := ordering.FindConnected(rightTok, min, o.bound())
	for {
		tok, more := it.Next()
		if !more {
			break
		}
		for _, nonToken := range o.h.CoveringNodes(tok) {
			if nonToken == tok {
				continue // the token itself is already emitted below
			}
			if left, ok := o.h.LeftToken(nonToken); !ok || left != tok {
				continue
			}
			if _, dup := seen[nonToken]; dup {
				continue
			}
			seen[nonToken] = struct{}{}
			out = append(out, types.Match{Node: nonToken, Anno: lhs.Anno})
		}
		if _, dup := seen[tok]; !dup {
			seen[tok] = struct{}{}
			out = append(out, types.Match{Node: tok, Anno: lhs.Anno})
		}
	}
	return annostorage.NewSliceIterator(out)
}

func (o *Precedence) FilterMatch(lhs, rhs types.Match) bool {
	if reflexiveGuard(o, lhs, rhs) {
		return false
	}
	rightTok, ok := o.h.RightToken(lhs.Node)
	if !ok {
		return false
	}
	leftTok, ok := o.h.LeftToken(rhs.Node)
	if !ok {
		return false
	}
	ordering, ok := o.g.OrderingComponent(o.layer)
	if !ok {
		return false
	}
	min := o.min
	if min == 0 {
		min = 1
	}
	return ordering.IsConnected(rightTok, leftTok, min, o.bound())
}

func (o *Precedence) IsReflexive() bool   { return false }
func (o *Precedence) IsCommutative() bool { return false }

func (o *Precedence) EstimationType() Estimation {
	return SelectivityOrDefault(false, 0)
}

func (o *Precedence) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o *Precedence) InverseOperator() (BinaryOperator, bool) { return nil, false }

var _ BinaryOperator = (*Precedence)(nil)
