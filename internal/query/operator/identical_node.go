package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// IdenticalNode accepts (lhs, rhs) iff lhs.node == rhs.node (design §4.F
// operator catalog). It is reflexive by construction: that is the whole
// point of the operator.
type IdenticalNode struct{}

func (IdenticalNode) Name() string { return "_ident_" }

func (IdenticalNode) RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match] {
	return annostorage.NewSliceIterator([]types.Match{lhs})
}

func (IdenticalNode) FilterMatch(lhs, rhs types.Match) bool {
	return lhs.Node == rhs.Node
}

func (IdenticalNode) IsReflexive() bool  { return true }
func (IdenticalNode) IsCommutative() bool { return true }

func (IdenticalNode) EstimationType() Estimation {
	return Estimation{Kind: EstimationMin, Value: 1}
}

func (IdenticalNode) EdgeAnnoSelectivity() (float64, bool) { return 0, false }

func (o IdenticalNode) InverseOperator() (BinaryOperator, bool) { return o, true }

var _ BinaryOperator = IdenticalNode{}
