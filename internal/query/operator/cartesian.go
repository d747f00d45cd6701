package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// Cartesian is a pseudo-operator the planner uses to join disconnected
// plan trees that share no explicit constraint (design §4.H step 4): every
// pair of tuples is accepted. It is never part of a query's operator
// catalog and never gets an IndexJoin placement (RetrieveMatches has
// nothing concrete to enumerate without a RHS search), so the planner only
// ever uses it as the join predicate of a NestedLoop.
type Cartesian struct{}

func (Cartesian) Name() string { return "cartesian" }

func (Cartesian) RetrieveMatches(types.Match) annostorage.Iterator[types.Match] {
	return annostorage.NewSliceIterator[types.Match](nil)
}

func (Cartesian) FilterMatch(types.Match, types.Match) bool { return true }
func (Cartesian) IsReflexive() bool                         { return true }
func (Cartesian) IsCommutative() bool                       { return true }
func (Cartesian) EstimationType() Estimation                { return Estimation{Kind: EstimationMax} }
func (Cartesian) EdgeAnnoSelectivity() (float64, bool)      { return 0, false }
func (Cartesian) InverseOperator() (BinaryOperator, bool)   { return Cartesian{}, true }

var _ BinaryOperator = Cartesian{}
