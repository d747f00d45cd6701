package exec

import (
	"context"

	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/types"
)

// BinaryFilter applies op.FilterMatch to an existing tuple with no
// cardinality change beyond filtering (design §4.G), used when both
// endpoints of an operator are already present in the same plan tree.
type BinaryFilter struct {
	child        PhysicalOperator
	lhsIdx, rhsIdx int
	op           operator.BinaryOperator
	desc         *Desc
}

// NewBinaryFilter builds a BinaryFilter over child's tuples.
func NewBinaryFilter(child PhysicalOperator, lhsIdx, rhsIdx int, op operator.BinaryOperator, queryFragment string) *BinaryFilter {
	return &BinaryFilter{
		child: child, lhsIdx: lhsIdx, rhsIdx: rhsIdx, op: op,
		desc: &Desc{
			ImplName:      "BinaryFilter(" + op.Name() + ")",
			QueryFragment: queryFragment,
			NodePos:       child.Desc().NodePos,
			Children:      []*Desc{child.Desc()},
		},
	}
}

func (f *BinaryFilter) Next(ctx context.Context) (types.MatchGroup, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}
		tuple, ok, err := f.child.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		if f.op.FilterMatch(tuple[f.lhsIdx], tuple[f.rhsIdx]) {
			return tuple, true, nil
		}
	}
}

func (f *BinaryFilter) Desc() *Desc { return f.desc }
func (f *BinaryFilter) Width() int  { return f.child.Width() }

var _ PhysicalOperator = (*BinaryFilter)(nil)
