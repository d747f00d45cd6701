package exec

import (
	"context"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/types"
)

// Leaf adapts a compiled operator.NodeSearch into a PhysicalOperator
// producing width-1 MatchGroups.
type Leaf struct {
	search *operator.NodeSearch
	nodeNum int
	it      annostorage.Iterator[types.MatchGroup]
	desc    *Desc
}

// NewLeaf wraps search as a plan-tree leaf bound to query node nodeNum.
func NewLeaf(search *operator.NodeSearch, nodeNum int, queryFragment string) *Leaf {
	return &Leaf{
		search:  search,
		nodeNum: nodeNum,
		it:      search.Execute(),
		desc: &Desc{
			ImplName:      "NodeSearch",
			QueryFragment: queryFragment,
			NodePos:       map[int]int{nodeNum: 0},
			Cost:          &CostEstimate{Output: search.EstimatedCardinality()},
		},
	}
}

func (l *Leaf) Next(ctx context.Context) (types.MatchGroup, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}
	m, ok := l.it.Next()
	if !ok {
		return nil, false, nil
	}
	return m, true, nil
}

func (l *Leaf) Desc() *Desc { return l.desc }
func (l *Leaf) Width() int  { return 1 }

var _ PhysicalOperator = (*Leaf)(nil)
