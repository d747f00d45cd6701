package exec

import (
	"context"

	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/types"
)

// NestedLoop is used when the RHS is not an indexable node search (design
// §4.G). The inner side is materialized on first pass into an in-memory
// cache; subsequent outer iterations replay the cache instead of
// re-executing the inner plan.
type NestedLoop struct {
	outer, inner PhysicalOperator
	outerIdx, innerIdx int
	op              operator.BinaryOperator
	outerOnLeft     bool // whether "outer" corresponds to the lhs operand of op
	globalReflexive bool

	desc *Desc

	innerCache []types.MatchGroup
	cached     bool

	curOuter types.MatchGroup
	innerPos int
	haveOuter bool
}

// NewNestedLoop builds a NestedLoop. outerIdx/innerIdx select which
// position of each side's tuple binds op's operands; outerOnLeft records
// which side plays op's lhs role so FilterMatch is called in the right
// orientation.
func NewNestedLoop(outer, inner PhysicalOperator, outerIdx, innerIdx int, op operator.BinaryOperator, outerOnLeft, globalReflexive bool, queryFragment string) *NestedLoop {
	return &NestedLoop{
		outer: outer, inner: inner, outerIdx: outerIdx, innerIdx: innerIdx,
		op: op, outerOnLeft: outerOnLeft, globalReflexive: globalReflexive,
		desc: &Desc{
			ImplName:      "NestedLoop(" + op.Name() + ")",
			QueryFragment: queryFragment,
			NodePos:       MergeNodePos(outer.Desc().NodePos, inner.Desc().NodePos, outer.Width()),
			Children:      []*Desc{outer.Desc(), inner.Desc()},
		},
	}
}

func (n *NestedLoop) fillCache(ctx context.Context) error {
	for {
		tuple, ok, err := n.inner.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		n.innerCache = append(n.innerCache, tuple)
	}
	n.cached = true
	return nil
}

func (n *NestedLoop) Next(ctx context.Context) (types.MatchGroup, bool, error) {
	if !n.cached {
		if err := n.fillCache(ctx); err != nil {
			return nil, false, err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		if !n.haveOuter {
			tuple, ok, err := n.outer.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			n.curOuter = tuple
			n.haveOuter = true
			n.innerPos = 0
		}

		if n.innerPos >= len(n.innerCache) {
			n.haveOuter = false
			continue
		}
		innerTuple := n.innerCache[n.innerPos]
		n.innerPos++

		var lhs, rhs types.Match
		if n.outerOnLeft {
			lhs, rhs = n.curOuter[n.outerIdx], innerTuple[n.innerIdx]
		} else {
			lhs, rhs = innerTuple[n.innerIdx], n.curOuter[n.outerIdx]
		}
		if !n.op.FilterMatch(lhs, rhs) {
			continue
		}
		combined := make(types.MatchGroup, 0, len(n.curOuter)+len(innerTuple))
		combined = append(combined, n.curOuter...)
		combined = append(combined, innerTuple...)
		if n.globalReflexive && hasDuplicateNodes(combined) {
			continue
		}
		return combined, true, nil
	}
}

func hasDuplicateNodes(tuple types.MatchGroup) bool {
	seen := make(map[types.NodeID]struct{}, len(tuple))
	for _, m := range tuple {
		if _, dup := seen[m.Node]; dup {
			return true
		}
		seen[m.Node] = struct{}{}
	}
	return false
}

func (n *NestedLoop) Desc() *Desc { return n.desc }
func (n *NestedLoop) Width() int  { return n.outer.Width() + n.inner.Width() }

var _ PhysicalOperator = (*NestedLoop)(nil)
