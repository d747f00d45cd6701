package exec

import (
	"context"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/types"
)

// IndexJoin is the preferred physical join (design §4.G): for each LHS
// tuple, it probes the operator's index (retrieve_matches) instead of
// scanning the whole RHS search.
type IndexJoin struct {
	lhs           PhysicalOperator
	lhsIdx        int
	op            operator.BinaryOperator
	rhsSearch     *operator.NodeSearch
	rhsNodeNum    int
	globalReflexive bool

	desc *Desc

	curLHS    types.MatchGroup
	candidates annostorage.Iterator[types.Match] // filled per-LHS
}

// NewIndexJoin builds an IndexJoin. lhsIdx selects which position of the
// LHS tuple binds op's first argument; rhsNodeNum is the query node number
// the RHS search represents, for descriptor bookkeeping.
func NewIndexJoin(lhs PhysicalOperator, lhsIdx int, op operator.BinaryOperator, rhsSearch *operator.NodeSearch, rhsNodeNum int, globalReflexive bool, queryFragment string) *IndexJoin {
	return &IndexJoin{
		lhs: lhs, lhsIdx: lhsIdx, op: op, rhsSearch: rhsSearch, rhsNodeNum: rhsNodeNum,
		globalReflexive: globalReflexive,
		desc: &Desc{
			ImplName:      "IndexJoin(" + op.Name() + ")",
			QueryFragment: queryFragment,
			NodePos:       MergeNodePos(lhs.Desc().NodePos, map[int]int{rhsNodeNum: 0}, lhs.Width()),
			Children:      []*Desc{lhs.Desc()},
		},
	}
}

func (j *IndexJoin) Next(ctx context.Context) (types.MatchGroup, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		if j.candidates == nil {
			lhsTuple, ok, err := j.lhs.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			j.curLHS = lhsTuple
			j.candidates = j.op.RetrieveMatches(lhsTuple[j.lhsIdx])
		}

		cand, more := j.candidates.Next()
		if !more {
			j.candidates = nil
			continue
		}
		if !j.rhsSearch.Filter(cand) {
			continue
		}
		if !j.op.IsReflexive() && cand.Node == j.curLHS[j.lhsIdx].Node && cand.Anno == j.curLHS[j.lhsIdx].Anno {
			continue
		}
		if j.globalReflexive && rejectGlobalReflexive(j.curLHS, cand) {
			continue
		}
		out := make(types.MatchGroup, 0, len(j.curLHS)+1)
		out = append(out, j.curLHS...)
		out = append(out, cand)
		return out, true, nil
	}
}

func (j *IndexJoin) Desc() *Desc { return j.desc }
func (j *IndexJoin) Width() int  { return j.lhs.Width() + 1 }

var _ PhysicalOperator = (*IndexJoin)(nil)
