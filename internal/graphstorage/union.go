package graphstorage

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// Union presents the union of several EdgeContainers as one (design §4.C),
// used by token helpers when multiple Coverage components exist. It is
// read-only: members are supplied at construction and never mutated
// through the union itself.
type Union struct {
	members   []EdgeContainer
	edgeAnnos *annostorage.Store[types.Edge]
}

// NewUnion builds a Union over the given containers.
func NewUnion(members ...EdgeContainer) *Union {
	return &Union{members: members, edgeAnnos: annostorage.NewStore[types.Edge](nil)}
}

func (u *Union) GetOutgoingEdges(source types.NodeID) []types.NodeID {
	seen := make(map[types.NodeID]struct{})
	var out []types.NodeID
	for _, m := range u.members {
		for _, t := range m.GetOutgoingEdges(source) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func (u *Union) GetIngoingEdges(target types.NodeID) []types.NodeID {
	seen := make(map[types.NodeID]struct{})
	var out []types.NodeID
	for _, m := range u.members {
		for _, s := range m.GetIngoingEdges(target) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func (u *Union) SourceNodes() []types.NodeID {
	seen := make(map[types.NodeID]struct{})
	var out []types.NodeID
	for _, m := range u.members {
		for _, n := range m.SourceNodes() {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func (u *Union) GetStatistics() types.GraphStatistic {
	// Statistics are not meaningfully additive across heterogeneous
	// members; the union is used for reachability only, so the planner
	// should cost it via its members rather than trust this value.
	return types.GraphStatistic{Valid: false}
}

func (u *Union) FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, u.GetOutgoingEdges))
}

func (u *Union) FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, u.GetIngoingEdges))
}

func (u *Union) Distance(s, t types.NodeID) (uint64, bool) {
	return distanceBFS(s, t, u.GetOutgoingEdges)
}

func (u *Union) IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool {
	d, ok := u.Distance(s, t)
	if !ok {
		return false
	}
	return d >= min && maxBound.Satisfies(d)
}

func (u *Union) EdgeAnnos() *annostorage.Store[types.Edge] { return u.edgeAnnos }

// CopyFrom is not meaningful for a Union, whose members are the source of
// truth; it is a no-op so Union can still satisfy GraphStorage for callers
// that treat all representations uniformly.
func (u *Union) CopyFrom(other EdgeContainer) {}

func (u *Union) InverseHasSameCost() bool { return true }

var _ GraphStorage = (*Union)(nil)
