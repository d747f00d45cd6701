package graphstorage

import (
	"sort"
	"sync"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// AdjacencyList is the general-purpose graph storage: a hash map from
// NodeID to a sorted slice of targets, with a symmetric inverse index.
// Every other representation in this package is a specialization chosen
// by the registry (§4.B) when a component's statistics permit a cheaper
// encoding; AdjacencyList is always a correct fallback.
type AdjacencyList struct {
	mu       sync.RWMutex
	outgoing map[types.NodeID][]types.NodeID
	ingoing  map[types.NodeID][]types.NodeID
	edgeAnnos *annostorage.Store[types.Edge]
	stats    types.GraphStatistic
}

// NewAdjacencyList creates an empty adjacency-list storage.
func NewAdjacencyList() *AdjacencyList {
	return &AdjacencyList{
		outgoing:  make(map[types.NodeID][]types.NodeID),
		ingoing:   make(map[types.NodeID][]types.NodeID),
		edgeAnnos: annostorage.NewStore[types.Edge](nil),
	}
}

// AddEdge inserts an edge, maintaining both the forward and inverse index
// (the invariant required by §3: "get_ingoing_edges(t) contains s iff
// get_outgoing_edges(s) contains t").
func (a *AdjacencyList) AddEdge(e types.Edge) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outgoing[e.Source] = insertSorted(a.outgoing[e.Source], e.Target)
	a.ingoing[e.Target] = insertSorted(a.ingoing[e.Target], e.Source)
}

func insertSorted(xs []types.NodeID, v types.NodeID) []types.NodeID {
	idx := sort.Search(len(xs), func(i int) bool { return xs[i] >= v })
	if idx < len(xs) && xs[idx] == v {
		return xs
	}
	xs = append(xs, 0)
	copy(xs[idx+1:], xs[idx:])
	xs[idx] = v
	return xs
}

func (a *AdjacencyList) GetOutgoingEdges(source types.NodeID) []types.NodeID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]types.NodeID(nil), a.outgoing[source]...)
}

func (a *AdjacencyList) GetIngoingEdges(target types.NodeID) []types.NodeID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]types.NodeID(nil), a.ingoing[target]...)
}

func (a *AdjacencyList) SourceNodes() []types.NodeID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]types.NodeID, 0, len(a.outgoing))
	for n, targets := range a.outgoing {
		if len(targets) > 0 {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *AdjacencyList) GetStatistics() types.GraphStatistic {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// SetStatistics installs precomputed statistics, used by the builder after
// CalculateStatistics or by CopyFrom.
func (a *AdjacencyList) SetStatistics(s types.GraphStatistic) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = s
}

func (a *AdjacencyList) FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, a.GetOutgoingEdges))
}

func (a *AdjacencyList) FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, a.GetIngoingEdges))
}

func (a *AdjacencyList) Distance(s, t types.NodeID) (uint64, bool) {
	return distanceBFS(s, t, a.GetOutgoingEdges)
}

func (a *AdjacencyList) IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool {
	d, ok := a.Distance(s, t)
	if !ok {
		return false
	}
	return d >= min && maxBound.Satisfies(d)
}

func (a *AdjacencyList) EdgeAnnos() *annostorage.Store[types.Edge] {
	return a.edgeAnnos
}

func (a *AdjacencyList) CopyFrom(other EdgeContainer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outgoing = make(map[types.NodeID][]types.NodeID)
	a.ingoing = make(map[types.NodeID][]types.NodeID)
	for _, src := range other.SourceNodes() {
		for _, tgt := range other.GetOutgoingEdges(src) {
			a.outgoing[src] = insertSorted(a.outgoing[src], tgt)
			a.ingoing[tgt] = insertSorted(a.ingoing[tgt], src)
		}
	}
	a.stats = other.GetStatistics()
}

func (a *AdjacencyList) InverseHasSameCost() bool { return true }

var _ GraphStorage = (*AdjacencyList)(nil)
