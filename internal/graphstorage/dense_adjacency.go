package graphstorage

import (
	"sync"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

const noTarget = ^types.NodeID(0)

// DenseAdjacency specializes AdjacencyList for components where every
// source has at most one outgoing edge and source IDs are dense (design
// §4.C): a single slice indexed by NodeID replaces the hash map on the
// forward side. LeftToken/RightToken components are the canonical use.
type DenseAdjacency struct {
	mu        sync.RWMutex
	outgoing  []types.NodeID // outgoing[n] == noTarget means no edge
	ingoing   map[types.NodeID][]types.NodeID
	edgeAnnos *annostorage.Store[types.Edge]
	stats     types.GraphStatistic
}

// NewDenseAdjacency creates an empty dense-adjacency storage.
func NewDenseAdjacency() *DenseAdjacency {
	return &DenseAdjacency{
		ingoing:   make(map[types.NodeID][]types.NodeID),
		edgeAnnos: annostorage.NewStore[types.Edge](nil),
	}
}

func (d *DenseAdjacency) ensureSize(n types.NodeID) {
	for types.NodeID(len(d.outgoing)) <= n {
		d.outgoing = append(d.outgoing, noTarget)
	}
}

// AddEdge installs the single outgoing edge from e.Source. A second call
// for the same source overwrites it, matching the "at most one outgoing
// edge" precondition this representation is chosen under.
func (d *DenseAdjacency) AddEdge(e types.Edge) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureSize(e.Source)
	d.outgoing[e.Source] = e.Target
	d.ingoing[e.Target] = insertSorted(d.ingoing[e.Target], e.Source)
}

func (d *DenseAdjacency) GetOutgoingEdges(source types.NodeID) []types.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(source) >= len(d.outgoing) || d.outgoing[source] == noTarget {
		return nil
	}
	return []types.NodeID{d.outgoing[source]}
}

func (d *DenseAdjacency) GetIngoingEdges(target types.NodeID) []types.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]types.NodeID(nil), d.ingoing[target]...)
}

func (d *DenseAdjacency) SourceNodes() []types.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []types.NodeID
	for n, t := range d.outgoing {
		if t != noTarget {
			out = append(out, types.NodeID(n))
		}
	}
	return out
}

func (d *DenseAdjacency) GetStatistics() types.GraphStatistic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

func (d *DenseAdjacency) SetStatistics(s types.GraphStatistic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = s
}

func (d *DenseAdjacency) FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, d.GetOutgoingEdges))
}

func (d *DenseAdjacency) FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, d.GetIngoingEdges))
}

func (d *DenseAdjacency) Distance(s, t types.NodeID) (uint64, bool) {
	return distanceBFS(s, t, d.GetOutgoingEdges)
}

func (d *DenseAdjacency) IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool {
	dist, ok := d.Distance(s, t)
	if !ok {
		return false
	}
	return dist >= min && maxBound.Satisfies(dist)
}

func (d *DenseAdjacency) EdgeAnnos() *annostorage.Store[types.Edge] { return d.edgeAnnos }

func (d *DenseAdjacency) CopyFrom(other EdgeContainer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outgoing = nil
	d.ingoing = make(map[types.NodeID][]types.NodeID)
	for _, src := range other.SourceNodes() {
		for _, tgt := range other.GetOutgoingEdges(src) {
			d.ensureSize(src)
			d.outgoing[src] = tgt
			d.ingoing[tgt] = insertSorted(d.ingoing[tgt], src)
		}
	}
	d.stats = other.GetStatistics()
}

func (d *DenseAdjacency) InverseHasSameCost() bool { return false }

var _ GraphStorage = (*DenseAdjacency)(nil)

// fitsDenseAdjacency reports whether the observed statistic makes
// DenseAdjacency a valid representation: fan-out <= 1 everywhere. Only the
// fan-out is checked; how densely the node IDs are packed is not tested.
func fitsDenseAdjacency(stat types.GraphStatistic) bool {
	return stat.Valid && stat.MaxFanOut <= 1
}
