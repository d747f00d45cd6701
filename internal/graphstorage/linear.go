package graphstorage

import (
	"sync"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// Linear specializes storage for components that form disjoint chains
// (design §4.C), the representation chosen for Ordering components: each
// node knows its chain ID and position, so IsConnected/Distance become an
// O(1) position-difference test instead of a traversal.
type Linear struct {
	mu        sync.RWMutex
	chainOf   map[types.NodeID]int
	posOf     map[types.NodeID]int
	chains    [][]types.NodeID // chains[chainID][pos] = node
	edgeAnnos *annostorage.Store[types.Edge]
	stats     types.GraphStatistic
}

// NewLinear creates an empty linear-chain storage.
func NewLinear() *Linear {
	return &Linear{
		chainOf:   make(map[types.NodeID]int),
		posOf:     make(map[types.NodeID]int),
		edgeAnnos: annostorage.NewStore[types.Edge](nil),
	}
}

// AddEdge appends target to source's chain. Edges must be added in chain
// order (source already placed, target new) for the position bookkeeping
// to stay correct; this matches how an importer walks an Ordering
// component.
func (l *Linear) AddEdge(e types.Edge) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chainID, ok := l.chainOf[e.Source]
	if !ok {
		chainID = len(l.chains)
		l.chains = append(l.chains, []types.NodeID{e.Source})
		l.chainOf[e.Source] = chainID
		l.posOf[e.Source] = 0
	}
	pos := len(l.chains[chainID])
	l.chains[chainID] = append(l.chains[chainID], e.Target)
	l.chainOf[e.Target] = chainID
	l.posOf[e.Target] = pos
}

func (l *Linear) GetOutgoingEdges(source types.NodeID) []types.NodeID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	chainID, ok := l.chainOf[source]
	if !ok {
		return nil
	}
	pos := l.posOf[source]
	if pos+1 >= len(l.chains[chainID]) {
		return nil
	}
	return []types.NodeID{l.chains[chainID][pos+1]}
}

func (l *Linear) GetIngoingEdges(target types.NodeID) []types.NodeID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	chainID, ok := l.chainOf[target]
	if !ok {
		return nil
	}
	pos := l.posOf[target]
	if pos == 0 {
		return nil
	}
	return []types.NodeID{l.chains[chainID][pos-1]}
}

func (l *Linear) SourceNodes() []types.NodeID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []types.NodeID
	for _, chain := range l.chains {
		out = append(out, chain[:len(chain)-1]...)
	}
	return out
}

func (l *Linear) GetStatistics() types.GraphStatistic {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

func (l *Linear) SetStatistics(s types.GraphStatistic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats = s
}

// Distance is O(1): the position difference within the shared chain.
func (l *Linear) Distance(s, t types.NodeID) (uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cs, ok := l.chainOf[s]
	if !ok {
		return 0, false
	}
	ct, ok := l.chainOf[t]
	if !ok || cs != ct {
		return 0, false
	}
	ps, pt := l.posOf[s], l.posOf[t]
	if pt <= ps {
		return 0, false
	}
	return uint64(pt - ps), true
}

func (l *Linear) IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool {
	d, ok := l.Distance(s, t)
	if !ok {
		return false
	}
	return d >= min && maxBound.Satisfies(d)
}

func (l *Linear) FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	chainID, ok := l.chainOf[source]
	if !ok {
		return annostorage.NewSliceIterator[types.NodeID](nil)
	}
	pos := l.posOf[source]
	chain := l.chains[chainID]
	maxDepth, hasMax := maxBound.Max()
	var out []types.NodeID
	for d := uint64(1); pos+int(d) < len(chain); d++ {
		if hasMax && d > maxDepth {
			break
		}
		if d >= min {
			out = append(out, chain[pos+int(d)])
		}
	}
	return annostorage.NewSliceIterator(out)
}

func (l *Linear) FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	chainID, ok := l.chainOf[source]
	if !ok {
		return annostorage.NewSliceIterator[types.NodeID](nil)
	}
	pos := l.posOf[source]
	chain := l.chains[chainID]
	maxDepth, hasMax := maxBound.Max()
	var out []types.NodeID
	for d := uint64(1); pos-int(d) >= 0; d++ {
		if hasMax && d > maxDepth {
			break
		}
		if d >= min {
			out = append(out, chain[pos-int(d)])
		}
	}
	return annostorage.NewSliceIterator(out)
}

func (l *Linear) EdgeAnnos() *annostorage.Store[types.Edge] { return l.edgeAnnos }

func (l *Linear) CopyFrom(other EdgeContainer) {
	l.mu.Lock()
	l.chainOf = make(map[types.NodeID]int)
	l.posOf = make(map[types.NodeID]int)
	l.chains = nil
	l.mu.Unlock()
	for _, src := range other.SourceNodes() {
		for _, tgt := range other.GetOutgoingEdges(src) {
			l.AddEdge(types.Edge{Source: src, Target: tgt})
		}
	}
	l.mu.Lock()
	l.stats = other.GetStatistics()
	l.mu.Unlock()
}

func (l *Linear) InverseHasSameCost() bool { return true }

var _ GraphStorage = (*Linear)(nil)

// fitsLinear reports whether a component forms disjoint chains: every node
// has at most one outgoing and at most one ingoing edge.
func fitsLinear(stat types.GraphStatistic) bool {
	return stat.Valid && stat.MaxFanOut <= 1 && stat.InverseFanOut99Percentile <= 1
}
