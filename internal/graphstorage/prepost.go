package graphstorage

import (
	"sync"

	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// PrePostOrder encodes a rooted-tree component as a pre/post integer pair
// per node plus a level (design §4.C), turning reachability into an
// interval-containment test. The reference engine picks among four
// serialization IDs distinguished by the bit width of the order and level
// fields (u16/u32 x u8/u32) purely to save memory on disk; Go's escape
// analysis and slice-of-struct layout make that micro-optimization moot
// here, so one implementation backs all four registry IDs (see
// registry.go) and the distinction survives only as the serialization tag.
type PrePostOrder struct {
	mu    sync.RWMutex
	pre   map[types.NodeID]uint32
	post  map[types.NodeID]uint32
	level map[types.NodeID]uint32
	order []types.NodeID // order[pre] = node, for inverse lookups

	children map[types.NodeID][]types.NodeID
	parent   map[types.NodeID]types.NodeID

	edgeAnnos *annostorage.Store[types.Edge]
	stats     types.GraphStatistic
	built     bool
}

// NewPrePostOrder creates an empty pre/post-order storage. Call Build after
// every edge has been added via AddEdge to compute the pre/post numbering.
func NewPrePostOrder() *PrePostOrder {
	return &PrePostOrder{
		pre:       make(map[types.NodeID]uint32),
		post:      make(map[types.NodeID]uint32),
		level:     make(map[types.NodeID]uint32),
		children:  make(map[types.NodeID][]types.NodeID),
		parent:    make(map[types.NodeID]types.NodeID),
		edgeAnnos: annostorage.NewStore[types.Edge](nil),
	}
}

// AddEdge records a parent -> child edge. Build() must run afterward.
func (p *PrePostOrder) AddEdge(e types.Edge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.children[e.Source] = append(p.children[e.Source], e.Target)
	p.parent[e.Target] = e.Source
	p.built = false
}

// Build computes pre/post/level numbers via iterative DFS from every root
// (a node with no parent that has at least one child).
func (p *PrePostOrder) Build() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pre = make(map[types.NodeID]uint32)
	p.post = make(map[types.NodeID]uint32)
	p.level = make(map[types.NodeID]uint32)
	p.order = nil

	var counter uint32
	var roots []types.NodeID
	for src := range p.children {
		if _, hasParent := p.parent[src]; !hasParent {
			roots = append(roots, src)
		}
	}

	type frame struct {
		node       types.NodeID
		lvl        uint32
		childIdx   int
	}
	visit := func(root types.NodeID) {
		stack := []*frame{{node: root, lvl: 0}}
		p.pre[root] = counter
		p.level[root] = 0
		p.order = append(p.order, root)
		counter++
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			kids := p.children[top.node]
			if top.childIdx < len(kids) {
				child := kids[top.childIdx]
				top.childIdx++
				p.pre[child] = counter
				p.level[child] = top.lvl + 1
				p.order = append(p.order, child)
				counter++
				stack = append(stack, &frame{node: child, lvl: top.lvl + 1})
			} else {
				p.post[top.node] = counter
				counter++
				stack = stack[:len(stack)-1]
			}
		}
	}
	for _, r := range roots {
		visit(r)
	}
	p.built = true
}

func (p *PrePostOrder) GetOutgoingEdges(source types.NodeID) []types.NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.NodeID(nil), p.children[source]...)
}

func (p *PrePostOrder) GetIngoingEdges(target types.NodeID) []types.NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if parent, ok := p.parent[target]; ok {
		return []types.NodeID{parent}
	}
	return nil
}

func (p *PrePostOrder) SourceNodes() []types.NodeID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []types.NodeID
	for n, kids := range p.children {
		if len(kids) > 0 {
			out = append(out, n)
		}
	}
	return out
}

func (p *PrePostOrder) GetStatistics() types.GraphStatistic {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *PrePostOrder) SetStatistics(s types.GraphStatistic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = s
}

// isAncestor reports whether a is an ancestor of (or equal to) b using the
// pre/post interval containment test.
func (p *PrePostOrder) isAncestor(a, b types.NodeID) bool {
	preA, ok := p.pre[a]
	if !ok {
		return false
	}
	postA, ok := p.post[a]
	if !ok {
		return false
	}
	preB, ok := p.pre[b]
	if !ok {
		return false
	}
	return preA <= preB && preB <= postA
}

func (p *PrePostOrder) FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, p.GetOutgoingEdges))
}

func (p *PrePostOrder) FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID] {
	return annostorage.NewSliceIterator(cycleSafeDFS(source, min, maxBound, p.GetIngoingEdges))
}

// Distance falls back to BFS; the pre/post interval test decides
// reachability cheaply but does not by itself yield path length.
func (p *PrePostOrder) Distance(s, t types.NodeID) (uint64, bool) {
	p.mu.RLock()
	reachable := p.isAncestor(s, t) && s != t
	p.mu.RUnlock()
	if !reachable {
		return 0, false
	}
	return distanceBFS(s, t, p.GetOutgoingEdges)
}

func (p *PrePostOrder) IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool {
	p.mu.RLock()
	ancestor := p.isAncestor(s, t) && s != t
	levelS, sOK := p.level[s]
	levelT, tOK := p.level[t]
	p.mu.RUnlock()
	if !ancestor || !sOK || !tOK {
		return false
	}
	depth := uint64(levelT - levelS)
	return depth >= min && maxBound.Satisfies(depth)
}

func (p *PrePostOrder) EdgeAnnos() *annostorage.Store[types.Edge] { return p.edgeAnnos }

func (p *PrePostOrder) CopyFrom(other EdgeContainer) {
	p.mu.Lock()
	p.children = make(map[types.NodeID][]types.NodeID)
	p.parent = make(map[types.NodeID]types.NodeID)
	p.mu.Unlock()
	for _, src := range other.SourceNodes() {
		for _, tgt := range other.GetOutgoingEdges(src) {
			p.AddEdge(types.Edge{Source: src, Target: tgt})
		}
	}
	p.Build()
	p.mu.Lock()
	p.stats = other.GetStatistics()
	p.mu.Unlock()
}

func (p *PrePostOrder) InverseHasSameCost() bool { return false }

var _ GraphStorage = (*PrePostOrder)(nil)

// fitsPrePostOrder reports whether a component's statistics describe a
// rooted tree, the precondition for this representation.
func fitsPrePostOrder(stat types.GraphStatistic) bool {
	return stat.Valid && stat.RootedTree && !stat.Cyclic
}
