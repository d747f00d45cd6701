package plan

import (
	"fmt"
	"sort"

	"corpusgraph/internal/config"
	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/query/exec"
	"corpusgraph/internal/query/operator"
)

// tree is one partial plan during construction: a physical operator plus
// the set of query node numbers it covers.
type tree struct {
	op    exec.PhysicalOperator
	nodes map[int]struct{}
}

func newLeafTree(op exec.PhysicalOperator, nodeNum int) *tree {
	return &tree{op: op, nodes: map[int]struct{}{nodeNum: {}}}
}

func (t *tree) covers(nodeNum int) bool {
	_, ok := t.nodes[nodeNum]
	return ok
}

func (t *tree) isBareLeaf(nodeNum int) bool {
	return len(t.nodes) == 1 && t.covers(nodeNum)
}

func (t *tree) nodePos(nodeNum int) int {
	return t.op.Desc().NodePos[nodeNum]
}

func (t *tree) estimatedOutput() int {
	if c := t.op.Desc().Cost; c != nil && c.Output > 0 {
		return c.Output
	}
	return 1
}

// builder holds the mutable state threaded through plan construction: the
// per-node leaf searches (kept around for IndexJoin's index side) and the
// evolving list of trees.
type builder struct {
	g      *graph.Graph
	cfg    config.PlannerConfig
	leaves map[int]*operator.NodeSearch
	trees  []*tree
}

func newBuilder(g *graph.Graph, conj Conjunction, cfg config.PlannerConfig) (*builder, error) {
	b := &builder{g: g, cfg: cfg, leaves: make(map[int]*operator.NodeSearch, len(conj.Nodes))}
	for _, n := range conj.Nodes {
		search, err := operator.NewNodeSearch(g, n.Spec)
		if err != nil {
			return nil, corpuserrors.Wrap(corpuserrors.AQLSemanticError, err, "compiling node #%d", n.NodeNum)
		}
		b.leaves[n.NodeNum] = search
		leaf := exec.NewLeaf(search, n.NodeNum, fmt.Sprintf("#%d", n.NodeNum))
		b.trees = append(b.trees, newLeafTree(leaf, n.NodeNum))
	}
	return b, nil
}

func (b *builder) treeFor(nodeNum int) (int, *tree) {
	for i, t := range b.trees {
		if t.covers(nodeNum) {
			return i, t
		}
	}
	return -1, nil
}

func (b *builder) replaceTrees(removeA, removeB int, merged *tree) {
	out := make([]*tree, 0, len(b.trees)-1)
	for i, t := range b.trees {
		if i == removeA || i == removeB {
			continue
		}
		out = append(out, t)
	}
	out = append(out, merged)
	b.trees = out
}

// placementKind ranks how cheaply an operator constraint can be applied
// given the current tree layout, used for the greedy tie-break rule
// (extension of an existing tree beats forming a brand-new pairing, which
// beats a nested loop between two already-grown trees).
type placementKind int

const (
	placeBinaryFilter placementKind = iota
	placeIndexJoinExtend
	placeIndexJoinFresh
	placeNestedLoop
)

type candidate struct {
	kind                   placementKind
	estimatedCost          int
	lhsTreeIdx, rhsTreeIdx int
}

func selectivityFactor(op operator.BinaryOperator, otherOutput int) float64 {
	est := op.EstimationType()
	switch est.Kind {
	case operator.EstimationSelectivity:
		if v, ok := op.EdgeAnnoSelectivity(); ok {
			return v
		}
		return est.Value
	case operator.EstimationMin:
		if otherOutput <= 0 {
			return 1
		}
		return 1 / float64(otherOutput)
	default: // EstimationMax
		return 1
	}
}

// classify determines how operator constraint oc would be applied against
// the current tree layout, and its estimated cost, without mutating state.
func (b *builder) classify(oc OperatorConstraint) candidate {
	lhsIdx, lhsTree := b.treeFor(oc.LHSNode)
	rhsIdx, rhsTree := b.treeFor(oc.RHSNode)

	if lhsIdx == rhsIdx {
		return candidate{kind: placeBinaryFilter, estimatedCost: lhsTree.estimatedOutput(), lhsTreeIdx: lhsIdx, rhsTreeIdx: rhsIdx}
	}

	lhsBare := lhsTree.isBareLeaf(oc.LHSNode)
	rhsBare := rhsTree.isBareLeaf(oc.RHSNode)

	if lhsBare != rhsBare {
		// Exactly one side is a still-unjoined leaf: index-join it into the
		// other (already-grown) tree.
		driving := lhsTree
		if lhsBare {
			driving = rhsTree
		}
		kind := placeIndexJoinExtend
		if len(driving.nodes) == 1 {
			kind = placeIndexJoinFresh
		}
		factor := selectivityFactor(oc.Op, driving.estimatedOutput())
		cost := int(float64(driving.estimatedOutput()) * factor)
		if cost < 1 {
			cost = 1
		}
		return candidate{kind: kind, estimatedCost: cost, lhsTreeIdx: lhsIdx, rhsTreeIdx: rhsIdx}
	}

	if lhsBare && rhsBare {
		// Both sides are fresh leaves: still an index join, just forming a
		// brand-new two-node tree instead of extending one.
		factor := selectivityFactor(oc.Op, lhsTree.estimatedOutput())
		cost := int(float64(lhsTree.estimatedOutput()) * factor)
		if cost < 1 {
			cost = 1
		}
		return candidate{kind: placeIndexJoinFresh, estimatedCost: cost, lhsTreeIdx: lhsIdx, rhsTreeIdx: rhsIdx}
	}

	// Both sides already belong to grown, non-bare trees: only a nested
	// loop can combine them.
	factor := selectivityFactor(oc.Op, rhsTree.estimatedOutput())
	cost := int(float64(lhsTree.estimatedOutput()) * float64(rhsTree.estimatedOutput()) * factor)
	if cost < 1 {
		cost = 1
	}
	return candidate{kind: placeNestedLoop, estimatedCost: cost, lhsTreeIdx: lhsIdx, rhsTreeIdx: rhsIdx}
}

// apply builds the physical operator for oc against the current tree
// layout and folds the result back into b.trees, merging or replacing
// trees as needed. Returns the estimated cost charged for this step.
func (b *builder) apply(oc OperatorConstraint) (int, error) {
	cand := b.classify(oc)
	lhsTreeIdx, rhsTreeIdx := cand.lhsTreeIdx, cand.rhsTreeIdx
	lhsTree, rhsTree := b.trees[lhsTreeIdx], b.trees[rhsTreeIdx]
	fragment := fmt.Sprintf("#%d <-> #%d", oc.LHSNode, oc.RHSNode)

	switch cand.kind {
	case placeBinaryFilter:
		filt := exec.NewBinaryFilter(lhsTree.op, lhsTree.nodePos(oc.LHSNode), lhsTree.nodePos(oc.RHSNode), oc.Op, fragment)
		merged := &tree{op: filt, nodes: lhsTree.nodes}
		b.trees[lhsTreeIdx] = merged
		return cand.estimatedCost, nil

	case placeIndexJoinExtend, placeIndexJoinFresh:
		rhsBare := rhsTree.isBareLeaf(oc.RHSNode)
		var driving *tree
		var drivingNode, bareNode int
		var drivingIsOpLHS bool
		if rhsBare {
			// rhs is the still-unjoined leaf: drive from lhs directly, no
			// inversion needed regardless of whether lhs is itself bare.
			driving, drivingNode, bareNode, drivingIsOpLHS = lhsTree, oc.LHSNode, oc.RHSNode, true
		} else {
			// only lhs is bare: drive from rhs, which plays op's rhs role,
			// so retrieval needs the inverse operator.
			driving, drivingNode, bareNode, drivingIsOpLHS = rhsTree, oc.RHSNode, oc.LHSNode, false
		}
		op := oc.Op
		if !drivingIsOpLHS {
			inv, ok := op.InverseOperator()
			if !ok {
				return b.applyAsNestedLoop(oc, lhsTree, rhsTree, lhsTreeIdx, rhsTreeIdx, fragment)
			}
			op = inv
		}
		search := b.leaves[bareNode]
		var join exec.PhysicalOperator
		if b.cfg.UseParallelJoins {
			join = exec.NewParallelIndexJoin(driving.op, driving.nodePos(drivingNode), op, search, bareNode, oc.GlobalReflexive, b.cfg.MaxWorkers, fragment)
		} else {
			join = exec.NewIndexJoin(driving.op, driving.nodePos(drivingNode), op, search, bareNode, oc.GlobalReflexive, fragment)
		}
		merged := &tree{op: join, nodes: unionNodes(driving.nodes, map[int]struct{}{bareNode: {}})}
		b.replaceTrees(lhsTreeIdx, rhsTreeIdx, merged)
		return cand.estimatedCost, nil

	default: // placeNestedLoop
		return b.applyAsNestedLoop(oc, lhsTree, rhsTree, lhsTreeIdx, rhsTreeIdx, fragment)
	}
}

func (b *builder) applyAsNestedLoop(oc OperatorConstraint, lhsTree, rhsTree *tree, lhsTreeIdx, rhsTreeIdx int, fragment string) (int, error) {
	nl := exec.NewNestedLoop(lhsTree.op, rhsTree.op, lhsTree.nodePos(oc.LHSNode), rhsTree.nodePos(oc.RHSNode), oc.Op, true, oc.GlobalReflexive, fragment)
	merged := &tree{op: nl, nodes: unionNodes(lhsTree.nodes, rhsTree.nodes)}
	cost := lhsTree.estimatedOutput() * rhsTree.estimatedOutput()
	b.replaceTrees(lhsTreeIdx, rhsTreeIdx, merged)
	return cost, nil
}

func unionNodes(a, b map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// cartesianJoinAll combines any trees left disconnected after every
// explicit operator constraint has been applied (design §4.H step 4: the
// Conjunction's constraints need not connect every node).
func (b *builder) cartesianJoinAll() exec.PhysicalOperator {
	sort.Slice(b.trees, func(i, j int) bool { return minNode(b.trees[i]) < minNode(b.trees[j]) })
	result := b.trees[0].op
	nodes := b.trees[0].nodes
	for _, t := range b.trees[1:] {
		nl := exec.NewNestedLoop(result, t.op, 0, 0, operator.Cartesian{}, true, false, "cartesian")
		result = nl
		nodes = unionNodes(nodes, t.nodes)
	}
	return result
}

func minNode(t *tree) int {
	min := -1
	for n := range t.nodes {
		if min == -1 || n < min {
			min = n
		}
	}
	return min
}
