package plan

import (
	"corpusgraph/internal/config"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/query/exec"
)

// Build compiles a Conjunction into a single physical operator tree
// (design §4.H): node searches become Leaf operators, then binary
// constraints fold them together bottom-up, preferring IndexJoin where an
// endpoint is still an unjoined node search, falling back to NestedLoop,
// and collapsing same-tree constraints into BinaryFilter. When
// cfg.UseParallelJoins is set, every IndexJoin placement is built as a
// ParallelIndexJoin instead, sharding retrieval across cfg.MaxWorkers
// workers.
//
// When the conjunction has few enough operators (PlannerConfig's
// AllPermutationsThreshold), every application order is tried and the
// cheapest total estimated cost wins; above the threshold a single greedy
// pass picks the locally cheapest next operator at each step.
func Build(g *graph.Graph, conj Conjunction, cfg config.PlannerConfig) (exec.PhysicalOperator, error) {
	if len(conj.Operators) <= cfg.AllPermutationsThreshold && len(conj.Operators) > 1 {
		return buildExhaustive(g, conj, cfg)
	}
	return buildGreedy(g, conj, cfg)
}

func buildGreedy(g *graph.Graph, conj Conjunction, cfg config.PlannerConfig) (exec.PhysicalOperator, error) {
	b, err := newBuilder(g, conj, cfg)
	if err != nil {
		return nil, err
	}
	remaining := make([]int, len(conj.Operators))
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		bestPos, bestIdx := -1, -1
		var best candidate
		for pos, idx := range remaining {
			cand := b.classify(conj.Operators[idx])
			if bestIdx == -1 || betterCandidate(cand, best, conj.Operators[idx], conj.Operators[bestIdx]) {
				best, bestIdx, bestPos = cand, idx, pos
			}
		}
		if _, err := b.apply(conj.Operators[bestIdx]); err != nil {
			return nil, err
		}
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	result := b.cartesianJoinAll()
	logging.PlannerDebug("greedy plan built: %d operators, final width %d", len(conj.Operators), result.Width())
	return result, nil
}

// betterCandidate picks the operator with the minimum estimated processed
// cost (design §4.H step 2); only on a genuine cost tie does it fall back
// to the placement-kind rule (extension of an existing tree beats forming
// a fresh pairing, which beats a nested loop), then to the lower of the
// two query node numbers involved.
func betterCandidate(a, b candidate, ocA, ocB OperatorConstraint) bool {
	if a.estimatedCost != b.estimatedCost {
		return a.estimatedCost < b.estimatedCost
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	return minOf(ocA.LHSNode, ocA.RHSNode) < minOf(ocB.LHSNode, ocB.RHSNode)
}

func minOf(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// buildExhaustive tries every application order of conj.Operators and
// keeps the cheapest total estimated cost, for conjunctions small enough
// that the factorial search is affordable (design §4.H: "all_permutations_
// threshold").
func buildExhaustive(g *graph.Graph, conj Conjunction, cfg config.PlannerConfig) (exec.PhysicalOperator, error) {
	order := make([]int, len(conj.Operators))
	for i := range order {
		order[i] = i
	}

	var bestPlan exec.PhysicalOperator
	bestCost := -1

	err := permute(order, func(perm []int) error {
		b, err := newBuilder(g, conj, cfg)
		if err != nil {
			return err
		}
		total := 0
		for _, idx := range perm {
			cost, err := b.apply(conj.Operators[idx])
			if err != nil {
				return err
			}
			total += cost
		}
		if bestCost == -1 || total < bestCost {
			bestCost = total
			bestPlan = b.cartesianJoinAll()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.PlannerDebug("exhaustive plan built: %d operators tried, best cost %d", len(conj.Operators), bestCost)
	return bestPlan, nil
}

// permute calls visit once per permutation of items, in the order Heap's
// algorithm generates them (not lexicographic).
func permute(items []int, visit func([]int) error) error {
	n := len(items)
	if n == 0 {
		return visit(items)
	}
	buf := make([]int, n)
	copy(buf, items)
	c := make([]int, n)

	if err := visit(buf); err != nil {
		return err
	}
	i := 0
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				buf[0], buf[i] = buf[i], buf[0]
			} else {
				buf[c[i]], buf[i] = buf[i], buf[c[i]]
			}
			if err := visit(buf); err != nil {
				return err
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return nil
}
