// Package executor drives one physical plan per Conjunction in a
// Disjunction, concatenates their outputs, deduplicates across branches,
// and reorders each result to canonical query-node order (design §4.I).
package executor

import (
	"context"

	"corpusgraph/internal/config"
	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/types"
)

// Execute runs every Conjunction in disj against g, concatenates their
// results, deduplicates identical tuples across branches (bypassed when
// disj has exactly one Conjunction, since a single plan can never produce
// the same tuple twice under the planner's join semantics), reorders each
// tuple to canonical query-node order, and finally sorts by text position
// per cfg.Order.
func Execute(ctx context.Context, g *graph.Graph, disj plan.Disjunction, cfg *config.Config) ([]types.MatchGroup, error) {
	if len(disj) == 0 {
		return nil, corpuserrors.New(corpuserrors.AQLSemanticError, "empty disjunction")
	}

	proxyMode := len(disj) == 1
	var seen map[string]struct{}
	if !proxyMode {
		seen = make(map[string]struct{})
	}

	var out []types.MatchGroup
	for branchIdx, conj := range disj {
		physical, err := plan.Build(g, conj, cfg.Planner)
		if err != nil {
			return nil, corpuserrors.Wrap(corpuserrors.AQLSemanticError, err, "planning disjunction branch %d", branchIdx)
		}
		nodePos := physical.Desc().NodePos

		for {
			select {
			case <-ctx.Done():
				return nil, corpuserrors.Wrap(corpuserrors.Cancelled, ctx.Err(), "query cancelled")
			default:
			}

			tuple, ok, err := physical.Next(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}

			canonical := reorder(tuple, nodePos)

			if !proxyMode {
				key := fingerprint(canonical)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			out = append(out, canonical)
		}
	}

	SortByTextPos(g, out, cfg.Order)
	logging.ExecutorDebug("executed disjunction: %d branches, %d results after dedup", len(disj), len(out))
	return out, nil
}

// reorder rebuilds tuple in canonical query-node order 0..n-1 using the
// plan's own node-position bookkeeping, undoing whatever order the planner
// chose for join evaluation.
func reorder(tuple types.MatchGroup, nodePos map[int]int) types.MatchGroup {
	out := make(types.MatchGroup, len(nodePos))
	for queryNode, pos := range nodePos {
		if queryNode < len(out) {
			out[queryNode] = tuple[pos]
		}
	}
	return out
}

// fingerprint builds the dedup key for a canonical tuple: the concatenated
// (Node, Anno) pairs of every position, in order.
func fingerprint(tuple types.MatchGroup) string {
	buf := make([]byte, 0, len(tuple)*12)
	for _, m := range tuple {
		buf = appendUint64(buf, uint64(m.Node))
		buf = append(buf, ':')
		buf = appendUint64(buf, uint64(m.Anno))
		buf = append(buf, '|')
	}
	return string(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, tmp[i:]...)
}
