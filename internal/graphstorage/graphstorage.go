// Package graphstorage implements the per-component edge indexes
// supporting reachability queries (design §4.C): adjacency list, dense
// adjacency, linear, pre/post-order, and union-of-components. The
// GraphStorage interface is the one place in the engine that uses Go
// interfaces for dispatch rather than a closed tagged variant, since the
// registry (§4.B) is the one extension point where a third-party storage
// implementation is plausible.
package graphstorage

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// EdgeContainer is the read-only edge view every graph storage implements.
type EdgeContainer interface {
	GetOutgoingEdges(source types.NodeID) []types.NodeID
	GetIngoingEdges(target types.NodeID) []types.NodeID
	SourceNodes() []types.NodeID
	GetStatistics() types.GraphStatistic
}

// GraphStorage extends EdgeContainer with reachability queries and the
// maintenance operations the registry and planner need.
type GraphStorage interface {
	EdgeContainer

	// FindConnected performs a cycle-safe DFS from source along outgoing
	// edges, yielding each reachable node exactly once at the first
	// distance d with min <= d <= maxBound.
	FindConnected(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID]

	// FindConnectedInverse is FindConnected following ingoing edges.
	FindConnectedInverse(source types.NodeID, min uint64, maxBound types.Bound) annostorage.Iterator[types.NodeID]

	// Distance returns the shortest path length from s to t, or ok=false
	// if t is unreachable. Distance never reports 0 for s==t; callers that
	// want reflexive behavior handle it at the operator layer.
	Distance(s, t types.NodeID) (uint64, bool)

	// IsConnected reports whether t is reachable from s within [min, max].
	IsConnected(s, t types.NodeID, min uint64, maxBound types.Bound) bool

	// EdgeAnnos returns this storage's edge annotation store.
	EdgeAnnos() *annostorage.Store[types.Edge]

	// CopyFrom rebuilds this storage's content from another EdgeContainer,
	// used during compaction when the registry picks a new representation.
	CopyFrom(other EdgeContainer)

	// InverseHasSameCost reports whether following ingoing edges costs the
	// same as following outgoing edges, informing the planner's orientation
	// choice.
	InverseHasSameCost() bool
}

// cycleSafeDFS implements the shared traversal contract (design §9): a
// visited set (outer uniqueness filter) plus a path set (cycle safety),
// kept strictly separate so diamond shapes are yielded exactly once while
// cycles do not loop forever.
func cycleSafeDFS(source types.NodeID, min uint64, maxBound types.Bound, neighbors func(types.NodeID) []types.NodeID) []types.NodeID {
	visited := make(map[types.NodeID]struct{})
	var out []types.NodeID

	maxDepth, hasMax := maxBound.Max()

	onPath := make(map[types.NodeID]struct{})
	onPath[source] = struct{}{}

	var walk func(node types.NodeID, depth uint64)
	walk = func(node types.NodeID, depth uint64) {
		if hasMax && depth > maxDepth {
			return
		}
		for _, next := range neighbors(node) {
			if _, cyclic := onPath[next]; cyclic {
				// Pruned for cycle safety; the node may still be produced
				// via a different, non-cyclic path elsewhere.
				continue
			}
			nextDepth := depth + 1
			if _, seen := visited[next]; !seen && nextDepth >= min && maxBound.Satisfies(nextDepth) {
				visited[next] = struct{}{}
				out = append(out, next)
			}
			if hasMax && nextDepth > maxDepth {
				continue
			}
			onPath[next] = struct{}{}
			walk(next, nextDepth)
			delete(onPath, next)
		}
	}
	walk(source, 0)
	return out
}

// distanceBFS computes the shortest-path distance from source to target by
// breadth-first search, which is cheaper than DFS for a single-target
// query and naturally ignores cycles (each node is enqueued once).
func distanceBFS(source, target types.NodeID, neighbors func(types.NodeID) []types.NodeID) (uint64, bool) {
	if source == target {
		return 0, false
	}
	visited := map[types.NodeID]struct{}{source: {}}
	frontier := []types.NodeID{source}
	depth := uint64(0)
	for len(frontier) > 0 {
		depth++
		var next []types.NodeID
		for _, n := range frontier {
			for _, c := range neighbors(n) {
				if c == target {
					return depth, true
				}
				if _, seen := visited[c]; seen {
					continue
				}
				visited[c] = struct{}{}
				next = append(next, c)
			}
		}
		frontier = next
	}
	return 0, false
}
