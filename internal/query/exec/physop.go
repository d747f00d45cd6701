package exec

import (
	"context"

	"corpusgraph/internal/types"
)

// Iterator is the pull-style contract every physical operator implements,
// the idiomatic analogue of the reference engine's lazy result streams.
// Next returns io.EOF-like end-of-stream via ok=false; a non-nil error
// aborts the whole query (design §7: "the executor surfaces the first
// error encountered on any operand").
type Iterator interface {
	Next(ctx context.Context) (types.MatchGroup, bool, error)
}

// PhysicalOperator is a node in the plan tree: every join and filter
// produces MatchGroups of a known, fixed width and carries a descriptor
// for diagnostics and cost accounting.
type PhysicalOperator interface {
	Iterator
	Desc() *Desc
	Width() int
}

// rejectGlobalReflexive reports whether candidate must be rejected because
// its Node already appears at some other position of the tuple being
// built — the "global reflexivity" rule (design §4.G) applied when the
// planner has bound an operator's variables to distinct query node
// numbers.
func rejectGlobalReflexive(tuple types.MatchGroup, candidate types.Match) bool {
	for _, m := range tuple {
		if m.Node == candidate.Node {
			return true
		}
	}
	return false
}
