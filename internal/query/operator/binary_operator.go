package operator

import (
	"corpusgraph/internal/annostorage"
	"corpusgraph/internal/types"
)

// BinaryOperator is the interface every join/filter predicate implements
// (design §4.F). retrieve_matches must be complete: every RHS satisfying
// the operator for a given LHS must appear in its output, so the planner
// can safely place the operator as an IndexJoin's index side.
type BinaryOperator interface {
	// Name identifies the operator for descriptors and diagnostics.
	Name() string

	// RetrieveMatches yields every candidate RHS match for a given LHS
	// match. Completeness (not filter_match-equivalence) is the contract
	// the planner relies on to use this as an index.
	RetrieveMatches(lhs types.Match) annostorage.Iterator[types.Match]

	// FilterMatch independently decides acceptance, used both as the
	// nested-loop/filter predicate and as the reference RetrieveMatches
	// must stay complete against (design §8 property 4).
	FilterMatch(lhs, rhs types.Match) bool

	// IsReflexive reports whether (x, x) is an accepted pair.
	IsReflexive() bool

	// IsCommutative reports whether swapping lhs/rhs yields an equivalent
	// operator (used to validate InverseOperator and to let the planner
	// choose either orientation freely).
	IsCommutative() bool

	// EstimationType returns this operator's closed-form cost estimate.
	EstimationType() Estimation

	// EdgeAnnoSelectivity optionally refines the estimate using an edge
	// annotation predicate's own selectivity; ok is false when the
	// operator carries no edge-annotation predicate.
	EdgeAnnoSelectivity() (value float64, ok bool)

	// InverseOperator returns the operator with lhs/rhs swapped, when one
	// exists (design §8 property 5 exercises this for commutative ops).
	InverseOperator() (BinaryOperator, bool)
}

// reflexiveGuard implements the shared "reject (x, x) when not reflexive"
// rule (design §4.G) so each operator's FilterMatch only needs to express
// its acceptance condition.
func reflexiveGuard(op BinaryOperator, lhs, rhs types.Match) (reject bool) {
	if op.IsReflexive() {
		return false
	}
	return lhs.Node == rhs.Node && lhs.Anno == rhs.Anno
}
