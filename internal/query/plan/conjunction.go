// Package plan implements the cost-based planner (design §4.H): it
// compiles a Conjunction into a tree of physical operators, choosing join
// order and physical form (index-join vs. nested-loop vs. binary-filter)
// by cost estimation.
package plan

import "corpusgraph/internal/query/operator"

// NodeConstraint names one query node's search spec.
type NodeConstraint struct {
	NodeNum int
	Spec    operator.NodeSearchSpec
}

// OperatorConstraint names a binary operator between two query nodes. The
// planner decides the physical form (IndexJoin, NestedLoop or
// BinaryFilter) from tree membership when the constraint is applied.
type OperatorConstraint struct {
	LHSNode, RHSNode int
	Op               operator.BinaryOperator
	// GlobalReflexive requires the new RHS to differ from every LHS
	// position already in the tuple, not just the operand position
	// directly joined (design §4.G "global reflexivity").
	GlobalReflexive bool
}

// Conjunction is a set of node-search specs plus a set of binary
// constraints between them (design §4.H input).
type Conjunction struct {
	Nodes     []NodeConstraint
	Operators []OperatorConstraint
}

// Disjunction is a sequence of Conjunctions (design §4.I).
type Disjunction []Conjunction
