// Package types holds the core data model shared by every subsystem of the
// query engine: node identifiers, interned annotation keys, edges,
// components, and the match tuples queries produce.
package types

import "fmt"

// NodeID identifies a graph node. IDs are dense and assigned by the
// importer; node-indexed structures may use dense arrays keyed by NodeID
// when density warrants it.
type NodeID uint64

// AnnoKey is a (namespace, name) pair. Both fields are expected non-empty
// except for the reserved default key used by node-name matches.
type AnnoKey struct {
	NS   string
	Name string
}

func (k AnnoKey) String() string {
	if k.NS == "" {
		return k.Name
	}
	return k.NS + "::" + k.Name
}

// AnnoKeyID is the interned, process-local (really: per-Graph) handle for
// an AnnoKey, used for compact comparisons.
type AnnoKeyID uint32

// Annotation pairs an interned key with its value. Values are interned per
// annotation store.
type Annotation struct {
	Key   AnnoKeyID
	Value string
}

// NodeNameKey is the reserved (annis, node_name) annotation used as the
// default identity of a match when no other annotation key is specified.
var NodeNameKey = AnnoKey{NS: "annis", Name: "node_name"}

// TokKey is the reserved (annis, tok) annotation marking token nodes.
var TokKey = AnnoKey{NS: "annis", Name: "tok"}

// Edge is an ordered pair of nodes. Edges live inside exactly one
// Component.
type Edge struct {
	Source NodeID
	Target NodeID
}

func (e Edge) String() string {
	return fmt.Sprintf("%d->%d", e.Source, e.Target)
}

// ComponentType enumerates the closed set of component kinds. Unlike the
// reference implementation's trait objects, this is a tagged variant: the
// set is fixed and known at compile time, so a switch over ComponentType
// replaces dynamic dispatch wherever the concrete meaning (not the storage
// representation) matters.
type ComponentType int

const (
	ComponentCoverage ComponentType = iota
	ComponentInverseCoverage
	ComponentDominance
	ComponentPointing
	ComponentOrdering
	ComponentLeftToken
	ComponentRightToken
	ComponentPartOfSubcorpus
)

func (t ComponentType) String() string {
	switch t {
	case ComponentCoverage:
		return "Coverage"
	case ComponentInverseCoverage:
		return "InverseCoverage"
	case ComponentDominance:
		return "Dominance"
	case ComponentPointing:
		return "Pointing"
	case ComponentOrdering:
		return "Ordering"
	case ComponentLeftToken:
		return "LeftToken"
	case ComponentRightToken:
		return "RightToken"
	case ComponentPartOfSubcorpus:
		return "PartOfSubcorpus"
	default:
		return "Unknown"
	}
}

// Component is the unique (type, layer, name) identifier for a set of
// edges sharing the same semantics.
type Component struct {
	Type  ComponentType
	Layer string
	Name  string
}

func (c Component) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Type, c.Layer, c.Name)
}

// Match binds one query node to a graph item and the annotation key the
// match refers to (the node itself, for plain node predicates, uses
// NodeNameKey).
type Match struct {
	Node NodeID
	Anno AnnoKeyID
}

// MatchGroup is an ordered sequence of Matches, one position per query
// node, in planner-chosen execution order. Reordering to original query
// node numbers happens at the executor boundary (§4.I), not here.
type MatchGroup []Match

// Bound describes the upper bound of a distance range used by reachability
// queries: Included(n), Excluded(n), or Unbounded.
type Bound struct {
	kind  boundKind
	value uint64
}

type boundKind int

const (
	boundIncluded boundKind = iota
	boundExcluded
	boundUnbounded
)

// Included returns a bound satisfied by any distance <= n.
func Included(n uint64) Bound { return Bound{kind: boundIncluded, value: n} }

// Excluded returns a bound satisfied by any distance < n.
func Excluded(n uint64) Bound { return Bound{kind: boundExcluded, value: n} }

// Unbounded returns a bound satisfied by any distance.
func Unbounded() Bound { return Bound{kind: boundUnbounded} }

// Satisfies reports whether distance d falls within the bound.
func (b Bound) Satisfies(d uint64) bool {
	switch b.kind {
	case boundIncluded:
		return d <= b.value
	case boundExcluded:
		return d < b.value
	default:
		return true
	}
}

// Max returns the largest distance the bound admits, and ok=false when
// the bound is Unbounded (no finite maximum).
func (b Bound) Max() (uint64, bool) {
	switch b.kind {
	case boundIncluded:
		return b.value, true
	case boundExcluded:
		if b.value == 0 {
			return 0, true
		}
		return b.value - 1, true
	default:
		return 0, false
	}
}

// ValueSearch discriminates the three ways an exact-value search can
// constrain a value: match anything, match exactly v, or match anything
// except v.
type ValueSearch struct {
	kind  valueSearchKind
	value string
}

type valueSearchKind int

const (
	valueSearchAny valueSearchKind = iota
	valueSearchSome
	valueSearchNotSome
)

// AnyValue accepts every value.
func AnyValue() ValueSearch { return ValueSearch{kind: valueSearchAny} }

// SomeValue accepts exactly v.
func SomeValue(v string) ValueSearch { return ValueSearch{kind: valueSearchSome, value: v} }

// NotSomeValue accepts any value other than v.
func NotSomeValue(v string) ValueSearch { return ValueSearch{kind: valueSearchNotSome, value: v} }

// Matches reports whether value v satisfies the search.
func (s ValueSearch) Matches(v string) bool {
	switch s.kind {
	case valueSearchSome:
		return v == s.value
	case valueSearchNotSome:
		return v != s.value
	default:
		return true
	}
}

// IsAny reports whether the search accepts every value.
func (s ValueSearch) IsAny() bool { return s.kind == valueSearchAny }

// Value returns the constrained value and whether one is set (Some or
// NotSome).
func (s ValueSearch) Value() (string, bool) {
	return s.value, s.kind != valueSearchAny
}

// GraphStatistic summarizes a graph storage's shape for cost estimation.
type GraphStatistic struct {
	Nodes            uint64
	AvgFanOut        float64
	MaxFanOut        uint64
	FanOut99Percentile    uint64
	InverseFanOut99Percentile uint64
	MaxDepth         uint64
	Cyclic           bool
	RootedTree       bool
	DFSVisitRatio    float64
	Valid            bool
}
