// Package queryjson decodes the JSON wire format a debug client submits a
// pre-parsed query in: an array of conjunctions, each an array of node
// specs plus an array of binary operator constraints. There is no AQL text
// parser here (design §1 non-goal) — this package only bridges JSON to the
// plan.Disjunction the planner consumes.
package queryjson

import (
	"encoding/json"
	"fmt"

	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/query/operator"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/types"
)

// Node is the JSON shape of a single query node constraint.
type Node struct {
	NodeNum   int     `json:"node_num"`
	Kind      string  `json:"kind"`
	NS        *string `json:"ns,omitempty"`
	Name      string  `json:"name,omitempty"`
	Value     string  `json:"value,omitempty"`
	IsMeta    bool    `json:"is_meta,omitempty"`
	LeafsOnly bool    `json:"leafs_only,omitempty"`
}

// OperatorSpec is the JSON shape of a single binary operator constraint.
type OperatorSpec struct {
	LHSNode         int      `json:"lhs_node"`
	RHSNode         int      `json:"rhs_node"`
	GlobalReflexive bool     `json:"global_reflexive,omitempty"`
	Op              OpParams `json:"op"`
}

// OpParams names the operator kind and its parameters. Not every field
// applies to every Kind; see buildOperator.
type OpParams struct {
	Kind        string  `json:"kind"`
	Layer       string  `json:"layer,omitempty"`
	Component   string  `json:"component,omitempty"`
	Min         uint64  `json:"min,omitempty"`
	Max         uint64  `json:"max,omitempty"`
	HasMax      bool    `json:"has_max,omitempty"`
	EdgeAnnoNS  *string `json:"edge_anno_ns,omitempty"`
	EdgeAnnoKey string  `json:"edge_anno_key,omitempty"`
	EdgeAnnoVal string  `json:"edge_anno_value,omitempty"`
	HasEdgeAnno bool    `json:"has_edge_anno,omitempty"`
}

// Conjunction is the JSON shape of one conjunction in a disjunction.
type Conjunction struct {
	Nodes     []Node         `json:"nodes"`
	Operators []OperatorSpec `json:"operators"`
}

// Decode parses a JSON disjunction (array of Conjunction) into a
// plan.Disjunction, compiling every node spec and operator against g.
func Decode(g *graph.Graph, data []byte) (plan.Disjunction, error) {
	var conjs []Conjunction
	if err := json.Unmarshal(data, &conjs); err != nil {
		return nil, corpuserrors.Wrap(corpuserrors.AQLSyntaxError, err, "invalid query JSON")
	}
	if len(conjs) == 0 {
		return nil, corpuserrors.New(corpuserrors.AQLSemanticError, "empty disjunction")
	}

	disj := make(plan.Disjunction, len(conjs))
	for i, c := range conjs {
		conj, err := buildConjunction(g, c)
		if err != nil {
			return nil, corpuserrors.Wrap(corpuserrors.AQLSemanticError, err, "conjunction %d", i)
		}
		disj[i] = conj
	}
	return disj, nil
}

func buildConjunction(g *graph.Graph, c Conjunction) (plan.Conjunction, error) {
	nodes := make([]plan.NodeConstraint, len(c.Nodes))
	for i, n := range c.Nodes {
		spec, err := buildSpec(n)
		if err != nil {
			return plan.Conjunction{}, fmt.Errorf("node %d: %w", n.NodeNum, err)
		}
		nodes[i] = plan.NodeConstraint{NodeNum: n.NodeNum, Spec: spec}
	}

	ops := make([]plan.OperatorConstraint, len(c.Operators))
	for i, o := range c.Operators {
		bop, err := buildOperator(g, o.Op)
		if err != nil {
			return plan.Conjunction{}, fmt.Errorf("operator %d: %w", i, err)
		}
		ops[i] = plan.OperatorConstraint{
			LHSNode:         o.LHSNode,
			RHSNode:         o.RHSNode,
			Op:              bop,
			GlobalReflexive: o.GlobalReflexive,
		}
	}
	return plan.Conjunction{Nodes: nodes, Operators: ops}, nil
}

func buildSpec(n Node) (operator.NodeSearchSpec, error) {
	kind, err := specKind(n.Kind)
	if err != nil {
		return operator.NodeSearchSpec{}, err
	}
	return operator.NodeSearchSpec{
		Kind:      kind,
		NS:        n.NS,
		Name:      n.Name,
		Value:     n.Value,
		IsMeta:    n.IsMeta,
		LeafsOnly: n.LeafsOnly,
	}, nil
}

func specKind(s string) (operator.SpecKind, error) {
	switch s {
	case "exact_value":
		return operator.SpecExactValue, nil
	case "not_exact_value":
		return operator.SpecNotExactValue, nil
	case "regex_value":
		return operator.SpecRegexValue, nil
	case "exact_token_value":
		return operator.SpecExactTokenValue, nil
	case "regex_token_value":
		return operator.SpecRegexTokenValue, nil
	case "any_token":
		return operator.SpecAnyToken, nil
	case "any_node":
		return operator.SpecAnyNode, nil
	default:
		return 0, fmt.Errorf("unknown node spec kind %q", s)
	}
}

func buildOperator(g *graph.Graph, p OpParams) (operator.BinaryOperator, error) {
	layer := p.Layer
	if layer == "" {
		layer = "annis"
	}
	switch p.Kind {
	case "precedence":
		return operator.NewPrecedence(g, layer, p.Min, p.Max, p.HasMax), nil
	case "overlap":
		return operator.NewOverlap(g, layer), nil
	case "inclusion":
		return operator.NewInclusion(g, layer), nil
	case "identical_node":
		return operator.IdenticalNode{}, nil
	case "identical_coverage":
		return operator.NewIdenticalCoverage(g), nil
	case "left_alignment":
		return operator.NewLeftAlignment(g), nil
	case "right_alignment":
		return operator.NewRightAlignment(g), nil
	case "dominance":
		return operator.NewDominance(g, layer, p.Component, p.Min, p.Max, p.HasMax, edgeAnnoPredicate(p)), nil
	case "pointing":
		return operator.NewPointing(g, layer, p.Component, p.Min, p.Max, p.HasMax, edgeAnnoPredicate(p)), nil
	case "part_of_subcorpus":
		return operator.NewPartOfSubcorpus(g), nil
	default:
		return nil, fmt.Errorf("unknown operator kind %q", p.Kind)
	}
}

func edgeAnnoPredicate(p OpParams) operator.EdgeAnnoPredicate {
	if !p.HasEdgeAnno {
		return operator.EdgeAnnoPredicate{}
	}
	return operator.EdgeAnnoPredicate{
		Key:   types.AnnoKey{NS: derefNS(p.EdgeAnnoNS), Name: p.EdgeAnnoKey},
		Value: types.SomeValue(p.EdgeAnnoVal),
		Set:   true,
	}
}

func derefNS(ns *string) string {
	if ns == nil {
		return ""
	}
	return *ns
}
