// Package corpusquery is the core API surface exposed to collaborators
// (design §6): count, find, frequency, and subgraph extraction over an
// already-planned Conjunction/Disjunction. An AQL text parser is an
// external collaborator this package does not provide.
package corpusquery

import (
	"context"

	"corpusgraph/internal/config"
	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/query/executor"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/types"
)

// Count returns the number of results disj produces against g.
func Count(ctx context.Context, g *graph.Graph, disj plan.Disjunction, cfg *config.Config) (int, error) {
	results, err := run(ctx, g, disj, cfg)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Find returns the serialized match tuples disj produces against g,
// windowed by offset and an optional limit (nil means unbounded), ordered
// per cfg.Order.
func Find(ctx context.Context, g *graph.Graph, disj plan.Disjunction, offset int, limit *int, cfg *config.Config) ([]string, error) {
	results, err := run(ctx, g, disj, cfg)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(results) {
		offset = len(results)
	}
	results = results[offset:]
	if limit != nil && *limit >= 0 && *limit < len(results) {
		results = results[:*limit]
	}
	out := make([]string, len(results))
	for i, tuple := range results {
		out[i] = SerializeMatchGroup(g, tuple)
	}
	return out, nil
}

// run executes the disjunction and enforces CoreLimits.MaxResultSetSize, the
// resource ceiling that keeps a pathological query from exhausting memory
// (design §5 "resource policy").
func run(ctx context.Context, g *graph.Graph, disj plan.Disjunction, cfg *config.Config) ([]types.MatchGroup, error) {
	results, err := executor.Execute(ctx, g, disj, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CoreLimits.MaxResultSetSize > 0 && len(results) > cfg.CoreLimits.MaxResultSetSize {
		logging.QueryDebug("result set of %d exceeds max_result_set_size %d", len(results), cfg.CoreLimits.MaxResultSetSize)
		return nil, corpuserrors.New(corpuserrors.ImpossibleSearch,
			"result set of %d exceeds configured max_result_set_size %d", len(results), cfg.CoreLimits.MaxResultSetSize)
	}
	return results, nil
}
