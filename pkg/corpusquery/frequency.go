package corpusquery

import (
	"context"
	"sort"
	"strings"

	"corpusgraph/internal/config"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/query/plan"
	"corpusgraph/internal/types"
)

// FrequencyColumn names one projection in a frequency table: the query
// node number and the annotation key whose value is counted.
type FrequencyColumn struct {
	NodeNum int
	Key     types.AnnoKey
}

// FrequencyDefinition is the ordered list of columns a frequency table
// groups by.
type FrequencyDefinition []FrequencyColumn

// FrequencyRow is one distinct combination of projected values and how
// many result tuples produced it.
type FrequencyRow struct {
	Values []string
	Count  int
}

// Frequency evaluates disj and groups its results by the values of
// definition's columns, returning rows ordered by descending count (ties
// broken lexicographically by value) — named in design §6 but not
// detailed in §4, implemented on top of the same executor as Count/Find.
func Frequency(ctx context.Context, g *graph.Graph, disj plan.Disjunction, definition FrequencyDefinition, cfg *config.Config) ([]FrequencyRow, error) {
	results, err := run(ctx, g, disj, cfg)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	rows := make(map[string]*FrequencyRow)

	for _, tuple := range results {
		values := make([]string, len(definition))
		for i, col := range definition {
			if col.NodeNum < 0 || col.NodeNum >= len(tuple) {
				continue
			}
			m := tuple[col.NodeNum]
			if v, ok := g.NodeAnnos.GetValueForItem(m.Node, col.Key); ok {
				values[i] = v
			}
		}
		key := strings.Join(values, "\x1f")
		row, ok := rows[key]
		if !ok {
			row = &FrequencyRow{Values: values}
			rows[key] = row
			order = append(order, key)
		}
		row.Count++
	}

	out := make([]FrequencyRow, len(order))
	for i, key := range order {
		out[i] = *rows[key]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Join(out[i].Values, "\x1f") < strings.Join(out[j].Values, "\x1f")
	})
	return out, nil
}
