package corpusquery

import (
	"strings"

	"corpusgraph/internal/graph"
	"corpusgraph/internal/types"
)

// SerializeMatchGroup renders tuple as "ns1::name1::value1 nodeName1
// ns2::name2::value2 nodeName2 …" (design §6): the annotation triple is
// omitted for a match referring to the default (annis, node_name)
// annotation, leaving just the node name.
func SerializeMatchGroup(g *graph.Graph, tuple types.MatchGroup) string {
	parts := make([]string, 0, len(tuple)*2)
	for _, m := range tuple {
		parts = append(parts, serializeMatch(g, m)...)
	}
	return strings.Join(parts, " ")
}

func serializeMatch(g *graph.Graph, m types.Match) []string {
	nodeName, _ := g.NodeName(m.Node)
	key, ok := g.NodeAnnos.ResolveKey(m.Anno)
	if !ok || key == types.NodeNameKey {
		return []string{nodeName}
	}
	value, ok := g.NodeAnnos.GetValueForItem(m.Node, key)
	if !ok {
		return []string{nodeName}
	}
	return []string{key.NS + "::" + key.Name + "::" + value, nodeName}
}
