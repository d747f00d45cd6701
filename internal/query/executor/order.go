package executor

import (
	"sort"
	"strconv"
	"strings"

	"corpusgraph/internal/config"
	"corpusgraph/internal/graph"
	"corpusgraph/internal/tokenhelper"
	"corpusgraph/internal/types"
)

// SortByTextPos orders groups by document path, then by each query node's
// left-token text position, falling back to node name, node ID, and
// annotation key as tiebreakers, with longer tuples preceding shorter ones
// on a full tie (design §4.I).
func SortByTextPos(g *graph.Graph, groups []types.MatchGroup, cfg config.OrderConfig) {
	h := tokenhelper.New(g)
	sort.SliceStable(groups, func(i, j int) bool {
		return compareMatchGroups(g, h, cfg, groups[i], groups[j]) < 0
	})
}

func compareMatchGroups(g *graph.Graph, h *tokenhelper.Helper, cfg config.OrderConfig, a, b types.MatchGroup) int {
	if c := compareStrings(documentPath(g, a, cfg), documentPath(g, b, cfg), cfg.ByteWiseCollation); c != 0 {
		return c
	}

	n := minLen(len(a), len(b))

	for i := 0; i < n; i++ {
		pa, okA := h.TextPosition(a[i].Node, "annis")
		pb, okB := h.TextPosition(b[i].Node, "annis")
		if okA && okB && pa != pb {
			return compareUint64(pa, pb)
		}
	}

	for i := 0; i < n; i++ {
		na, _ := g.NodeName(a[i].Node)
		nb, _ := g.NodeName(b[i].Node)
		if c := compareStrings(na, nb, cfg.ByteWiseCollation); c != 0 {
			return c
		}
	}

	for i := 0; i < n; i++ {
		if a[i].Node != b[i].Node {
			return compareUint64(uint64(a[i].Node), uint64(b[i].Node))
		}
	}

	for i := 0; i < n; i++ {
		if a[i].Anno != b[i].Anno {
			return compareUint64(uint64(a[i].Anno), uint64(b[i].Anno))
		}
	}

	if len(a) != len(b) {
		if len(a) > len(b) {
			return -1
		}
		return 1
	}
	return 0
}

// documentPath derives the owning document's path from the first query
// node's (annis, node_name) annotation, conventionally "<doc-path>#<id>".
// In quirks mode only the last path segment after the final '/' is
// compared, matching the legacy ordering some corpora were built to
// depend on.
func documentPath(g *graph.Graph, tuple types.MatchGroup, cfg config.OrderConfig) string {
	if len(tuple) == 0 {
		return ""
	}
	name, ok := g.NodeName(tuple[0].Node)
	if !ok {
		return ""
	}
	if idx := strings.LastIndexByte(name, '#'); idx >= 0 {
		name = name[:idx]
	}
	if cfg.QuirksMode {
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			name = name[idx+1:]
		}
		name = percentDecodeLossy(name)
	}
	return name
}

// percentDecodeLossy mirrors percent_encoding::percent_decode(...).decode_utf8_lossy():
// a %XX escape is decoded where valid, and left untouched otherwise, rather
// than failing the whole comparison over one malformed escape.
func percentDecodeLossy(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "�")
}

func compareStrings(a, b string, byteWise bool) int {
	if !byteWise {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func minLen(a, b int) int {
	if a < b {
		return a
	}
	return b
}
