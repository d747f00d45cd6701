package graphstorage

import (
	"fmt"

	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/types"
)

// SerializationID names a concrete graph storage representation, the
// registry's dispatch key (design §4.B).
type SerializationID string

const (
	AdjacencyListV1       SerializationID = "AdjacencyListV1"
	DenseAdjacencyListV1  SerializationID = "DenseAdjacencyListV1"
	LinearV1              SerializationID = "LinearV1"
	PrePostOrderO32L32    SerializationID = "PrePostOrderO32L32"
	PrePostOrderO32L8     SerializationID = "PrePostOrderO32L8"
	PrePostOrderO16L32    SerializationID = "PrePostOrderO16L32"
	PrePostOrderO16L8     SerializationID = "PrePostOrderO16L8"
	UnionEdgeContainerV1  SerializationID = "UnionEdgeContainerV1"
)

// Factory builds an empty, mutable graph storage for a given serialization
// ID. Registered factories are the registry's extension point: a
// third-party storage implementation registers itself here rather than the
// engine needing to know about it ahead of time.
type Factory func() GraphStorage

// registry maps serialization IDs to factories. It is a package-level,
// write-once-at-init table; callers never need their own instance since
// the set of representations is part of the engine's wire format.
var registry = map[SerializationID]Factory{
	AdjacencyListV1:      func() GraphStorage { return NewAdjacencyList() },
	DenseAdjacencyListV1: func() GraphStorage { return NewDenseAdjacency() },
	LinearV1:             func() GraphStorage { return NewLinear() },
	PrePostOrderO32L32:   func() GraphStorage { return NewPrePostOrder() },
	PrePostOrderO32L8:    func() GraphStorage { return NewPrePostOrder() },
	PrePostOrderO16L32:   func() GraphStorage { return NewPrePostOrder() },
	PrePostOrderO16L8:    func() GraphStorage { return NewPrePostOrder() },
}

// New constructs an empty storage for the given serialization ID. Unknown
// IDs fail component loading with a recoverable error (§4.B).
func New(id SerializationID) (GraphStorage, error) {
	factory, ok := registry[id]
	if !ok {
		return nil, corpuserrors.New(corpuserrors.LoadingGraphFailed, "unknown graph storage serialization id %q", id)
	}
	return factory(), nil
}

// Classify picks the most efficient concrete representation for a
// just-built component given its observed statistics, following the
// preference order in design §4.C: pre/post for rooted trees, linear for
// disjoint chains, dense adjacency for single-fan-out components, and
// adjacency list as the universal fallback.
func Classify(stat types.GraphStatistic) SerializationID {
	switch {
	case fitsPrePostOrder(stat):
		return classifyPrePost(stat)
	case fitsLinear(stat):
		return LinearV1
	case fitsDenseAdjacency(stat):
		return DenseAdjacencyListV1
	default:
		return AdjacencyListV1
	}
}

// classifyPrePost picks among the four pre/post serialization IDs by the
// observed node count and max depth — purely a serialization-size tag in
// this Go implementation (see prepost.go), kept so the on-disk format
// matches what the registry's ID space expects.
func classifyPrePost(stat types.GraphStatistic) SerializationID {
	orderFits16 := stat.Nodes <= (1 << 16)
	levelFits8 := stat.MaxDepth <= (1 << 8)
	switch {
	case orderFits16 && levelFits8:
		return PrePostOrderO16L8
	case orderFits16:
		return PrePostOrderO16L32
	case levelFits8:
		return PrePostOrderO32L8
	default:
		return PrePostOrderO32L32
	}
}

// Build constructs a storage via Classify and copies content from source.
func Build(stat types.GraphStatistic, source EdgeContainer) GraphStorage {
	id := Classify(stat)
	gs, err := New(id)
	if err != nil {
		// Classify only returns known IDs; a mismatch here is a registry
		// wiring bug, not a recoverable load failure.
		panic(fmt.Sprintf("graphstorage: classifier produced unregistered id %q", id))
	}
	gs.CopyFrom(source)
	logging.GraphStorageDebug("built component storage as %s (%d nodes)", id, stat.Nodes)
	return gs
}
