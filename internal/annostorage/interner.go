package annostorage

import (
	"sync"

	"corpusgraph/internal/types"
)

// keyInterner maps AnnoKey <-> AnnoKeyID for one annotation store. Per the
// engine's design notes, interners are scoped per store/Graph rather than
// process-wide so independent corpora never contend on a shared lock.
type keyInterner struct {
	mu      sync.RWMutex
	byKey   map[types.AnnoKey]types.AnnoKeyID
	byID    []types.AnnoKey
}

func newKeyInterner() *keyInterner {
	return &keyInterner{byKey: make(map[types.AnnoKey]types.AnnoKeyID)}
}

// intern returns the ID for key, allocating a new one if unseen.
func (n *keyInterner) intern(key types.AnnoKey) types.AnnoKeyID {
	n.mu.RLock()
	if id, ok := n.byKey[key]; ok {
		n.mu.RUnlock()
		return id
	}
	n.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if id, ok := n.byKey[key]; ok {
		return id
	}
	id := types.AnnoKeyID(len(n.byID))
	n.byKey[key] = id
	n.byID = append(n.byID, key)
	return id
}

// lookup returns the ID for key without allocating; ok is false if the key
// has never been interned.
func (n *keyInterner) lookup(key types.AnnoKey) (types.AnnoKeyID, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	id, ok := n.byKey[key]
	return id, ok
}

// resolve returns the AnnoKey for an ID previously produced by intern.
func (n *keyInterner) resolve(id types.AnnoKeyID) (types.AnnoKey, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if int(id) >= len(n.byID) {
		return types.AnnoKey{}, false
	}
	return n.byID[id], true
}

// byNameAll returns every interned key ID whose Name matches name, regardless
// of namespace — used when a search omits the namespace.
func (n *keyInterner) byNameAll(name string) []types.AnnoKeyID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []types.AnnoKeyID
	for k, id := range n.byKey {
		if k.Name == name {
			out = append(out, id)
		}
	}
	return out
}

func (n *keyInterner) all() []types.AnnoKey {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]types.AnnoKey, len(n.byID))
	copy(out, n.byID)
	return out
}
