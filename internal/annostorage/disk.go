package annostorage

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"corpusgraph/internal/corpuserrors"
	"corpusgraph/internal/logging"
	"corpusgraph/internal/types"
)

// DiskStore is the disk-backed annotation store variant for NodeID items
// (§4.A "Disk-backed variant"). It keeps the same read contract as Store
// but materializes by_item/by_anno in a sqlite table instead of in-memory
// maps, chosen per the open-question decision recorded in SPEC_FULL.md: a
// static indexed table fits a write-once, read-many access pattern better
// than an LSM tree.
type DiskStore struct {
	mu       sync.RWMutex
	db       *sql.DB
	interner *keyInterner
}

// OpenDiskStore opens (creating if absent) a sqlite database at path and
// prepares the annotation tables. An empty path opens an in-memory
// database, useful for tests.
func OpenDiskStore(path string, cacheSizeMB int) (*DiskStore, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, corpuserrors.Wrap(corpuserrors.LoadingGraphFailed, err, "opening annotation database %s", path)
	}
	if cacheSizeMB > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA cache_size = -%d", cacheSizeMB*1024)); err != nil {
			logging.DiskError("failed to set cache_size pragma: %v", err)
		}
	}
	ds := &DiskStore{db: db, interner: newKeyInterner()}
	if err := ds.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logging.DiskDebug("opened annotation store at %s", path)
	return ds, nil
}

func (d *DiskStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS anno_keys (id INTEGER PRIMARY KEY, ns TEXT NOT NULL, name TEXT NOT NULL, UNIQUE(ns, name))`,
		`CREATE TABLE IF NOT EXISTS by_item (node_id INTEGER NOT NULL, key_id INTEGER NOT NULL, value TEXT NOT NULL, PRIMARY KEY (node_id, key_id))`,
		`CREATE INDEX IF NOT EXISTS idx_by_anno ON by_item(key_id, value)`,
	}
	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return corpuserrors.Wrap(corpuserrors.LoadingGraphFailed, err, "migrating annotation database")
		}
	}
	rows, err := d.db.Query(`SELECT id, ns, name FROM anno_keys`)
	if err != nil {
		return corpuserrors.Wrap(corpuserrors.LoadingGraphFailed, err, "loading interned keys")
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var ns, name string
		if err := rows.Scan(&id, &ns, &name); err != nil {
			return corpuserrors.Wrap(corpuserrors.LoadingGraphFailed, err, "scanning interned key")
		}
		d.interner.byKey[types.AnnoKey{NS: ns, Name: name}] = types.AnnoKeyID(id)
		for int64(len(d.interner.byID)) <= id {
			d.interner.byID = append(d.interner.byID, types.AnnoKey{})
		}
		d.interner.byID[id] = types.AnnoKey{NS: ns, Name: name}
	}
	return nil
}

// Close releases the underlying database handle.
func (d *DiskStore) Close() error {
	return d.db.Close()
}

func (d *DiskStore) internPersist(key types.AnnoKey) (types.AnnoKeyID, error) {
	if id, ok := d.interner.lookup(key); ok {
		return id, nil
	}
	res, err := d.db.Exec(`INSERT OR IGNORE INTO anno_keys(ns, name) VALUES (?, ?)`, key.NS, key.Name)
	if err != nil {
		return 0, corpuserrors.Wrap(corpuserrors.Internal, err, "interning key %s", key)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, _ := res.LastInsertId()
		d.interner.mu.Lock()
		d.interner.byKey[key] = types.AnnoKeyID(id)
		for int64(len(d.interner.byID)) <= id {
			d.interner.byID = append(d.interner.byID, types.AnnoKey{})
		}
		d.interner.byID[id] = key
		d.interner.mu.Unlock()
		return types.AnnoKeyID(id), nil
	}
	// Another writer interned it first (or this is a retry); reload.
	row := d.db.QueryRow(`SELECT id FROM anno_keys WHERE ns = ? AND name = ?`, key.NS, key.Name)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, corpuserrors.Wrap(corpuserrors.Internal, err, "re-reading interned key %s", key)
	}
	return types.AnnoKeyID(id), nil
}

// Insert upserts a node annotation. Permanent I/O failures are fatal to the
// caller's operation (§4.A "temporary I/O failures are retried at the
// storage layer; permanent failures are fatal to the query") — callers
// should treat a non-nil error here as unrecoverable for the current write.
func (d *DiskStore) Insert(item types.NodeID, key types.AnnoKey, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	keyID, err := d.internPersist(key)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(`INSERT INTO by_item(node_id, key_id, value) VALUES (?, ?, ?)
		ON CONFLICT(node_id, key_id) DO UPDATE SET value = excluded.value`,
		uint64(item), uint32(keyID), value); err != nil {
		return corpuserrors.Wrap(corpuserrors.Internal, err, "inserting annotation for node %d", item)
	}
	return nil
}

// GetValueForItem reads a single annotation value, retrying once on a
// transient sqlite busy error before surfacing it as an Internal error.
func (d *DiskStore) GetValueForItem(item types.NodeID, key types.AnnoKey) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keyID, ok := d.interner.lookup(key)
	if !ok {
		return "", false, nil
	}
	var value string
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = d.db.QueryRow(`SELECT value FROM by_item WHERE node_id = ? AND key_id = ?`, uint64(item), uint32(keyID)).Scan(&value)
		if err == nil || err == sql.ErrNoRows || !strings.Contains(err.Error(), "SQLITE_BUSY") {
			break
		}
	}
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, corpuserrors.Wrap(corpuserrors.Internal, err, "reading annotation for node %d", item)
	}
	return value, true, nil
}

// GetAnnotationsForItem returns every annotation attached to item, ordered
// by AnnoKeyID.
func (d *DiskStore) GetAnnotationsForItem(item types.NodeID) ([]types.Annotation, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rows, err := d.db.Query(`SELECT key_id, value FROM by_item WHERE node_id = ? ORDER BY key_id`, uint64(item))
	if err != nil {
		return nil, corpuserrors.Wrap(corpuserrors.Internal, err, "reading annotations for node %d", item)
	}
	defer rows.Close()
	var out []types.Annotation
	for rows.Next() {
		var keyID uint32
		var value string
		if err := rows.Scan(&keyID, &value); err != nil {
			return nil, corpuserrors.Wrap(corpuserrors.Internal, err, "scanning annotation row for node %d", item)
		}
		out = append(out, types.Annotation{Key: types.AnnoKeyID(keyID), Value: value})
	}
	return out, nil
}

// ExactAnnoSearch returns every (node, key) pair matching (ns, name, value).
func (d *DiskStore) ExactAnnoSearch(ns *string, name string, value types.ValueSearch) ([]ItemMatch[types.NodeID], error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keyIDs, err := d.resolveDiskKeys(ns, name)
	if err != nil {
		return nil, err
	}
	var out []ItemMatch[types.NodeID]
	for _, keyID := range keyIDs {
		rows, err := d.db.Query(`SELECT node_id, value FROM by_item WHERE key_id = ?`, uint32(keyID))
		if err != nil {
			return nil, corpuserrors.Wrap(corpuserrors.Internal, err, "searching annotations for key %d", keyID)
		}
		for rows.Next() {
			var nodeID uint64
			var val string
			if err := rows.Scan(&nodeID, &val); err != nil {
				rows.Close()
				return nil, corpuserrors.Wrap(corpuserrors.Internal, err, "scanning search row")
			}
			if value.Matches(val) {
				out = append(out, ItemMatch[types.NodeID]{Item: types.NodeID(nodeID), Key: keyID})
			}
		}
		rows.Close()
	}
	return out, nil
}

func (d *DiskStore) resolveDiskKeys(ns *string, name string) ([]types.AnnoKeyID, error) {
	if ns != nil {
		id, ok := d.interner.lookup(types.AnnoKey{NS: *ns, Name: name})
		if !ok {
			return nil, nil
		}
		return []types.AnnoKeyID{id}, nil
	}
	return d.interner.byNameAll(name), nil
}
