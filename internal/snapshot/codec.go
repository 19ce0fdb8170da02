package snapshot

import (
	"github.com/ehrlich-b/pedis/internal/keyspace"
)

// valueTag selects which of a snapshotEntry's Str/List/Set fields is
// populated, per SPEC_FULL.md §4.4's SnapshotEntry{Key, Tag, Str, List, Set}.
type valueTag uint8

const (
	tagString valueTag = iota
	tagList
	tagSet
)

// snapshotFile is the XDR envelope written to the dump file. Every field
// is exported so github.com/rasky/go-xdr/xdr2's reflection-based
// Marshal/Unmarshal can walk the struct; field order is the wire order.
type snapshotFile struct {
	DBCount   uint32
	Databases []snapshotDB
}

type snapshotDB struct {
	Index   uint32
	Entries []snapshotEntry
}

type snapshotEntry struct {
	Key  []byte
	Tag  uint8
	Str  []byte
	List [][]byte
	Set  [][]byte
}

// encodeKeyspace flattens a Keyspace into the XDR envelope shape. Iteration
// order within a Database is whatever Database.Range yields; the round-trip
// property (spec.md §8) only requires value-equality after a load, not
// byte-for-byte key ordering.
func encodeKeyspace(ks *keyspace.Keyspace) snapshotFile {
	out := snapshotFile{
		DBCount:   uint32(ks.Len()),
		Databases: make([]snapshotDB, ks.Len()),
	}
	for i := 0; i < ks.Len(); i++ {
		db, _ := ks.DB(i)
		entries := make([]snapshotEntry, 0, db.Len())
		db.Range(func(key string, v keyspace.Value) {
			entries = append(entries, encodeValue(key, v))
		})
		out.Databases[i] = snapshotDB{Index: uint32(i), Entries: entries}
	}
	return out
}

func encodeValue(key string, v keyspace.Value) snapshotEntry {
	e := snapshotEntry{Key: []byte(key)}
	switch v.Kind {
	case keyspace.KindString:
		e.Tag = uint8(tagString)
		e.Str = v.Str
	case keyspace.KindList:
		e.Tag = uint8(tagList)
		e.List = v.List
	case keyspace.KindSet:
		e.Tag = uint8(tagSet)
		e.Set = setToSlice(v.Set)
	}
	return e
}

func setToSlice(set map[string]struct{}) [][]byte {
	out := make([][]byte, 0, len(set))
	for member := range set {
		out = append(out, []byte(member))
	}
	return out
}

// decodeKeyspace rebuilds a Keyspace from a parsed XDR envelope. The
// resulting Keyspace always has exactly DBCount databases, matching
// spec.md §3's fixed-length invariant, regardless of the dbnum the
// running process was started with; callers reconcile the two sizes.
func decodeKeyspace(f snapshotFile) *keyspace.Keyspace {
	ks := keyspace.New(int(f.DBCount))
	for _, sdb := range f.Databases {
		db, err := ks.DB(int(sdb.Index))
		if err != nil {
			continue
		}
		for _, e := range sdb.Entries {
			db.Set(string(e.Key), decodeValue(e))
		}
	}
	return ks
}

func decodeValue(e snapshotEntry) keyspace.Value {
	switch valueTag(e.Tag) {
	case tagList:
		return keyspace.NewList(e.List...)
	case tagSet:
		return keyspace.NewSet(e.Set...)
	default:
		return keyspace.NewString(e.Str)
	}
}
