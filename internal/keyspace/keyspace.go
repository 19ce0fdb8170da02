package keyspace

import "fmt"

// Keyspace is an ordered sequence of exactly N Databases, indexed 0..N-1.
// Per spec.md §3, the length is fixed at process start — there is no
// resize operation.
type Keyspace struct {
	dbs []*Database
}

// New constructs a Keyspace of n empty Databases.
func New(n int) *Keyspace {
	dbs := make([]*Database, n)
	for i := range dbs {
		dbs[i] = NewDatabase()
	}
	return &Keyspace{dbs: dbs}
}

// Len returns N, the fixed database count.
func (k *Keyspace) Len() int {
	return len(k.dbs)
}

// DB returns the Database at index, or an error if index is out of range.
func (k *Keyspace) DB(index int) (*Database, error) {
	if index < 0 || index >= len(k.dbs) {
		return nil, fmt.Errorf("keyspace: index %d out of range [0,%d)", index, len(k.dbs))
	}
	return k.dbs[index], nil
}

// Clone produces a deep structural copy of the entire Keyspace. Per
// spec.md §9 (no process fork() in Go), this is taken synchronously on the
// reactor goroutine and handed to the background save goroutine, which
// must treat it as immutable — see internal/snapshot.
func (k *Keyspace) Clone() *Keyspace {
	out := make([]*Database, len(k.dbs))
	for i, db := range k.dbs {
		out[i] = db.Clone()
	}
	return &Keyspace{dbs: out}
}

// Equal reports whether two Keyspaces hold the same databases under
// per-variant Value equality, independent of iteration order — used by
// the snapshot round-trip property (spec.md §8).
func (k *Keyspace) Equal(other *Keyspace) bool {
	if k.Len() != other.Len() {
		return false
	}
	for i, db := range k.dbs {
		od := other.dbs[i]
		if db.Len() != od.Len() {
			return false
		}
		equal := true
		db.Range(func(key string, v Value) {
			ov, ok := od.Get(key)
			if !ok || !v.Equal(ov) {
				equal = false
			}
		})
		if !equal {
			return false
		}
	}
	return true
}
