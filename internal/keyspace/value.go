// Package keyspace holds the typed data model shared by every command
// handler and the snapshotter: Value, Database, and Keyspace. Per spec.md
// §5, every mutation here runs on the reactor goroutine only — none of
// these types do their own locking.
package keyspace

import "github.com/ehrlich-b/pedis/internal/errs"

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindList
	KindSet
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Value is a tagged union over string, list, and set, mirroring spec.md
// §3's "tagged variant over {String, List, Set}". Only the field matching
// Kind is meaningful.
type Value struct {
	Kind ValueKind
	Str  []byte
	List [][]byte
	Set  map[string]struct{}
}

// NewString builds a KindString Value.
func NewString(b []byte) Value {
	return Value{Kind: KindString, Str: b}
}

// NewList builds a KindList Value from the given elements.
func NewList(elems ...[]byte) Value {
	return Value{Kind: KindList, List: elems}
}

// NewSet builds a KindSet Value from the given members.
func NewSet(members ...[]byte) Value {
	s := make(map[string]struct{}, len(members))
	for _, m := range members {
		s[string(m)] = struct{}{}
	}
	return Value{Kind: KindSet, Set: s}
}

// CheckKind returns pedis.ErrWrongType, wrapped with op, if v is not of
// kind want. Callers must check this before mutating, per spec.md §3's "no
// mutation of state" guarantee on a type mismatch.
func (v Value) CheckKind(op string, want ValueKind) error {
	if v.Kind != want {
		return errs.New(op, errs.WrongType, "Operation against a key holding the wrong kind of value", nil)
	}
	return nil
}

// Clone returns a deep structural copy of v so a snapshot clone never
// aliases a live Database's backing arrays/maps.
func (v Value) Clone() Value {
	out := Value{Kind: v.Kind}
	if v.Str != nil {
		out.Str = append([]byte(nil), v.Str...)
	}
	if v.List != nil {
		out.List = make([][]byte, len(v.List))
		for i, e := range v.List {
			out.List[i] = append([]byte(nil), e...)
		}
	}
	if v.Set != nil {
		out.Set = make(map[string]struct{}, len(v.Set))
		for m := range v.Set {
			out.Set[m] = struct{}{}
		}
	}
	return out
}

// Equal reports whether two Values hold the same kind and content,
// independent of internal map/slice ordering — used by the snapshot
// round-trip property (spec.md §8: "S ≡ S′ under per-variant equality").
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return string(v.Str) == string(other.Str)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if string(v.List[i]) != string(other.List[i]) {
				return false
			}
		}
		return true
	case KindSet:
		if len(v.Set) != len(other.Set) {
			return false
		}
		for m := range v.Set {
			if _, ok := other.Set[m]; !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
