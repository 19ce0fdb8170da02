package keyspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabase_SetGetDeleteExists(t *testing.T) {
	db := NewDatabase()
	assert.False(t, db.Exists("k"))

	db.Set("k", NewString([]byte("v")))
	assert.True(t, db.Exists("k"))

	v, ok := db.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v.Str)

	assert.True(t, db.Delete("k"))
	assert.False(t, db.Delete("k"), "deleting twice must report false the second time")
	assert.False(t, db.Exists("k"))
}

func TestDatabase_LenAndClear(t *testing.T) {
	db := NewDatabase()
	db.Set("a", NewString([]byte("1")))
	db.Set("b", NewString([]byte("2")))
	assert.Equal(t, 2, db.Len())

	db.Clear()
	assert.Equal(t, 0, db.Len())
}

func TestDatabase_KeysGlob(t *testing.T) {
	db := NewDatabase()
	for _, k := range []string{"foo", "foobar", "bar", "baz"} {
		db.Set(k, NewString([]byte("x")))
	}

	assert.ElementsMatch(t, []string{"foo", "foobar"}, db.Keys("foo*"))
	assert.ElementsMatch(t, []string{"bar", "baz"}, db.Keys("ba?"))
	assert.ElementsMatch(t, []string{"bar", "baz"}, db.Keys("ba[rz]"))
	assert.ElementsMatch(t, []string{"foo"}, db.Keys("fo[^rz]"))
	assert.ElementsMatch(t, []string{"foo", "foobar", "bar", "baz"}, db.Keys("*"))
	assert.Empty(t, db.Keys("nope*"))
}

func TestDatabase_RandomKey(t *testing.T) {
	db := NewDatabase()
	_, ok := db.RandomKey()
	assert.False(t, ok, "empty database has no random key")

	db.Set("only", NewString([]byte("v")))
	k, ok := db.RandomKey()
	assert.True(t, ok)
	assert.Equal(t, "only", k)
}

func TestDatabase_CloneIsIndependent(t *testing.T) {
	db := NewDatabase()
	db.Set("k", NewString([]byte("v")))

	clone := db.Clone()
	clone.Set("k", NewString([]byte("mutated")))

	orig, _ := db.Get("k")
	assert.Equal(t, []byte("v"), orig.Str, "mutating the clone must not affect the original")
}

func TestGlob(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*", "anything", true},
		{"", "", true},
		{"", "x", false},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h[ae]llo", "hello", true},
		{"h[ae]llo", "hillo", false},
		{"h[^e]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-c]t", "hbt", true},
		{"h[a-c]t", "hdt", false},
		{"*foo*", "xxfooyy", true},
	}
	for _, c := range cases {
		if got := Glob(c.pattern, c.name); got != c.want {
			t.Errorf("Glob(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}
