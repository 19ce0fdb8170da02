package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/reactor"
)

func newTestSnapshotter(t *testing.T, ks *keyspace.Keyspace) (*Snapshotter, string) {
	t.Helper()
	r := reactor.New(nil)
	path := filepath.Join(t.TempDir(), "dump.pdb")
	s, err := New(r, ks, path, nil, nil)
	require.NoError(t, err)
	s.nowFn = func() int64 { return 42 }
	t.Cleanup(func() { s.Close() })
	return s, path
}

func seedKeyspace() *keyspace.Keyspace {
	ks := keyspace.New(2)
	db0, _ := ks.DB(0)
	db0.Set("str", keyspace.NewString([]byte("hello")))
	db0.Set("list", keyspace.NewList([]byte("a"), []byte("b")))
	db0.Set("set", keyspace.NewSet([]byte("x"), []byte("y")))
	db1, _ := ks.DB(1)
	db1.Set("other", keyspace.NewString([]byte("db1")))
	return ks
}

func TestSave_WritesLoadableDump(t *testing.T) {
	ks := seedKeyspace()
	s, path := newTestSnapshotter(t, ks)

	require.NoError(t, s.Save())
	assert.Equal(t, int64(42), s.LastSave())

	loaded, err := Load(path, 2)
	require.NoError(t, err)
	assert.True(t, ks.Equal(loaded), "round-tripped keyspace must be value-equal to the original")
}

func TestLoad_MissingFileReturnsEmptyKeyspace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdb")
	ks, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ks.Len())
	assert.Equal(t, 0, mustDB(t, ks, 0).Len())
}

func TestLoad_ReconcilesDifferentDBCount(t *testing.T) {
	ks := seedKeyspace()
	s, path := newTestSnapshotter(t, ks)
	require.NoError(t, s.Save())

	loaded, err := Load(path, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	db0, _ := loaded.DB(0)
	assert.True(t, db0.Exists("str"))
}

func TestBGSave_ClonesAndSignalsCompletionOverSelfPipe(t *testing.T) {
	ks := seedKeyspace()
	s, path := newTestSnapshotter(t, ks)

	require.NoError(t, s.BGSave())
	assert.True(t, s.bgsaveRunning)

	waitUntil(t, 2*time.Second, func() bool {
		s.Reap()
		return !s.bgsaveRunning
	})

	assert.Equal(t, int64(42), s.LastSave())
	_, err := Load(path, 2)
	assert.NoError(t, err)
}

func TestBGSave_RejectsConcurrentRun(t *testing.T) {
	ks := seedKeyspace()
	s, _ := newTestSnapshotter(t, ks)

	require.NoError(t, s.BGSave())
	err := s.BGSave()
	require.Error(t, err)

	waitUntil(t, 2*time.Second, func() bool {
		s.Reap()
		return !s.bgsaveRunning
	})
}

func TestShutdown_ReportsSaveOutcome(t *testing.T) {
	ks := seedKeyspace()
	s, _ := newTestSnapshotter(t, ks)
	assert.True(t, s.Shutdown())
}

func mustDB(t *testing.T, ks *keyspace.Keyspace, i int) *keyspace.Database {
	t.Helper()
	db, err := ks.DB(i)
	require.NoError(t, err)
	return db
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
