// Package command implements the Command Registry and every handler named
// in spec.md §4.3, grouped the way original_source/pedis/pedis.py groups
// them: strings, lists, sets, and keyspace/admin.
package command

import (
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/protocol"
)

// Persistence is the narrow slice of the Snapshotter a handler needs for
// save/bgsave/lastsave/shutdown. Defined here (not imported from
// internal/snapshot) so command has no dependency on the snapshot
// package; internal/snapshot.Snapshotter satisfies it structurally.
type Persistence interface {
	Save() error
	BGSave() error
	LastSave() int64
	Shutdown() (saved bool)
}

// Context is the per-invocation state a Handler operates on. Handlers run
// synchronously to completion on the reactor goroutine (spec.md §5) and
// must not retain a Context past their return.
type Context struct {
	// Keyspace is the full database array; handlers that cross databases
	// (move, select) need it alongside DB.
	Keyspace *keyspace.Keyspace

	// DBIndex is the Session's currently bound database index.
	DBIndex int

	// Select rebinds the calling Session's database index. Only the
	// select handler calls this.
	Select func(index int) error

	// Argv is the full argument vector including the command name at
	// Argv[0].
	Argv [][]byte

	// Persistence is used only by admin.go's save/bgsave/lastsave/shutdown
	// handlers, which do not check it for nil; every other handler
	// ignores it.
	Persistence Persistence

	// There is no quit field: the Session handles quit itself before a
	// Context is built, so quit never reaches the Registry or a handler.

	// Exit terminates the process with the given code, used by shutdown.
	// Injected for testability instead of calling os.Exit directly.
	Exit func(code int)
}

// DB resolves the Session's currently bound Database. Handlers that read
// or write the bound database call this.
func (c *Context) DB() *keyspace.Database {
	db, err := c.Keyspace.DB(c.DBIndex)
	if err != nil {
		// DBIndex is only ever set via Select, which validates range, so
		// this can only happen if a Context is misused.
		panic(err)
	}
	return db
}

// wrongType builds the dedicated WRONGTYPE reply used by every typed
// command whose value doesn't match its expected kind.
func wrongType() []byte {
	return protocol.ErrWrongType
}
