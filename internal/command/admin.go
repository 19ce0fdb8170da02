package command

import (
	"strconv"

	"github.com/ehrlich-b/pedis/internal/protocol"
)

func adminCommands() []Command {
	return []Command{
		{Name: "select", Arity: 2, Kind: protocol.KindInline, Fn: cmdSelect},
		{Name: "dbsize", Arity: 1, Kind: protocol.KindInline, Fn: cmdDBSize},
		{Name: "move", Arity: 3, Kind: protocol.KindInline, Fn: cmdMove},
		{Name: "flushdb", Arity: 1, Kind: protocol.KindInline, Fn: cmdFlushDB},
		{Name: "flushall", Arity: 1, Kind: protocol.KindInline, Fn: cmdFlushAll},
		{Name: "save", Arity: 1, Kind: protocol.KindInline, Fn: cmdSave},
		{Name: "bgsave", Arity: 1, Kind: protocol.KindInline, Fn: cmdBGSave},
		{Name: "lastsave", Arity: 1, Kind: protocol.KindInline, Fn: cmdLastSave},
		{Name: "shutdown", Arity: 1, Kind: protocol.KindInline, Fn: cmdShutdown},
	}
}

func cmdSelect(ctx *Context) []byte {
	idx, err := strconv.Atoi(string(ctx.Argv[1]))
	if err != nil {
		return protocol.ErrInvalidDBIndex
	}
	if err := ctx.Select(idx); err != nil {
		return protocol.ErrInvalidDBIndex
	}
	return protocol.OK
}

func cmdDBSize(ctx *Context) []byte {
	return protocol.Integer(int64(ctx.DB().Len()))
}

// cmdMove moves key from the session's current DB to the target DB index,
// only if it is absent from the destination. See SPEC_FULL.md §4.3: 1 on
// success; 0 if the key is absent from the source, already present in the
// destination, or the target index is out of range.
func cmdMove(ctx *Context) []byte {
	key := string(ctx.Argv[1])
	targetIdx, err := strconv.Atoi(string(ctx.Argv[2]))
	if err != nil {
		return protocol.Zero
	}
	targetDB, err := ctx.Keyspace.DB(targetIdx)
	if err != nil {
		return protocol.Zero
	}
	srcDB := ctx.DB()

	v, ok := srcDB.Get(key)
	if !ok {
		return protocol.Zero
	}
	if targetDB.Exists(key) {
		return protocol.Zero
	}
	srcDB.Delete(key)
	targetDB.Set(key, v)
	return protocol.One
}

func cmdFlushDB(ctx *Context) []byte {
	ctx.DB().Clear()
	return protocol.OK
}

func cmdFlushAll(ctx *Context) []byte {
	for i := 0; i < ctx.Keyspace.Len(); i++ {
		db, _ := ctx.Keyspace.DB(i)
		db.Clear()
	}
	return protocol.OK
}

func cmdSave(ctx *Context) []byte {
	if err := ctx.Persistence.Save(); err != nil {
		return protocol.ErrGeneric
	}
	return protocol.OK
}

func cmdBGSave(ctx *Context) []byte {
	if err := ctx.Persistence.BGSave(); err != nil {
		return protocol.ErrBgsaveInProgress
	}
	return protocol.OK
}

func cmdLastSave(ctx *Context) []byte {
	return protocol.Integer(ctx.Persistence.LastSave())
}

func cmdShutdown(ctx *Context) []byte {
	saved := ctx.Persistence.Shutdown()
	if !saved {
		return protocol.ErrShutdownSaveFailed
	}
	if ctx.Exit != nil {
		ctx.Exit(0)
	}
	return nil
}
