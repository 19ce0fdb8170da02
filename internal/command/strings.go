package command

import (
	"strconv"

	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/protocol"
)

func stringCommands() []Command {
	return []Command{
		{Name: "ping", Arity: 1, Kind: protocol.KindInline, Fn: cmdPing},
		{Name: "echo", Arity: 2, Kind: protocol.KindBulk, Fn: cmdEcho},
		{Name: "set", Arity: 3, Kind: protocol.KindBulk, Fn: cmdSet},
		{Name: "setnx", Arity: 3, Kind: protocol.KindBulk, Fn: cmdSetNX},
		{Name: "get", Arity: 2, Kind: protocol.KindInline, Fn: cmdGet},
		{Name: "exists", Arity: 2, Kind: protocol.KindInline, Fn: cmdExists},
		{Name: "del", Arity: 2, Kind: protocol.KindInline, Fn: cmdDel},
		{Name: "incr", Arity: 2, Kind: protocol.KindInline, Fn: cmdIncr},
		{Name: "decr", Arity: 2, Kind: protocol.KindInline, Fn: cmdDecr},
		{Name: "incrby", Arity: 3, Kind: protocol.KindInline, Fn: cmdIncrBy},
		{Name: "decrby", Arity: 3, Kind: protocol.KindInline, Fn: cmdDecrBy},
		{Name: "keys", Arity: 2, Kind: protocol.KindInline, Fn: cmdKeys},
		{Name: "randomkey", Arity: 1, Kind: protocol.KindInline, Fn: cmdRandomKey},
		{Name: "rename", Arity: 3, Kind: protocol.KindInline, Fn: cmdRename},
		{Name: "renamenx", Arity: 3, Kind: protocol.KindInline, Fn: cmdRenameNX},
	}
}

func cmdPing(ctx *Context) []byte {
	return protocol.Pong
}

func cmdEcho(ctx *Context) []byte {
	return protocol.Bulk(ctx.Argv[1])
}

func setGeneric(ctx *Context, nx bool) []byte {
	key, val := string(ctx.Argv[1]), ctx.Argv[2]
	db := ctx.DB()

	if nx && db.Exists(key) {
		return protocol.One
	}
	db.Set(key, keyspace.NewString(append([]byte(nil), val...)))
	if nx {
		return protocol.One
	}
	return protocol.OK
}

func cmdSet(ctx *Context) []byte   { return setGeneric(ctx, false) }
func cmdSetNX(ctx *Context) []byte { return setGeneric(ctx, true) }

func cmdGet(ctx *Context) []byte {
	key := string(ctx.Argv[1])
	v, ok := ctx.DB().Get(key)
	if !ok {
		return protocol.Nil
	}
	if err := v.CheckKind("GET", keyspace.KindString); err != nil {
		return wrongType()
	}
	return protocol.Raw(v.Str)
}

func cmdExists(ctx *Context) []byte {
	return protocol.Bool(ctx.DB().Exists(string(ctx.Argv[1])))
}

func cmdDel(ctx *Context) []byte {
	return protocol.Bool(ctx.DB().Delete(string(ctx.Argv[1])))
}

// incrDecr mirrors original_source/pedis/pedis.py's _incrDecr: an absent
// key is treated as 0 and is created holding the result; a present but
// non-integer value replies 0 without mutation (spec.md §9 open question,
// kept as-is).
func incrDecr(ctx *Context, delta int64) []byte {
	key := string(ctx.Argv[1])
	db := ctx.DB()

	var n int64
	if v, ok := db.Get(key); ok {
		if v.Kind != keyspace.KindString {
			return wrongType()
		}
		parsed, err := strconv.ParseInt(string(v.Str), 10, 64)
		if err != nil {
			return protocol.Zero
		}
		n = parsed
	}
	n += delta
	db.Set(key, keyspace.NewString([]byte(strconv.FormatInt(n, 10))))
	return protocol.Integer(n)
}

func cmdIncr(ctx *Context) []byte { return incrDecr(ctx, 1) }
func cmdDecr(ctx *Context) []byte { return incrDecr(ctx, -1) }

func cmdIncrBy(ctx *Context) []byte {
	delta, err := strconv.ParseInt(string(ctx.Argv[2]), 10, 64)
	if err != nil {
		delta = 0
	}
	return incrDecr(ctx, delta)
}

func cmdDecrBy(ctx *Context) []byte {
	delta, err := strconv.ParseInt(string(ctx.Argv[2]), 10, 64)
	if err != nil {
		delta = 0
	}
	return incrDecr(ctx, -delta)
}

func cmdKeys(ctx *Context) []byte {
	matches := ctx.DB().Keys(string(ctx.Argv[1]))
	if len(matches) == 0 {
		return protocol.Zero
	}
	joined := matches[0]
	for _, k := range matches[1:] {
		joined += " " + k
	}
	return protocol.Raw([]byte(joined))
}

func cmdRandomKey(ctx *Context) []byte {
	k, ok := ctx.DB().RandomKey()
	if !ok {
		return protocol.Nil
	}
	return protocol.Raw([]byte(k))
}

func renameGeneric(ctx *Context, nx bool) []byte {
	oldName, newName := string(ctx.Argv[1]), string(ctx.Argv[2])
	db := ctx.DB()

	if nx && db.Exists(newName) {
		// Inverted convention kept from original_source: renamenx reports
		// failure (destination already exists) as 1\r\n, not 0\r\n.
		return protocol.One
	}

	v, ok := db.Get(oldName)
	if !ok {
		return protocol.Zero
	}
	db.Delete(oldName)
	db.Set(newName, v)
	return protocol.OK
}

func cmdRename(ctx *Context) []byte   { return renameGeneric(ctx, false) }
func cmdRenameNX(ctx *Context) []byte { return renameGeneric(ctx, true) }
