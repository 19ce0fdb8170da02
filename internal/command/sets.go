package command

import (
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/protocol"
)

func setCommands() []Command {
	return []Command{
		{Name: "sadd", Arity: 3, Kind: protocol.KindBulk, Fn: cmdSAdd},
		{Name: "srem", Arity: 3, Kind: protocol.KindBulk, Fn: cmdSRem},
		{Name: "scard", Arity: 2, Kind: protocol.KindInline, Fn: cmdSCard},
		{Name: "sismember", Arity: 3, Kind: protocol.KindBulk, Fn: cmdSIsMember},
		{Name: "sinter", Arity: -2, Kind: protocol.KindInline, Fn: cmdSInter},
		{Name: "sinterstore", Arity: -3, Kind: protocol.KindInline, Fn: cmdSInterStore},
		{Name: "smembers", Arity: 2, Kind: protocol.KindInline, Fn: cmdSMembers},
	}
}

func setAt(ctx *Context, key string) (*keyspace.Value, bool, []byte) {
	db := ctx.DB()
	v, ok := db.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Kind != keyspace.KindSet {
		return nil, false, wrongType()
	}
	return &v, true, nil
}

func cmdSAdd(ctx *Context) []byte {
	key, member := string(ctx.Argv[1]), string(ctx.Argv[2])
	db := ctx.DB()

	v, ok := db.Get(key)
	if !ok {
		v = keyspace.NewSet()
	} else if v.Kind != keyspace.KindSet {
		return wrongType()
	}
	v.Set[member] = struct{}{}
	db.Set(key, v)
	return protocol.One
}

func cmdSRem(ctx *Context) []byte {
	key, member := string(ctx.Argv[1]), string(ctx.Argv[2])
	v, present, errReply := setAt(ctx, key)
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Zero
	}
	if _, ok := v.Set[member]; !ok {
		return protocol.Zero
	}
	delete(v.Set, member)
	ctx.DB().Set(key, *v)
	return protocol.One
}

func cmdSCard(ctx *Context) []byte {
	v, present, errReply := setAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Zero
	}
	return protocol.Integer(int64(len(v.Set)))
}

func cmdSIsMember(ctx *Context) []byte {
	v, present, errReply := setAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Zero
	}
	_, ok := v.Set[string(ctx.Argv[2])]
	return protocol.Bool(ok)
}

// sinterGeneric mirrors original_source/pedis/pedis.py's _sinterGeneric:
// any named key absent from the current DB fails the whole operation with
// an error reply rather than treating it as an empty set.
func sinterGeneric(ctx *Context, keys []string) (map[string]struct{}, []byte) {
	var inter map[string]struct{}
	for _, key := range keys {
		v, present, errReply := setAt(ctx, key)
		if errReply != nil {
			return nil, errReply
		}
		if !present {
			return nil, protocol.Err("no such key: " + key)
		}
		if inter == nil {
			inter = make(map[string]struct{}, len(v.Set))
			for m := range v.Set {
				inter[m] = struct{}{}
			}
			continue
		}
		for m := range inter {
			if _, ok := v.Set[m]; !ok {
				delete(inter, m)
			}
		}
	}
	return inter, nil
}

func cmdSInter(ctx *Context) []byte {
	keys := make([]string, 0, len(ctx.Argv)-1)
	for _, a := range ctx.Argv[1:] {
		keys = append(keys, string(a))
	}
	inter, errReply := sinterGeneric(ctx, keys)
	if errReply != nil {
		return errReply
	}
	return protocol.Raw(joinMembers(inter))
}

func cmdSInterStore(ctx *Context) []byte {
	dst := string(ctx.Argv[1])
	keys := make([]string, 0, len(ctx.Argv)-2)
	for _, a := range ctx.Argv[2:] {
		keys = append(keys, string(a))
	}
	inter, errReply := sinterGeneric(ctx, keys)
	if errReply != nil {
		return errReply
	}
	result := keyspace.Value{Kind: keyspace.KindSet, Set: inter}
	if result.Set == nil {
		result.Set = make(map[string]struct{})
	}
	ctx.DB().Set(dst, result)
	return protocol.OK
}

func cmdSMembers(ctx *Context) []byte {
	v, present, errReply := setAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present || len(v.Set) == 0 {
		return protocol.Zero
	}
	return protocol.Raw(joinMembers(v.Set))
}

func joinMembers(members map[string]struct{}) []byte {
	out := make([]byte, 0, 16*len(members))
	first := true
	for m := range members {
		if !first {
			out = append(out, ' ')
		}
		first = false
		out = append(out, m...)
	}
	return out
}
