package command

import (
	"strconv"

	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/protocol"
)

func listCommands() []Command {
	return []Command{
		{Name: "lpush", Arity: 3, Kind: protocol.KindBulk, Fn: cmdLPush},
		{Name: "rpush", Arity: 3, Kind: protocol.KindBulk, Fn: cmdRPush},
		{Name: "lpop", Arity: 2, Kind: protocol.KindInline, Fn: cmdLPop},
		{Name: "rpop", Arity: 2, Kind: protocol.KindInline, Fn: cmdRPop},
		{Name: "llen", Arity: 2, Kind: protocol.KindInline, Fn: cmdLLen},
		{Name: "lindex", Arity: 3, Kind: protocol.KindInline, Fn: cmdLIndex},
		{Name: "lrange", Arity: 4, Kind: protocol.KindInline, Fn: cmdLRange},
		{Name: "ltrim", Arity: 4, Kind: protocol.KindBulk, Fn: cmdLTrim},
		{Name: "lset", Arity: 4, Kind: protocol.KindBulk, Fn: cmdLSet},
		{Name: "lrem", Arity: 4, Kind: protocol.KindBulk, Fn: cmdLRem},
	}
}

// listAt fetches key's value, reporting wrongType via the second return
// when present but not a List. Absence is reported via ok=false with a
// nil error, distinct from a type mismatch.
func listAt(ctx *Context, key string) (*keyspace.Value, bool, []byte) {
	db := ctx.DB()
	v, ok := db.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Kind != keyspace.KindList {
		return nil, false, wrongType()
	}
	return &v, true, nil
}

func pushGeneric(ctx *Context, head bool) []byte {
	key := string(ctx.Argv[1])
	item := append([]byte(nil), ctx.Argv[2]...)
	db := ctx.DB()

	v, ok := db.Get(key)
	if !ok {
		v = keyspace.NewList()
	} else if v.Kind != keyspace.KindList {
		return wrongType()
	}

	if head {
		v.List = append([][]byte{item}, v.List...)
	} else {
		v.List = append(v.List, item)
	}
	db.Set(key, v)
	return protocol.OK
}

func cmdLPush(ctx *Context) []byte { return pushGeneric(ctx, true) }
func cmdRPush(ctx *Context) []byte { return pushGeneric(ctx, false) }

func popGeneric(ctx *Context, head bool) []byte {
	key := string(ctx.Argv[1])
	v, present, errReply := listAt(ctx, key)
	if errReply != nil {
		return errReply
	}
	if !present || len(v.List) == 0 {
		return protocol.Nil
	}

	var item []byte
	if head {
		item = v.List[0]
		v.List = v.List[1:]
	} else {
		item = v.List[len(v.List)-1]
		v.List = v.List[:len(v.List)-1]
	}
	ctx.DB().Set(key, *v)
	return protocol.Raw(item)
}

func cmdLPop(ctx *Context) []byte { return popGeneric(ctx, true) }
func cmdRPop(ctx *Context) []byte { return popGeneric(ctx, false) }

func cmdLLen(ctx *Context) []byte {
	v, present, errReply := listAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Nil
	}
	return protocol.Integer(int64(len(v.List)))
}

// normalizeIndex resolves a possibly-negative list index (counting from
// the tail) to its forward-counting position, per spec.md §4.3's "negative
// indices count from tail".
func normalizeIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

func cmdLIndex(ctx *Context) []byte {
	v, present, errReply := listAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Nil
	}
	idx, err := strconv.Atoi(string(ctx.Argv[2]))
	if err != nil {
		return protocol.Nil
	}
	idx = normalizeIndex(idx, len(v.List))
	if idx < 0 || idx >= len(v.List) {
		return protocol.Nil
	}
	return protocol.Raw(v.List[idx])
}

// sliceRange clamps [start, end) to a valid half-open slice range over a
// sequence of length n, per spec.md §4.3's "standard sequence-slice
// semantics" (Python-style: out-of-range bounds clamp rather than error).
func sliceRange(start, end, n int) (int, int) {
	start = normalizeIndex(start, n)
	end = normalizeIndex(end, n)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}

func cmdLRange(ctx *Context) []byte {
	v, present, errReply := listAt(ctx, string(ctx.Argv[1]))
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Nil
	}
	start, serr := strconv.Atoi(string(ctx.Argv[2]))
	end, eerr := strconv.Atoi(string(ctx.Argv[3]))
	if serr != nil || eerr != nil {
		return protocol.Nil
	}
	start, end = sliceRange(start, end, len(v.List))
	slice := v.List[start:end]
	joined := joinElements(slice)
	return protocol.Raw(joined)
}

func joinElements(elems [][]byte) []byte {
	out := make([]byte, 0, 16*len(elems))
	for i, e := range elems {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, e...)
	}
	return out
}

func cmdLTrim(ctx *Context) []byte {
	key := string(ctx.Argv[1])
	v, present, errReply := listAt(ctx, key)
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Nil
	}
	start, serr := strconv.Atoi(string(ctx.Argv[2]))
	end, eerr := strconv.Atoi(string(ctx.Argv[3]))
	if serr != nil || eerr != nil {
		return protocol.Nil
	}
	start, end = sliceRange(start, end, len(v.List))
	v.List = append([][]byte(nil), v.List[start:end]...)
	ctx.DB().Set(key, *v)
	return protocol.OK
}

func cmdLSet(ctx *Context) []byte {
	key := string(ctx.Argv[1])
	v, present, errReply := listAt(ctx, key)
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Nil
	}
	idx, err := strconv.Atoi(string(ctx.Argv[2]))
	if err != nil {
		return protocol.Nil
	}
	idx = normalizeIndex(idx, len(v.List))
	if idx < 0 || idx >= len(v.List) {
		return protocol.ErrIndexOutOfRange
	}
	v.List[idx] = append([]byte(nil), ctx.Argv[3]...)
	ctx.DB().Set(key, *v)
	return protocol.OK
}

func cmdLRem(ctx *Context) []byte {
	key := string(ctx.Argv[1])
	v, present, errReply := listAt(ctx, key)
	if errReply != nil {
		return errReply
	}
	if !present {
		return protocol.Zero
	}
	count, err := strconv.Atoi(string(ctx.Argv[2]))
	if err != nil {
		count = 0
	}
	target := ctx.Argv[3]

	var kept [][]byte
	removed := 0
	switch {
	case count == 0:
		for _, e := range v.List {
			if string(e) == string(target) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
	case count > 0:
		for _, e := range v.List {
			if removed < count && string(e) == string(target) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
	default:
		limit := -count
		for i := len(v.List) - 1; i >= 0; i-- {
			e := v.List[i]
			if removed < limit && string(e) == string(target) {
				removed++
				continue
			}
			kept = append([][]byte{e}, kept...)
		}
	}
	v.List = kept
	ctx.DB().Set(key, *v)
	return protocol.Integer(int64(removed))
}
