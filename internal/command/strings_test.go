package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCmdPing(t *testing.T) {
	assert.Equal(t, "+PONG\r\n", string(cmdPing(newTestContext("ping"))))
}

func TestCmdEcho(t *testing.T) {
	ctx := newTestContext("echo", "hi")
	assert.Equal(t, "$2\r\nhi\r\n", string(cmdEcho(ctx)))
}

func TestCmdSetAndGet(t *testing.T) {
	ctx := newTestContext("set", "k", "v")
	assert.Equal(t, "+OK\r\n", string(cmdSet(ctx)))

	getCtx := newTestContext("get", "k")
	getCtx.Keyspace = ctx.Keyspace
	assert.Equal(t, "v\r\n", string(cmdGet(getCtx)))
}

func TestCmdSetNX(t *testing.T) {
	ctx := newTestContext("setnx", "k", "v1")
	assert.Equal(t, "1\r\n", string(cmdSetNX(ctx)))

	ctx2 := newTestContext("setnx", "k", "v2")
	ctx2.Keyspace = ctx.Keyspace
	assert.Equal(t, "1\r\n", string(cmdSetNX(ctx2)), "setnx against an already-present key replies 1 (present)")

	v, _ := ctx.DB().Get("k")
	assert.Equal(t, []byte("v1"), v.Str, "setnx must not overwrite an existing key")
}

func TestCmdGet_AbsentAndWrongType(t *testing.T) {
	ctx := newTestContext("get", "missing")
	assert.Equal(t, "nil\r\n", string(cmdGet(ctx)))

	ctx2 := newTestContext("lpush", "k", "v")
	cmdLPush(ctx2)
	getCtx := newTestContext("get", "k")
	getCtx.Keyspace = ctx2.Keyspace
	assert.Equal(t, "-ERR Operation against a key holding the wrong kind of value\r\n", string(cmdGet(getCtx)))
}

func TestCmdExistsAndDel(t *testing.T) {
	ctx := newTestContext("set", "k", "v")
	cmdSet(ctx)

	existsCtx := newTestContext("exists", "k")
	existsCtx.Keyspace = ctx.Keyspace
	assert.Equal(t, "1\r\n", string(cmdExists(existsCtx)))

	delCtx := newTestContext("del", "k")
	delCtx.Keyspace = ctx.Keyspace
	assert.Equal(t, "1\r\n", string(cmdDel(delCtx)))
	assert.Equal(t, "0\r\n", string(cmdDel(delCtx)), "deleting an already-absent key replies 0")
}

func TestCmdIncrDecr(t *testing.T) {
	ctx := newTestContext("incr", "counter")
	assert.Equal(t, "1\r\n", string(cmdIncr(ctx)))

	ctx2 := newTestContext("incr", "counter")
	ctx2.Keyspace = ctx.Keyspace
	assert.Equal(t, "2\r\n", string(cmdIncr(ctx2)))

	ctx3 := newTestContext("decr", "counter")
	ctx3.Keyspace = ctx.Keyspace
	assert.Equal(t, "1\r\n", string(cmdDecr(ctx3)))
}

func TestCmdIncr_NonIntegerRepliesZeroWithoutMutation(t *testing.T) {
	setCtx := newTestContext("set", "k", "notanumber")
	cmdSet(setCtx)

	incrCtx := newTestContext("incr", "k")
	incrCtx.Keyspace = setCtx.Keyspace
	assert.Equal(t, "0\r\n", string(cmdIncr(incrCtx)))

	v, _ := setCtx.DB().Get("k")
	assert.Equal(t, []byte("notanumber"), v.Str, "a non-integer value must not be mutated by incr")
}

func TestCmdIncrBy_InvalidDeltaTreatedAsZero(t *testing.T) {
	setCtx := newTestContext("set", "k", "5")
	cmdSet(setCtx)

	ctx := newTestContext("incrby", "k", "notanumber")
	ctx.Keyspace = setCtx.Keyspace
	assert.Equal(t, "5\r\n", string(cmdIncrBy(ctx)))
}

func TestCmdKeys(t *testing.T) {
	ctx := newTestContext("set", "foo", "1")
	cmdSet(ctx)
	ctx2 := newTestContext("set", "foobar", "1")
	ctx2.Keyspace = ctx.Keyspace
	cmdSet(ctx2)

	keysCtx := newTestContext("keys", "foo*")
	keysCtx.Keyspace = ctx.Keyspace
	reply := string(cmdKeys(keysCtx))
	assert.Contains(t, reply, "foo")
	assert.Contains(t, reply, "foobar")

	emptyCtx := newTestContext("keys", "nomatch*")
	emptyCtx.Keyspace = ctx.Keyspace
	assert.Equal(t, "0\r\n", string(cmdKeys(emptyCtx)))
}

func TestCmdRandomKey_Empty(t *testing.T) {
	ctx := newTestContext("randomkey")
	assert.Equal(t, "nil\r\n", string(cmdRandomKey(ctx)))
}

func TestCmdRenameNX_InvertedSemantics(t *testing.T) {
	ctx := newTestContext("set", "a", "1")
	cmdSet(ctx)
	ctx2 := newTestContext("set", "b", "2")
	ctx2.Keyspace = ctx.Keyspace
	cmdSet(ctx2)

	renameCtx := newTestContext("renamenx", "a", "b")
	renameCtx.Keyspace = ctx.Keyspace
	assert.Equal(t, "1\r\n", string(cmdRenameNX(renameCtx)), "renamenx replies 1 when destination already exists")
}

func TestCmdRename_MissingSource(t *testing.T) {
	ctx := newTestContext("rename", "nope", "dst")
	assert.Equal(t, "0\r\n", string(cmdRename(ctx)))
}
