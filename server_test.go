package pedis

import (
	"sync/atomic"
	"testing"

	"github.com/ehrlich-b/pedis/internal/keyspace"
)

var testPortCounter atomic.Int32

func nextTestPort() int {
	return 18000 + int(testPortCounter.Add(1))
}

func TestServer_PingPong(t *testing.T) {
	ts := StartTestServer(t, nextTestPort())
	defer ts.Close()

	c := ts.Dial()
	defer c.Close()

	if got := c.SendCommand("ping"); got != "+PONG\r\n" {
		t.Errorf("expected +PONG\\r\\n, got %q", got)
	}
}

func TestServer_SetGetAcrossCommands(t *testing.T) {
	ts := StartTestServer(t, nextTestPort())
	defer ts.Close()

	c := ts.Dial()
	defer c.Close()

	if got := c.SendCommand("set greeting hello"); got != "+OK\r\n" {
		t.Errorf("expected +OK\\r\\n, got %q", got)
	}
	if got := c.SendCommand("get greeting"); got != "hello\r\n" {
		t.Errorf("expected hello\\r\\n, got %q", got)
	}
}

func TestServer_ListAndSetCommands(t *testing.T) {
	ts := StartTestServer(t, nextTestPort())
	defer ts.Close()

	c := ts.Dial()
	defer c.Close()

	c.SendCommand("rpush mylist a")
	c.SendCommand("rpush mylist b")
	if got := c.SendCommand("lrange mylist 0 2"); got != "a b\r\n" {
		t.Errorf("expected 'a b\\r\\n', got %q", got)
	}

	c.SendCommand("sadd myset m1")
	if got := c.SendCommand("sismember myset m1"); got != "1\r\n" {
		t.Errorf("expected 1\\r\\n, got %q", got)
	}
}

func TestServer_WrongTypeReply(t *testing.T) {
	ts := StartTestServer(t, nextTestPort())
	defer ts.Close()

	c := ts.Dial()
	defer c.Close()

	c.SendCommand("set k v")
	got := c.SendCommand("lpush k x")
	if got != "-ERR Operation against a key holding the wrong kind of value\r\n" {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestServer_MultipleConnectionsAreIndependentSessions(t *testing.T) {
	ts := StartTestServer(t, nextTestPort())
	defer ts.Close()

	c1 := ts.Dial()
	defer c1.Close()
	c2 := ts.Dial()
	defer c2.Close()

	c1.SendCommand("select 1")
	c1.SendCommand("set onlyc1 x")

	if got := c2.SendCommand("get onlyc1"); got != "nil\r\n" {
		t.Errorf("expected c2's DB0 to be unaffected by c1's DB1 write, got %q", got)
	}
}

func TestServer_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	dumpPath := dir + "/dump.pdb"

	srv1, err := NewServer(Config{Host: "127.0.0.1", Port: nextTestPort(), DBCount: 2, DumpPath: dumpPath})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ks1, _ := srv1.keyspace.DB(0)
	ks1.Set("persisted", keyspace.NewString([]byte("yes")))
	if err := srv1.snapshotter.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	srv2, err := NewServer(Config{Host: "127.0.0.1", Port: nextTestPort(), DBCount: 2, DumpPath: dumpPath})
	if err != nil {
		t.Fatalf("NewServer (reload): %v", err)
	}
	ks2, _ := srv2.keyspace.DB(0)
	if !ks2.Exists("persisted") {
		t.Error("expected the reloaded Keyspace to contain the saved key")
	}
}
