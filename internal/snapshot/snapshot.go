// Package snapshot implements pedis's persistence layer: a foreground
// save() and a background bgsave(), both writing the XDR-encoded dump
// file format described in SPEC_FULL.md §4.4. Go has no fork(2), so
// bgsave operates against a Keyspace.Clone() in an ordinary goroutine and
// reports completion back to the reactor goroutine over a self-pipe,
// standing in for the original's SIGCHLD-driven child-exit handler.
package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	xdr "github.com/rasky/go-xdr/xdr2"
	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/pedis/internal/errs"
	"github.com/ehrlich-b/pedis/internal/interfaces"
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/reactor"
)

// Snapshotter owns the dump file path, the in-progress/lastsave state
// reported by the save/bgsave/lastsave/shutdown commands, and the
// self-pipe used to deliver background-save completion. It satisfies
// internal/command.Persistence structurally.
type Snapshotter struct {
	path     string
	keyspace *keyspace.Keyspace
	logger   interfaces.Logger
	observer interfaces.Observer

	lastSave      int64
	bgsaveRunning bool

	pipeRead  int
	pipeWrite *os.File

	nowFn func() int64 // injected for deterministic tests; defaults to time.Now().Unix
}

// New constructs a Snapshotter over the given Keyspace and dump file
// path, and registers its self-pipe read end with r for READABLE.
func New(r *reactor.Reactor, ks *keyspace.Keyspace, path string, logger interfaces.Logger, observer interfaces.Observer) (*Snapshotter, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("snapshot: self-pipe: %w", err)
	}
	if err := unix.SetNonblock(int(pr.Fd()), true); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("snapshot: self-pipe nonblock: %w", err)
	}

	s := &Snapshotter{
		path:      path,
		keyspace:  ks,
		logger:    logger,
		observer:  observer,
		pipeRead:  int(pr.Fd()),
		pipeWrite: pw,
		nowFn:     defaultNow,
	}

	if err := r.RegisterFile(s.pipeRead, reactor.Readable, s.onBGSaveComplete, nil); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("snapshot: register self-pipe: %w", err)
	}
	return s, nil
}

// Save performs a synchronous, in-line save of the live Keyspace. Per
// spec.md §4.4, this runs entirely on the calling (reactor) goroutine and
// blocks it for its duration.
func (s *Snapshotter) Save() error {
	if err := writeDump(s.path, s.keyspace); err != nil {
		return err
	}
	s.lastSave = s.nowFn()
	return nil
}

// BGSave clones the Keyspace on the reactor goroutine (the only cheap,
// safe point to do so) and hands the clone to a plain goroutine that
// writes the dump file without blocking the reactor. Returns
// errs.BgsaveInProgress if a previous bgsave hasn't completed yet.
func (s *Snapshotter) BGSave() error {
	if s.bgsaveRunning {
		return errs.New("BGSAVE", errs.BgsaveInProgress, "background save already in progress", nil)
	}
	s.bgsaveRunning = true
	clone := s.keyspace.Clone()

	go func() {
		err := writeDump(s.path, clone)
		// A single byte signals completion; its value carries success/
		// failure since the self-pipe callback has no other channel back.
		var signal byte
		if err != nil {
			signal = 1
		}
		s.pipeWrite.Write([]byte{signal})
	}()
	return nil
}

// LastSave reports the Unix timestamp of the most recent successful save.
func (s *Snapshotter) LastSave() int64 {
	return s.lastSave
}

// Shutdown performs a final synchronous save, per spec.md §6's exit code
// contract (0 on success, 1 on failure). Returns whether the save
// succeeded; it does not itself terminate the process.
func (s *Snapshotter) Shutdown() bool {
	return s.Save() == nil
}

// onBGSaveComplete is the Reactor READABLE callback for the self-pipe
// read end: it drains the completion byte, clears bgsaveRunning, and
// updates lastSave on success.
func (s *Snapshotter) onBGSaveComplete(fd int, _ any) {
	buf := make([]byte, 1)
	if _, err := readNonBlocking(fd, buf); err != nil {
		return
	}
	s.bgsaveRunning = false
	if buf[0] == 0 {
		s.lastSave = s.nowFn()
	} else if s.logger != nil {
		s.logger.Errorf("snapshot: background save failed")
	}
	if s.observer != nil {
		s.observer.ObserveSnapshot("bgsave", 0, buf[0] == 0)
	}
}

// Reap defensively polls for a missed self-pipe signal, called from the
// Cron tick per SPEC_FULL.md §4.5. The event-driven path above is
// primary; this only guards against a signal delivered while the reactor
// was between Select calls in a way that somehow didn't wake it (it
// should not happen in practice, but costs nothing to check).
func (s *Snapshotter) Reap() {
	if !s.bgsaveRunning {
		return
	}
	s.onBGSaveComplete(s.pipeRead, nil)
}

// Load reads an existing dump file into a fresh Keyspace sized to
// dbCount, per spec.md §4.4's startup load. A missing file is not an
// error: the server simply starts empty.
func Load(path string, dbCount int) (*keyspace.Keyspace, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return keyspace.New(dbCount), nil
	}
	if err != nil {
		return nil, errs.New("LOAD", errs.SnapshotIO, err.Error(), err)
	}

	var f snapshotFile
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &f); err != nil {
		return nil, errs.New("LOAD", errs.SnapshotIO, "corrupt dump file", err)
	}

	loaded := decodeKeyspace(f)
	if loaded.Len() == dbCount {
		return loaded, nil
	}

	// The dump was written with a different dbnum than this run was
	// started with; reconcile by copying whatever databases fit.
	out := keyspace.New(dbCount)
	n := loaded.Len()
	if dbCount < n {
		n = dbCount
	}
	for i := 0; i < n; i++ {
		src, _ := loaded.DB(i)
		dst, _ := out.DB(i)
		src.Range(func(key string, v keyspace.Value) {
			dst.Set(key, v)
		})
	}
	return out, nil
}

// writeDump encodes ks and writes it atomically: a temp file in the same
// directory, fsync, then os.Rename over the target, per SPEC_FULL.md
// §4.4's "<dump>.tmp-<pid>" convention.
func writeDump(path string, ks *keyspace.Keyspace) error {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, encodeKeyspace(ks)); err != nil {
		return errs.New("SAVE", errs.SnapshotIO, "encode failed", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.New("SAVE", errs.SnapshotIO, "open temp file", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errs.New("SAVE", errs.SnapshotIO, "write temp file", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errs.New("SAVE", errs.SnapshotIO, "fsync temp file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.New("SAVE", errs.SnapshotIO, "close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errs.New("SAVE", errs.SnapshotIO, "rename into place", err)
	}
	return nil
}

// ResolvePath joins dir and dumpFile the way cmd/pedis-server resolves
// --dir and --dump against internal/config's "dir" setting.
func ResolvePath(dir, dumpFile string) string {
	if dir == "" {
		return dumpFile
	}
	return filepath.Join(dir, dumpFile)
}
