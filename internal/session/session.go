// Package session implements the per-connection state machine from
// spec.md §4.2: parsing inbound bytes via internal/protocol.Codec,
// dispatching complete frames through internal/command.Registry, and
// draining replies back to the raw socket fd through the Reactor.
package session

import (
	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/pedis/internal/command"
	"github.com/ehrlich-b/pedis/internal/interfaces"
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/protocol"
	"github.com/ehrlich-b/pedis/internal/reactor"
)

// State names the Session lifecycle states from spec.md §4.2:
// ACCEPTED -> ACTIVE -> CLOSING -> CLOSED.
type State uint8

const (
	Accepted State = iota
	Active
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Accepted:
		return "ACCEPTED"
	case Active:
		return "ACTIVE"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

const readChunkSize = 16 * 1024

// Session is one client connection. All methods run on the reactor
// goroutine; none of its fields are synchronized.
type Session struct {
	fd    int
	state State
	db    int

	codec *protocol.Codec

	replyQueue [][]byte // FIFO; head element may be partially sent

	reactor  *reactor.Reactor
	registry *command.Registry
	keyspace *keyspace.Keyspace
	persist  command.Persistence
	exit     func(code int)

	logger   interfaces.Logger
	observer interfaces.Observer

	manager *Manager
}

// newSession wires a freshly-accepted fd into the reactor. The caller
// (Manager.onAcceptable) registers it for READABLE immediately afterward.
func newSession(fd int, m *Manager) *Session {
	s := &Session{
		fd:       fd,
		state:    Accepted,
		db:       0,
		reactor:  m.reactor,
		registry: m.registry,
		keyspace: m.keyspace,
		persist:  m.persist,
		exit:     m.exit,
		logger:   m.logger,
		observer: m.observer,
		manager:  m,
	}
	s.codec = protocol.NewCodec(func(name string) (protocol.CommandKind, bool) {
		return m.registry.Kind(name)
	})
	return s
}

// onReadable is the Reactor READABLE callback. The first invocation
// advances ACCEPTED -> ACTIVE regardless of whether a full frame is
// parsed, per spec.md §4.2.
func (s *Session) onReadable(fd int, _ any) {
	if s.state == Accepted {
		s.state = Active
	}

	buf := reactor.GetBuffer(readChunkSize)
	defer reactor.PutBuffer(buf)

	n, err := unix.Read(fd, buf)
	switch {
	case n == 0 && err == nil:
		// Peer half-close: immediate freeClient, per spec.md §5.
		s.close()
		return
	case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
		return
	case err != nil:
		if s.logger != nil {
			s.logger.Errorf("session: read fd=%d: %v", fd, err)
		}
		s.close()
		return
	}

	if s.observer != nil {
		s.observer.ObserveBytes(uint64(n), 0)
	}
	s.codec.Feed(buf[:n])
	s.drainFrames()
}

// drainFrames parses and dispatches every complete frame currently
// buffered, stopping at the first incomplete parse, protocol error, or a
// quit that closes the Session.
func (s *Session) drainFrames() {
	for {
		frame, err := s.codec.Next()
		if err != nil {
			if s.logger != nil {
				s.logger.Warnf("session: protocol error fd=%d: %v", s.fd, err)
			}
			s.close()
			return
		}
		if frame == nil {
			return
		}
		if s.dispatch(frame) {
			return // Session moved to CLOSING or CLOSED mid-dispatch (quit).
		}
	}
}

// dispatch runs one Frame through the Registry, enqueueing its reply.
// Returns true if the Session should stop draining further buffered
// frames this call (quit was received).
func (s *Session) dispatch(frame *protocol.Frame) bool {
	if frame.Argc > 0 && string(frame.Argv[0]) == "quit" {
		s.beginClosing()
		return true
	}

	ctx := &command.Context{
		Keyspace:    s.keyspace,
		DBIndex:     s.db,
		Select:      s.setDB,
		Argv:        frame.Argv,
		Persistence: s.persist,
		Exit:        s.exit,
	}

	// A handler panic stays scoped to this one command: recovered here,
	// logged, and replied ErrGeneric, rather than closing the Session.
	var reply []byte
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				if s.logger != nil {
					s.logger.Errorf("session: handler panic fd=%d argv0=%q: %v", s.fd, frame.Argv[0], rec)
				}
				reply = protocol.ErrGeneric
			}
		}()
		reply = s.registry.Dispatch(ctx)
	}()

	if s.observer != nil {
		s.observer.ObserveCommand(string(frame.Argv[0]), 0, nil)
	}
	if reply != nil {
		s.Enqueue(reply)
	}
	return false
}

func (s *Session) setDB(index int) error {
	if _, err := s.keyspace.DB(index); err != nil {
		return err
	}
	s.db = index
	return nil
}

// Enqueue appends a reply chunk to the FIFO, registering for WRITABLE if
// the queue was empty, per spec.md §4.2.
func (s *Session) Enqueue(chunk []byte) {
	wasEmpty := len(s.replyQueue) == 0
	s.replyQueue = append(s.replyQueue, chunk)
	if wasEmpty {
		s.reactor.RegisterFile(s.fd, reactor.Writable, s.onWritable, nil)
	}
}

// onWritable is the Reactor WRITABLE callback: best-effort drain of the
// reply FIFO, retaining any unsent remainder at the head.
func (s *Session) onWritable(fd int, _ any) {
	for len(s.replyQueue) > 0 {
		chunk := s.replyQueue[0]
		n, err := unix.Write(fd, chunk)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err != nil {
			if s.logger != nil {
				s.logger.Errorf("session: write fd=%d: %v", fd, err)
			}
			s.close()
			return
		}
		if s.observer != nil {
			s.observer.ObserveBytes(0, uint64(n))
		}
		if n < len(chunk) {
			s.replyQueue[0] = chunk[n:]
			return
		}
		s.replyQueue = s.replyQueue[1:]
	}

	s.reactor.UnregisterFile(s.fd, reactor.Writable)
	if s.state == Closing {
		s.close()
	}
}

// beginClosing moves ACTIVE -> CLOSING; the Session is closed once its
// reply queue drains (or immediately if it is already empty).
func (s *Session) beginClosing() {
	s.state = Closing
	if len(s.replyQueue) == 0 {
		s.close()
	}
}

// close releases the fd and registrations, transitioning to CLOSED.
// Idempotent.
func (s *Session) close() {
	if s.state == Closed {
		return
	}
	s.state = Closed
	s.replyQueue = nil
	s.reactor.UnregisterFile(s.fd, reactor.Readable|reactor.Writable)
	unix.Close(s.fd)
	s.manager.remove(s)
	if s.observer != nil {
		s.observer.ObserveConnection(-1)
	}
}

// State reports the Session's current lifecycle state.
func (s *Session) State() State { return s.state }

// DBIndex reports the Session's currently bound database index.
func (s *Session) DBIndex() int { return s.db }
