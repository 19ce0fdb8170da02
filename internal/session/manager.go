package session

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/pedis/internal/command"
	"github.com/ehrlich-b/pedis/internal/constants"
	"github.com/ehrlich-b/pedis/internal/interfaces"
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/reactor"
)

// Manager owns every live Session and the listening socket that spawns
// them, mirroring how internal/queue.Runner in the teacher owns its set
// of in-flight requests against one fd.
type Manager struct {
	listenFd int

	reactor  *reactor.Reactor
	registry *command.Registry
	keyspace *keyspace.Keyspace
	persist  command.Persistence
	exit     func(code int)

	logger   interfaces.Logger
	observer interfaces.Observer

	sessions map[int]*Session // keyed by fd
}

// NewManager wires a Manager but does not bind or listen; call Listen.
func NewManager(r *reactor.Reactor, registry *command.Registry, ks *keyspace.Keyspace, persist command.Persistence, exit func(code int), logger interfaces.Logger, observer interfaces.Observer) *Manager {
	return &Manager{
		reactor:  r,
		registry: registry,
		keyspace: ks,
		persist:  persist,
		exit:     exit,
		logger:   logger,
		observer: observer,
		sessions: make(map[int]*Session),
	}
}

// Listen opens a non-blocking TCP listening socket bound to host:port and
// registers it with the Reactor for READABLE, per spec.md §4.1's "the
// listening socket is itself just another registered fd."
func (m *Manager) Listen(host string, port int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("session: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("session: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return fmt.Errorf("session: setnonblock: %w", err)
	}

	addr, err := parseAddr(host, port)
	if err != nil {
		unix.Close(fd)
		return err
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("session: bind %s:%d: %w", host, port, err)
	}
	if err := unix.Listen(fd, constants.ListenBacklog); err != nil {
		unix.Close(fd)
		return fmt.Errorf("session: listen: %w", err)
	}

	m.listenFd = fd
	return m.reactor.RegisterFile(fd, reactor.Readable, m.onAcceptable, nil)
}

// Close tears down the listening socket and every live Session.
func (m *Manager) Close() {
	if m.listenFd != 0 {
		m.reactor.UnregisterFile(m.listenFd, reactor.Readable)
		unix.Close(m.listenFd)
	}
	for _, s := range m.sessions {
		s.close()
	}
}

// Len reports the number of active sessions, used by the cron tick log.
func (m *Manager) Len() int { return len(m.sessions) }

// onAcceptable is the Reactor READABLE callback for the listening socket.
// It drains every pending connection in one pass, since edge cases aside,
// select(2) only reports readiness once per burst of arrivals.
func (m *Manager) onAcceptable(fd int, _ any) {
	for {
		connFd, _, err := unix.Accept(fd)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if m.logger != nil {
				m.logger.Errorf("session: accept: %v", err)
			}
			return
		}
		if err := unix.SetNonblock(connFd, true); err != nil {
			unix.Close(connFd)
			continue
		}

		s := newSession(connFd, m)
		m.sessions[connFd] = s
		if m.observer != nil {
			m.observer.ObserveConnection(1)
		}
		if err := m.reactor.RegisterFile(connFd, reactor.Readable, s.onReadable, nil); err != nil {
			if m.logger != nil {
				m.logger.Errorf("session: register fd=%d: %v", connFd, err)
			}
			s.close()
		}
	}
}

// remove drops a Session from the live set once it has closed.
func (m *Manager) remove(s *Session) {
	delete(m.sessions, s.fd)
}
