// Package pedis is a minimal Redis-compatible in-memory key/value server:
// a single-threaded reactor event loop multiplexing raw socket fds and
// timers, a typed keyspace of string/list/set values, and non-blocking
// snapshot persistence. Server is the public entry point; everything
// else (internal/reactor, internal/protocol, internal/command,
// internal/keyspace, internal/session, internal/snapshot,
// internal/cron, internal/config) is implementation detail reachable
// only from here or from cmd/.
package pedis

import (
	"context"
	"fmt"

	"github.com/ehrlich-b/pedis/internal/command"
	"github.com/ehrlich-b/pedis/internal/constants"
	"github.com/ehrlich-b/pedis/internal/cron"
	"github.com/ehrlich-b/pedis/internal/interfaces"
	"github.com/ehrlich-b/pedis/internal/keyspace"
	"github.com/ehrlich-b/pedis/internal/logging"
	"github.com/ehrlich-b/pedis/internal/reactor"
	"github.com/ehrlich-b/pedis/internal/session"
	"github.com/ehrlich-b/pedis/internal/snapshot"
)

// Config configures a Server. Zero-value fields fall back to defaults in
// NewServer, mirroring internal/config.Default() for the fields that
// overlap the config file format.
type Config struct {
	Host     string
	Port     int
	DBCount  int
	DumpPath string

	Logger   interfaces.Logger
	Observer interfaces.Observer
}

// withDefaults fills in every zero-value field.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = constants.DefaultHost
	}
	if c.Port == 0 {
		c.Port = constants.DefaultPort
	}
	if c.DBCount == 0 {
		c.DBCount = constants.DefaultDBCount
	}
	if c.DumpPath == "" {
		c.DumpPath = constants.DefaultDumpFile
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
	if c.Observer == nil {
		c.Observer = NoOpObserver{}
	}
	return c
}

// Server wires together every component: Reactor, Keyspace, Session
// Manager, Registry, Snapshotter, and Cron. Per spec.md §5, exactly one
// goroutine (the one running Run) ever touches the Keyspace, Sessions, or
// Registry after construction.
type Server struct {
	cfg Config

	reactor     *reactor.Reactor
	keyspace    *keyspace.Keyspace
	registry    *command.Registry
	manager     *session.Manager
	snapshotter *snapshot.Snapshotter
	cron        *cron.Cron
	metrics     *Metrics

	exitCode int
	exited   bool
}

// NewServer constructs a Server, loading cfg.DumpPath if it exists (per
// spec.md §4.4's startup load) and wiring the self-pipe, session manager,
// and cron tick. It neither binds the listening socket (see Listen) nor
// runs the reactor.
func NewServer(cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()

	ks, err := snapshot.Load(cfg.DumpPath, cfg.DBCount)
	if err != nil {
		return nil, fmt.Errorf("pedis: load %s: %w", cfg.DumpPath, err)
	}

	r := reactor.New(cfg.Logger)
	registry := command.NewRegistry()

	metrics := NewMetrics()

	snapshotter, err := snapshot.New(r, ks, cfg.DumpPath, cfg.Logger, cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("pedis: snapshotter: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		reactor:     r,
		keyspace:    ks,
		registry:    registry,
		snapshotter: snapshotter,
		metrics:     metrics,
	}

	s.manager = session.NewManager(r, registry, ks, snapshotter, s.exit, cfg.Logger, cfg.Observer)

	s.cron = cron.New(s.manager, snapshotter, metrics, cfg.Logger)
	s.cron.Start(r)

	return s, nil
}

// Listen binds the listening socket. Separated from NewServer so a Server
// can be built (and its dump loaded) without binding. A zero Port is
// replaced by DefaultPort in NewServer, so there is no ephemeral-port
// mode; tests pin a fixed high port instead (see testing.go).
func (s *Server) Listen() error {
	return s.manager.Listen(s.cfg.Host, s.cfg.Port)
}

// Run drives the reactor until ctx is canceled or Stop/the shutdown
// command is invoked. It blocks for the Server's lifetime.
func (s *Server) Run(ctx context.Context) error {
	return s.reactor.Run(ctx)
}

// Stop requests the reactor loop exit at its next iteration boundary.
func (s *Server) Stop() {
	s.reactor.Stop()
}

// Close releases the listening socket and every live session, cancels the
// cron tick, and closes the write end of the snapshotter's self-pipe.
func (s *Server) Close() {
	s.manager.Close()
	s.cron.Stop()
	s.snapshotter.Close()
}

// Metrics exposes the Metrics instance whose summary the cron tick logs.
// NewServer does not pass it to the sessions or the snapshotter, which
// report to Config.Observer instead, so its counters change only if the
// embedding application feeds it.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ExitCode reports the code passed to the most recent shutdown command,
// valid only after exit has been observed (i.e. after Run returns
// following a shutdown).
func (s *Server) ExitCode() int {
	return s.exitCode
}

// SaveForShutdown performs the synchronous final save a clean process
// exit needs (spec.md §6): both the shutdown command and a
// SIGINT/SIGTERM-driven exit from cmd/pedis-server must persist state
// before the process actually goes away.
func (s *Server) SaveForShutdown() error {
	return s.snapshotter.Save()
}

// exit is injected into every Session's command.Context as Exit; the
// shutdown command calls it after a successful final save.
func (s *Server) exit(code int) {
	s.exitCode = code
	s.exited = true
	s.reactor.Stop()
}
