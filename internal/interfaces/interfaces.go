// Package interfaces holds small cross-package contracts, kept separate
// from their implementations to avoid import cycles between the top-level
// pedis package and its internal/ subpackages.
package interfaces

// Logger is satisfied by *internal/logging.Logger. Components that only
// need to log, not configure logging, depend on this instead of the
// concrete type.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Printf(format string, args ...interface{})
}

// Observer receives point-in-time notifications from the reactor and
// command dispatch layers for metrics collection. Implementations must be
// safe to call from the reactor goroutine only (no concurrent calls are
// made, but the reactor must never block on them).
type Observer interface {
	ObserveCommand(name string, latencyNs uint64, err error)
	ObserveConnection(delta int)
	ObserveBytes(in, out uint64)
	ObserveSnapshot(kind string, latencyNs uint64, success bool)
}
