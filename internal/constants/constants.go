// Package constants holds process-wide defaults shared across the reactor,
// protocol, keyspace, and snapshot layers.
package constants

// Network defaults.
const (
	// DefaultHost is the default bind address.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the default TCP port.
	DefaultPort = 6379

	// ListenBacklog is the minimum accept backlog for the listening socket.
	ListenBacklog = 32
)

// Keyspace defaults.
const (
	// DefaultDBCount is the number of logical databases in a Keyspace.
	DefaultDBCount = 16
)

// Protocol framing.
const (
	// CRLF terminates every inline line and bulk header/body.
	CRLF = "\r\n"

	// InitialParseBufferSize is the starting capacity of a session's parse
	// buffer; it grows as needed to accommodate partial frames (no fixed
	// per-read cap, per the buffered-parsing requirement).
	InitialParseBufferSize = 1024

	// MaxBulkLength bounds a single BULK argument to guard against a
	// malicious or buggy peer declaring an unbounded length.
	MaxBulkLength = 512 * 1024 * 1024
)

// Persistence defaults.
const (
	// DefaultDumpFile is the snapshot file name. A relative name is joined
	// to the configured dir when one is set; otherwise it resolves against
	// the working directory, not the binary's directory.
	DefaultDumpFile = "dump.pdb"

	// DefaultConfigPath is resolved relative to the binary.
	DefaultConfigPath = "../pedis.conf"

	// ConfigPathEnvVar overrides DefaultConfigPath when set.
	ConfigPathEnvVar = "PEDIS_CONF"
)

// Cron cadence.
const (
	// CronIntervalMillis is the recurring Cron time-event interval.
	CronIntervalMillis = 1000

	// CronLogEveryNTicks logs the connection count on every Nth tick.
	CronLogEveryNTicks = 3
)
