package pedis

import "github.com/ehrlich-b/pedis/internal/constants"

// Re-export constants for public API.
const (
	DefaultHost       = constants.DefaultHost
	DefaultPort       = constants.DefaultPort
	ListenBacklog     = constants.ListenBacklog
	DefaultDBCount    = constants.DefaultDBCount
	DefaultDumpFile   = constants.DefaultDumpFile
	DefaultConfigPath = constants.DefaultConfigPath
)
