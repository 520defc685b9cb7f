package systemctl

import (
	"io/fs"
	"time"
)

// Binary paths with defaults that can be overridden
const (
	// DefaultSystemctlPath is the default path to the systemctl binary
	DefaultSystemctlPath = "systemctl"

	// DefaultSudoCommand is the default privilege escalation wrapper
	DefaultSudoCommand = "sudo"

	// DefaultUnitDir is where drop-in directories are created
	DefaultUnitDir = "/etc/systemd/system"
)

// Timing defaults
const (
	// DefaultWaitTimeout bounds the state poll after Start, Restart and Stop
	DefaultWaitTimeout = 500 * time.Millisecond

	// DefaultPollInterval is the delay between polls; zero polls back to back
	DefaultPollInterval = time.Duration(0)

	// DefaultWatchInterval is how often Watch re-reads unit properties
	DefaultWatchInterval = time.Second

	// DefaultWatchDebounce coalesces bursts of unit file writes
	DefaultWatchDebounce = 25 * time.Millisecond
)

// File modes
const (
	// DirMode is the mode for created drop-in directories
	DirMode fs.FileMode = 0o755

	// FileMode is the mode for written drop-in files
	FileMode fs.FileMode = 0o644
)

// Unit states used by the control operations
const (
	StateActive   = "active"
	StateInactive = "inactive"
	StateRunning  = "running"
	StateDead     = "dead"

	UnitFileEnabled  = "enabled"
	UnitFileStatic   = "static"
	UnitFileDisabled = "disabled"
)

// Operation represents a systemctl invocation performed by a Service
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpShow reads unit properties
	OpShow
	// OpRestart restarts (or starts) the unit
	OpRestart
	// OpStop stops the unit
	OpStop
	// OpEnable enables the unit file
	OpEnable
	// OpDisable disables the unit file
	OpDisable
	// OpEdit opens the unit file in an editor
	OpEdit
	// OpDaemonReload reloads the systemd manager configuration
	OpDaemonReload
	// OpWriteDropIn writes or removes a drop-in override
	OpWriteDropIn
	// OpWait polls for a target state
	OpWait
)

// Operation string constants, doubling as systemctl verbs
const (
	opUnknownStr      = "unknown"
	opShowStr         = "show"
	opRestartStr      = "restart"
	opStopStr         = "stop"
	opEnableStr       = "enable"
	opDisableStr      = "disable"
	opEditStr         = "edit"
	opDaemonReloadStr = "daemon-reload"
	opWriteDropInStr  = "write-drop-in"
	opWaitStr         = "wait"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpShow:
		return opShowStr
	case OpRestart:
		return opRestartStr
	case OpStop:
		return opStopStr
	case OpEnable:
		return opEnableStr
	case OpDisable:
		return opDisableStr
	case OpEdit:
		return opEditStr
	case OpDaemonReload:
		return opDaemonReloadStr
	case OpWriteDropIn:
		return opWriteDropInStr
	case OpWait:
		return opWaitStr
	default:
		return opUnknownStr
	}
}

// Verb returns the systemctl subcommand for this operation, or "" when the
// operation is not a single systemctl call
func (op Operation) Verb() string {
	switch op {
	case OpShow, OpRestart, OpStop, OpEnable, OpDisable, OpEdit, OpDaemonReload:
		return op.String()
	default:
		return ""
	}
}
