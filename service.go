package systemctl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo/v2"
)

// Service is a handle to one systemd unit. It caches the unit's properties
// as of the last fetch and runs systemctl to change the unit's state.
//
// A Service is meant to be driven from one goroutine at a time; the
// property cache is guarded so Watch can refresh it in the background.
type Service struct {
	// Name is the unit name passed to systemctl (e.g. "nginx" or "nginx.service")
	Name string

	// UseSudo indicates whether control commands run through SudoCommand
	UseSudo bool

	// SudoCommand is the privilege escalation wrapper (default: "sudo")
	SudoCommand string

	// SystemctlPath is the path to the systemctl binary
	SystemctlPath string

	// WaitTimeout bounds the state poll after Start, Restart and Stop
	WaitTimeout time.Duration

	// PollInterval is the delay between polls in WaitForState
	PollInterval time.Duration

	// WatchInterval is the property refresh interval used by Watch
	WatchInterval time.Duration

	// UnitDir is the directory drop-in overrides are written under
	UnitDir string

	runner Runner
	clock  clock.Clock
	stdio  Stdio
	logger loggo.Logger

	mu    sync.RWMutex
	props Properties
}

// New creates a Service for the named unit. It performs no I/O; the
// property cache stays empty until Refresh is called. Use Open to get a
// populated handle.
func New(name string, opts ...Option) *Service {
	s := &Service{
		Name:          name,
		SudoCommand:   DefaultSudoCommand,
		SystemctlPath: DefaultSystemctlPath,
		WaitTimeout:   DefaultWaitTimeout,
		PollInterval:  DefaultPollInterval,
		WatchInterval: DefaultWatchInterval,
		UnitDir:       DefaultUnitDir,
		runner:        ExecRunner{},
		clock:         clock.WallClock,
		stdio:         TerminalStdio(),
		logger:        logger,
		props:         make(Properties),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open creates a Service and fetches its properties
func Open(ctx context.Context, name string, opts ...Option) (*Service, error) {
	s := New(name, opts...)
	if _, err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// command builds the argv for a systemctl invocation, prefixed with the
// sudo command when privileged is set and the handle uses sudo
func (s *Service) command(privileged bool, args ...string) (string, []string) {
	if privileged && s.UseSudo {
		return s.SudoCommand, append([]string{s.SystemctlPath}, args...)
	}
	return s.SystemctlPath, args
}

// run executes a systemctl command and wraps any failure in an OpError
func (s *Service) run(ctx context.Context, op Operation, privileged bool, args ...string) ([]byte, error) {
	name, argv := s.command(privileged, args...)
	s.logger.Debugf("running %s %s", name, strings.Join(argv, " "))

	stdout, stderr, err := s.runner.Run(ctx, name, argv...)
	if err != nil {
		return stdout, &OpError{
			Op:     op,
			Unit:   s.Name,
			Stdout: string(stdout),
			Stderr: string(stderr),
			Err:    err,
		}
	}
	return stdout, nil
}

// Refresh runs `systemctl show --no-pager` for the unit and replaces the
// cached properties with the result.
//
// When the command fails the cache is left as it was and an *OpError is
// returned. When the command succeeds but prints nothing, the cache is
// replaced with the empty set and the returned error wraps ErrEmptyOutput.
func (s *Service) Refresh(ctx context.Context) (Properties, error) {
	stdout, err := s.run(ctx, OpShow, false, "show", "--no-pager", s.Name)
	if err != nil {
		s.logger.Warningf("fetching properties of %s: %v", s.Name, err)
		return nil, err
	}

	props := ParseProperties(stdout)

	s.mu.Lock()
	s.props = props
	s.mu.Unlock()

	if len(props) == 0 {
		s.logger.Warningf("fetching properties of %s: no output", s.Name)
		return props.Clone(), &OpError{Op: OpShow, Unit: s.Name, Err: ErrEmptyOutput}
	}

	return props.Clone(), nil
}

// Properties returns a copy of the cached property set
func (s *Service) Properties() Properties {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.Clone()
}

// Property returns the cached textual value of a property, or "" when absent
func (s *Service) Property(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.String(key)
}

// ActiveState returns the cached activeState
func (s *Service) ActiveState() string {
	return s.Property(PropActiveState)
}

// SubState returns the cached subState
func (s *Service) SubState() string {
	return s.Property(PropSubState)
}

// UnitFileState returns the cached unitFileState
func (s *Service) UnitFileState() string {
	return s.Property(PropUnitFileState)
}

// MainPID returns the cached main process ID, or 0 when there is none
func (s *Service) MainPID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pid, _ := s.props.Int(PropMainPID)
	return int(pid)
}

// IsActive reports whether the unit is active and running
func (s *Service) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props.String(PropActiveState) == StateActive &&
		s.props.String(PropSubState) == StateRunning
}

// IsEnabled reports whether the unit file is enabled or static
func (s *Service) IsEnabled() bool {
	switch s.UnitFileState() {
	case UnitFileEnabled, UnitFileStatic:
		return true
	default:
		return false
	}
}

// Status renders the cached state as "<activeState> (<subState>)"
func (s *Service) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("%s (%s)", s.props.String(PropActiveState), s.props.String(PropSubState))
}

// control runs a state-changing command and refreshes the cache afterwards
func (s *Service) control(ctx context.Context, op Operation) error {
	if _, err := s.run(ctx, op, true, op.Verb(), s.Name); err != nil {
		return err
	}
	_, err := s.Refresh(ctx)
	return err
}

// Start starts the unit. It is the same operation as Restart.
func (s *Service) Start(ctx context.Context) error {
	return s.Restart(ctx)
}

// Restart restarts the unit and waits for it to be active (running)
func (s *Service) Restart(ctx context.Context) error {
	if err := s.control(ctx, OpRestart); err != nil {
		return err
	}
	return s.WaitForState(ctx, StateActive, StateRunning, s.WaitTimeout)
}

// Stop stops the unit and waits for it to be inactive (dead)
func (s *Service) Stop(ctx context.Context) error {
	if err := s.control(ctx, OpStop); err != nil {
		return err
	}
	return s.WaitForState(ctx, StateInactive, StateDead, s.WaitTimeout)
}

// Enable enables the unit file
func (s *Service) Enable(ctx context.Context) error {
	return s.control(ctx, OpEnable)
}

// Disable disables the unit file
func (s *Service) Disable(ctx context.Context) error {
	return s.control(ctx, OpDisable)
}

// DaemonReload reloads the systemd manager configuration and refreshes the cache
func (s *Service) DaemonReload(ctx context.Context) error {
	if _, err := s.run(ctx, OpDaemonReload, true, OpDaemonReload.Verb()); err != nil {
		return err
	}
	_, err := s.Refresh(ctx)
	return err
}

// Edit opens the full unit file in systemctl's editor through the sudo
// command, with the handle's stdio attached, and blocks until the editor
// exits. The returned error is only set when the editor could not be run;
// a non-zero exit is reported through the exit code. The cache is not refreshed.
func (s *Service) Edit(ctx context.Context) (int, error) {
	args := []string{s.SystemctlPath, OpEdit.Verb(), "--full", s.Name}
	s.logger.Debugf("running %s %s", s.SudoCommand, strings.Join(args, " "))

	code, err := s.runner.RunInteractive(ctx, s.stdio, s.SudoCommand, args...)
	if err != nil {
		return code, &OpError{Op: OpEdit, Unit: s.Name, Err: err}
	}
	return code, nil
}
