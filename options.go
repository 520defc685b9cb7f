package systemctl

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("systemctl")

// Option configures a Service
type Option func(*Service)

// WithSudo sets whether control commands run through the sudo command
func WithSudo(use bool) Option {
	return func(s *Service) {
		s.UseSudo = use
	}
}

// WithSudoCommand sets the privilege escalation wrapper (default: "sudo")
func WithSudoCommand(cmd string) Option {
	return func(s *Service) {
		if cmd != "" {
			s.SudoCommand = cmd
		}
	}
}

// WithSystemctlPath sets the path to the systemctl binary
func WithSystemctlPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.SystemctlPath = path
		}
	}
}

// WithRunner replaces the command runner
func WithRunner(r Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithClock replaces the clock used for deadlines and poll delays
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithWaitTimeout sets how long Start, Restart and Stop poll for the target state
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.WaitTimeout = d
	}
}

// WithPollInterval sets the delay between state polls
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.PollInterval = d
		}
	}
}

// WithWatchInterval sets the property refresh interval used by Watch
func WithWatchInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.WatchInterval = d
		}
	}
}

// WithUnitDir sets the directory drop-in overrides are written under
func WithUnitDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.UnitDir = dir
		}
	}
}

// WithStdio sets the streams attached to Edit
func WithStdio(stdio Stdio) Option {
	return func(s *Service) {
		s.stdio = stdio
	}
}

// WithLogger replaces the package logger for this handle
func WithLogger(l loggo.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}
