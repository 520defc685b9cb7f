package systemctl

import (
	"context"
	"fmt"
	"time"
)

// matches reports whether the cached state equals the target.
// An empty sub matches any subState.
func (s *Service) matches(active, sub string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.props.String(PropActiveState) != active {
		return false
	}
	return sub == "" || s.props.String(PropSubState) == sub
}

// WaitForState polls the unit until its activeState equals active and, if
// sub is non-empty, its subState equals sub.
//
// The cached properties are checked first, so a handle already in the
// target state returns immediately without running systemctl. Otherwise
// the properties are refreshed, PollInterval is slept, and the check is
// repeated until timeout has elapsed. Refresh failures do not stop the
// poll; the last one is reported alongside ErrTimeout.
func (s *Service) WaitForState(ctx context.Context, active, sub string, timeout time.Duration) error {
	if active == "" {
		return &OpError{Op: OpWait, Unit: s.Name, Err: ErrTargetNotSpecified}
	}

	deadline := s.clock.Now().Add(timeout)
	var lastErr error

	for {
		if s.matches(active, sub) {
			return nil
		}

		if s.clock.Now().After(deadline) {
			err := fmt.Errorf("waiting for %s (%s), last seen %s: %w", active, sub, s.Status(), ErrTimeout)
			if lastErr != nil {
				err = fmt.Errorf("%w (last refresh error: %v)", err, lastErr)
			}
			return &OpError{Op: OpWait, Unit: s.Name, Err: err}
		}

		if _, err := s.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Debugf("waiting for %s: %v", s.Name, err)
			lastErr = err
		}

		if s.PollInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.clock.After(s.PollInterval):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}
}
