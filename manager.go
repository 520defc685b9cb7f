package systemctl

import (
	"context"
	"sync"
	"time"
)

// Manager runs the same operation on many units concurrently. Every unit
// gets its own Service handle; nothing is coordinated between handles.
type Manager struct {
	// Concurrency is the maximum number of concurrent operations
	Concurrency int
	// Timeout is the per-operation timeout
	Timeout time.Duration
	// ServiceOptions are applied to every handle the Manager opens
	ServiceOptions []Option
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConcurrency sets the maximum number of concurrent operations
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		m.Concurrency = n
	}
}

// WithTimeout sets the per-operation timeout
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.Timeout = d
	}
}

// WithServiceOptions sets the options used to open each unit's handle
func WithServiceOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.ServiceOptions = append(m.ServiceOptions, opts...)
	}
}

// NewManager creates a new Manager with default settings
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		Concurrency: 10,
		Timeout:     10 * time.Second,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Concurrency < 1 {
		m.Concurrency = 1
	}

	return m
}

// execute opens a handle per unit and runs op on it, at most Concurrency at a time
func (m *Manager) execute(ctx context.Context, units []string, op func(*Service, context.Context) error) (map[string]*Service, error) {
	handles := make(map[string]*Service, len(units))
	if len(units) == 0 {
		return handles, nil
	}

	sem := make(chan struct{}, m.Concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	merr := &MultiError{}

	for _, name := range units {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				merr.Add(ctx.Err())
				mu.Unlock()
				return
			}

			opCtx := ctx
			if m.Timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, m.Timeout)
				defer cancel()
			}

			svc, err := Open(opCtx, name, m.ServiceOptions...)
			if err == nil && op != nil {
				err = op(svc, opCtx)
			}

			mu.Lock()
			defer mu.Unlock()
			if svc != nil {
				handles[name] = svc
			}
			merr.Add(err)
		}(name)
	}

	wg.Wait()

	return handles, merr.Err()
}

// Restart restarts the given units and waits for each to be running
func (m *Manager) Restart(ctx context.Context, units ...string) error {
	_, err := m.execute(ctx, units, (*Service).Restart)
	return err
}

// Start starts the given units. It is the same operation as Restart.
func (m *Manager) Start(ctx context.Context, units ...string) error {
	return m.Restart(ctx, units...)
}

// Stop stops the given units and waits for each to be dead
func (m *Manager) Stop(ctx context.Context, units ...string) error {
	_, err := m.execute(ctx, units, (*Service).Stop)
	return err
}

// Enable enables the given units
func (m *Manager) Enable(ctx context.Context, units ...string) error {
	_, err := m.execute(ctx, units, (*Service).Enable)
	return err
}

// Disable disables the given units
func (m *Manager) Disable(ctx context.Context, units ...string) error {
	_, err := m.execute(ctx, units, (*Service).Disable)
	return err
}

// Status opens a handle for each unit. Units whose properties could not be
// fetched are missing from the result and reported in the error.
func (m *Manager) Status(ctx context.Context, units ...string) (map[string]*Service, error) {
	return m.execute(ctx, units, nil)
}
