package systemctl

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/clock"
	"vawter.tech/stopper"
)

// WatchEvent reports a change observed by Watch
type WatchEvent struct {
	// Properties is the property set fetched for this event
	Properties Properties
	// Status is the rendered "<activeState> (<subState>)" at the time of the event
	Status string
	// UnitFileChanged is set when the event was caused by a write to the
	// unit file or one of its drop-ins
	UnitFileChanged bool
	// Err is set when the refresh or the file watcher failed
	Err error
}

// WatchCleanupFunc stops a watch and waits for its goroutine to exit.
// The event channel is closed once cleanup returns.
type WatchCleanupFunc func() error

// Watch refreshes the unit every WatchInterval and emits an event whenever
// its activeState or subState changes. The directories holding the unit
// file and its drop-ins are watched as well, so edits are reported
// without waiting for the next poll. The first event carries the current state.
func (s *Service) Watch(ctx context.Context) (<-chan WatchEvent, WatchCleanupFunc, error) {
	props, err := s.Refresh(ctx)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, &OpError{Op: OpShow, Unit: s.Name, Err: err}
	}

	fragment := props.String(PropFragmentPath)
	if fragment != "" {
		if err := watcher.Add(filepath.Dir(fragment)); err != nil {
			s.logger.Debugf("not watching unit file %s: %v", fragment, err)
		}
	}
	dropInDir := s.DropInDir()
	if fi, err := os.Stat(dropInDir); err == nil && fi.IsDir() {
		if err := watcher.Add(dropInDir); err != nil {
			s.logger.Debugf("not watching drop-ins in %s: %v", dropInDir, err)
		}
	}

	ch := make(chan WatchEvent, 10)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	send := func(ev WatchEvent) {
		if sctx.IsStopping() {
			return
		}
		select {
		case ch <- ev:
		case <-sctx.Stopping():
		}
	}

	lastStatus := s.Status()
	send(WatchEvent{Properties: props, Status: lastStatus})

	readAndSend := func(fileChanged bool) {
		props, err := s.Refresh(ctx)
		if err != nil {
			send(WatchEvent{Err: err})
			return
		}
		status := s.Status()
		if status == lastStatus && !fileChanged {
			return
		}
		lastStatus = status
		send(WatchEvent{Properties: props, Status: status, UnitFileChanged: fileChanged})
	}

	unitFile := func(name string) bool {
		return name == fragment || filepath.Dir(name) == dropInDir
	}

	sctx.Go(func(sctx *stopper.Context) error {
		poll := s.clock.NewTimer(s.WatchInterval)
		defer poll.Stop()

		var debounce clock.Timer
		var debounceC <-chan time.Time
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case <-poll.Chan():
				readAndSend(false)
				poll.Reset(s.WatchInterval)

			case <-debounceC:
				debounceC = nil
				readAndSend(true)

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !unitFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if debounce == nil {
					debounce = s.clock.NewTimer(DefaultWatchDebounce)
				} else {
					debounce.Reset(DefaultWatchDebounce)
				}
				debounceC = debounce.Chan()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					send(WatchEvent{Err: err})
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}
