package systemctl

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
)

// runnerCall records one command issued through fakeRunner
type runnerCall struct {
	Name        string
	Args        []string
	Interactive bool
	Stdin       string
}

func (c runnerCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// fakeRunner scripts systemctl responses for tests
type fakeRunner struct {
	mu sync.Mutex

	calls []runnerCall

	// shows maps a unit name to successive `show` outputs; the last one repeats.
	// The "" key is used for units without their own entry.
	shows map[string][]string
	// showErr fails every `show` call
	showErr error
	// fail maps a systemctl verb to the error its command returns
	fail map[string]error
	// stderr maps a systemctl verb to the diagnostic it prints
	stderr map[string]string
	// exitCode and interactiveErr are returned from interactive commands
	exitCode       int
	interactiveErr error
}

func newFakeRunner(showOutputs ...string) *fakeRunner {
	return &fakeRunner{
		shows:  map[string][]string{"": showOutputs},
		fail:   make(map[string]error),
		stderr: make(map[string]string),
	}
}

// systemctlArgs strips the sudo prefix so verbs can be matched
func systemctlArgs(name string, args []string) []string {
	if name == DefaultSudoCommand && len(args) > 0 {
		return args[1:]
	}
	return args
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runnerCall{Name: name, Args: append([]string(nil), args...)})

	argv := systemctlArgs(name, args)
	if len(argv) == 0 {
		return nil, nil, nil
	}
	verb := argv[0]

	if verb == "show" {
		if f.showErr != nil {
			return nil, []byte(f.stderr["show"]), f.showErr
		}
		unit := argv[len(argv)-1]
		outputs, ok := f.shows[unit]
		if !ok {
			unit = ""
			outputs = f.shows[""]
		}
		if len(outputs) == 0 {
			return nil, nil, nil
		}
		out := outputs[0]
		if len(outputs) > 1 {
			f.shows[unit] = outputs[1:]
		}
		return []byte(out), nil, nil
	}

	if err, ok := f.fail[verb]; ok {
		return nil, []byte(f.stderr[verb]), err
	}
	return nil, nil, nil
}

func (f *fakeRunner) RunInteractive(_ context.Context, stdio Stdio, name string, args ...string) (int, error) {
	var stdin []byte
	if stdio.Stdin != nil {
		stdin, _ = io.ReadAll(stdio.Stdin)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runnerCall{
		Name:        name,
		Args:        append([]string(nil), args...),
		Interactive: true,
		Stdin:       string(stdin),
	})
	return f.exitCode, f.interactiveErr
}

func (f *fakeRunner) Calls() []runnerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runnerCall(nil), f.calls...)
}

func (f *fakeRunner) CallStrings() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

// ShowCount returns how many property fetches were issued
func (f *fakeRunner) ShowCount() int {
	n := 0
	for _, c := range f.Calls() {
		argv := systemctlArgs(c.Name, c.Args)
		if len(argv) > 0 && argv[0] == "show" {
			n++
		}
	}
	return n
}

// stepClock advances by step every time Now is called, so deadline loops
// terminate without sleeping
type stepClock struct {
	clock.Clock

	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		Clock: clock.WallClock,
		now:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		step:  step,
	}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

const (
	showActiveRunning = "Id=nginx.service\nActiveState=active\nSubState=running\nUnitFileState=enabled\nMainPID=1234\n"
	showInactiveDead  = "Id=nginx.service\nActiveState=inactive\nSubState=dead\nUnitFileState=disabled\nMainPID=0\n"
	showActivating    = "Id=nginx.service\nActiveState=activating\nSubState=start\nUnitFileState=enabled\nMainPID=0\n"
	showDeactivating  = "Id=nginx.service\nActiveState=deactivating\nSubState=stop-sigterm\nUnitFileState=enabled\nMainPID=1234\n"
)
