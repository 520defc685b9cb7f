package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"github.com/axondata/go-systemctl"
)

// ErrUsage is returned for malformed command lines
var ErrUsage = errors.New("invalid usage")

type app struct {
	cfg        *Config
	out        io.Writer
	isTerminal func() bool
	// extra options applied after the configured ones
	opts []systemctl.Option
}

func (a *app) serviceOptions() []systemctl.Option {
	return append(a.cfg.serviceOptions(), a.opts...)
}

func (a *app) manager() *systemctl.Manager {
	return systemctl.NewManager(
		systemctl.WithConcurrency(a.cfg.Concurrency),
		systemctl.WithTimeout(a.cfg.Timeout),
		systemctl.WithServiceOptions(a.serviceOptions()...),
	)
}

func (a *app) open(ctx context.Context, name string) (*systemctl.Service, error) {
	return systemctl.Open(ctx, name, a.serviceOptions()...)
}

// dispatch runs one command and returns the process exit code
func (a *app) dispatch(ctx context.Context, cmd string, args []string) (int, error) {
	var err error
	switch cmd {
	case "status":
		err = a.status(ctx, args)
	case "start", "restart", "stop", "enable", "disable":
		err = a.bulk(ctx, cmd, args)
	case "edit":
		return a.edit(ctx, args)
	case "watch":
		err = a.watch(ctx, args)
	case "dropin":
		err = a.dropin(ctx, args)
	default:
		return 2, fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	if errors.Is(err, ErrUsage) {
		return 2, err
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}

func (a *app) status(ctx context.Context, units []string) error {
	if len(units) == 0 {
		return fmt.Errorf("%w: status needs at least one unit", ErrUsage)
	}

	handles, err := a.manager().Status(ctx, units...)

	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("UNIT", "ACTIVE", "SUB", "UNIT FILE", "PID", "MEMORY", "STARTED")
	for _, name := range units {
		svc, ok := handles[name]
		if !ok {
			continue
		}

		pid, memory, started := "-", "-", "-"
		if svc.MainPID() > 0 {
			pid = fmt.Sprint(svc.MainPID())
			if stats, perr := svc.MainProcess(ctx); perr == nil {
				memory = humanize.IBytes(stats.MemRSS)
				if !stats.StartTime.IsZero() {
					started = humanize.Time(stats.StartTime)
				}
			} else {
				logger.Debugf("inspecting %s: %v", name, perr)
			}
		}

		table.AddRow(name, svc.ActiveState(), svc.SubState(), svc.UnitFileState(), pid, memory, started)
	}
	fmt.Fprintln(a.out, table)

	return err
}

func (a *app) bulk(ctx context.Context, cmd string, units []string) error {
	if len(units) == 0 {
		return fmt.Errorf("%w: %s needs at least one unit", ErrUsage, cmd)
	}

	mgr := a.manager()
	var err error
	switch cmd {
	case "start":
		err = mgr.Start(ctx, units...)
	case "restart":
		err = mgr.Restart(ctx, units...)
	case "stop":
		err = mgr.Stop(ctx, units...)
	case "enable":
		err = mgr.Enable(ctx, units...)
	case "disable":
		err = mgr.Disable(ctx, units...)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %s\n", cmd, strings.Join(units, ", "))
	return nil
}

func (a *app) edit(ctx context.Context, args []string) (int, error) {
	if len(args) != 1 {
		return 2, fmt.Errorf("%w: edit takes exactly one unit", ErrUsage)
	}
	if !a.isTerminal() {
		return 1, errors.New("edit needs an interactive terminal")
	}

	code, err := systemctl.New(args[0], a.serviceOptions()...).Edit(ctx)
	if err != nil {
		return 1, err
	}
	return code, nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch takes exactly one unit", ErrUsage)
	}

	svc := systemctl.New(args[0], a.serviceOptions()...)
	events, cleanup, err := svc.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warningf("stopping watch: %v", err)
		}
	}()

	for ev := range events {
		ts := time.Now().Format(time.TimeOnly)
		switch {
		case ev.Err != nil:
			fmt.Fprintf(a.out, "%s %s error: %v\n", ts, svc.Name, ev.Err)
		case ev.UnitFileChanged:
			fmt.Fprintf(a.out, "%s %s unit file changed, %s\n", ts, svc.Name, ev.Status)
		default:
			fmt.Fprintf(a.out, "%s %s %s\n", ts, svc.Name, ev.Status)
		}
	}
	return nil
}

func (a *app) dropin(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: dropin set|show|rm <unit> <name> ...", ErrUsage)
	}
	sub, unitName, dropIn := args[0], args[1], args[2]
	svc := systemctl.New(unitName, a.serviceOptions()...)

	switch sub {
	case "set":
		opts, err := parseAssignments(args[3:])
		if err != nil {
			return err
		}
		path, err := svc.WriteDropIn(ctx, dropIn, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "wrote %s\n", path)

	case "show":
		opts, err := svc.ReadDropIn(dropIn)
		if err != nil {
			return err
		}
		content, err := io.ReadAll(unit.Serialize(opts))
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, string(content))

	case "rm":
		if err := svc.RemoveDropIn(ctx, dropIn); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "removed %s\n", svc.DropInPath(dropIn))

	default:
		return fmt.Errorf("%w: unknown dropin command %q", ErrUsage, sub)
	}
	return nil
}

// parseAssignments turns Section.Key=Value arguments into unit options
func parseAssignments(args []string) ([]*unit.UnitOption, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no Section.Key=Value assignments given", ErrUsage)
	}

	var opts []*unit.UnitOption
	for _, arg := range args {
		lhs, value, ok := strings.Cut(arg, "=")
		section, name, dotted := strings.Cut(lhs, ".")
		if !ok || !dotted || section == "" || name == "" {
			return nil, fmt.Errorf("%w: expected Section.Key=Value, got %q", ErrUsage, arg)
		}
		opts = append(opts, unit.NewUnitOption(section, name, value))
	}
	return opts, nil
}
