// Command svcctl controls systemd units through the systemctl package.
//
//	svcctl [flags] status <unit>...
//	svcctl [flags] start|restart|stop|enable|disable <unit>...
//	svcctl [flags] edit <unit>
//	svcctl [flags] watch <unit>
//	svcctl [flags] dropin set <unit> <name> <Section.Key=Value>...
//	svcctl [flags] dropin show|rm <unit> <name>
//	svcctl --version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/loggo/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/axondata/go-systemctl"
)

var logger = loggo.GetLogger("svcctl")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code, err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "svcctl: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) (int, error) {
	fs := newFlagSet()
	cfg, rest, err := loadConfig(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0, nil
	}
	if err != nil {
		return 2, err
	}

	if v, _ := fs.GetBool("version"); v {
		fmt.Fprintln(stdout, versionString())
		return 0, nil
	}

	if err := setupLogging(cfg.LogLevel); err != nil {
		return 2, err
	}

	a := &app{
		cfg:        cfg,
		out:        stdout,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}

	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
		return 2, nil
	}

	return a.dispatch(ctx, rest[0], rest[1:])
}

func versionString() string {
	info := systemctl.GetVersion()
	return fmt.Sprintf("svcctl %s (%s)", info.Version, info.Backend)
}

func setupLogging(level string) error {
	if _, ok := loggo.ParseLevel(level); !ok {
		return fmt.Errorf("invalid log level %q", level)
	}
	writer := loggo.NewSimpleWriter(os.Stderr, logFormatter)
	if _, err := loggo.ReplaceDefaultWriter(writer); err != nil {
		return err
	}
	return loggo.ConfigureLoggers(fmt.Sprintf("<root>=%s", level))
}

func logFormatter(entry loggo.Entry) string {
	ts := entry.Timestamp.In(time.UTC).Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s %s %s %s", ts, entry.Level, entry.Module, entry.Message)
}

const usage = `usage: svcctl [flags] <command> [args]

commands:
  status <unit>...                        show the state of units
  start|restart|stop <unit>...            change the run state and wait for it
  enable|disable <unit>...                change the boot-time state
  edit <unit>                             open the unit file in an editor
  watch <unit>                            print state changes until interrupted
  dropin set <unit> <name> <S.Key=Val>... write a drop-in override
  dropin show|rm <unit> <name>            print or delete a drop-in override

flags:
`
