package systemctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/google/renameio/v2"
)

// unitTypes are the suffixes systemd recognizes as a unit type
var unitTypes = []string{
	".service", ".socket", ".device", ".mount", ".automount", ".swap",
	".target", ".path", ".timer", ".slice", ".scope",
}

// UnitFileName returns the unit name with a ".service" suffix added when
// the name does not end in a unit type
func UnitFileName(name string) string {
	for _, suffix := range unitTypes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + ".service"
}

// DropInDir returns the drop-in directory for the unit under UnitDir
func (s *Service) DropInDir() string {
	return filepath.Join(s.UnitDir, UnitFileName(s.Name)+".d")
}

// DropInPath returns the path of the named drop-in override
func (s *Service) DropInPath(name string) string {
	return filepath.Join(s.DropInDir(), name+".conf")
}

func validDropInName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid drop-in name %q", name)
	}
	return nil
}

// WriteDropIn writes a drop-in override for the unit, reloads the systemd
// manager configuration and refreshes the cache. It is the
// non-interactive counterpart of Edit. Returns the path written.
func (s *Service) WriteDropIn(ctx context.Context, name string, opts []*unit.UnitOption) (string, error) {
	if err := validDropInName(name); err != nil {
		return "", &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
	}
	if len(opts) == 0 {
		return "", &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: errors.New("no unit options given")}
	}

	content, err := io.ReadAll(unit.Serialize(opts))
	if err != nil {
		return "", &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: fmt.Errorf("serializing drop-in: %w", err)}
	}

	path := s.DropInPath(name)
	if err := s.writeFile(ctx, path, content); err != nil {
		return "", err
	}
	s.logger.Debugf("wrote drop-in %s", path)

	if err := s.DaemonReload(ctx); err != nil {
		return path, err
	}
	return path, nil
}

// ReadDropIn parses the named drop-in override
func (s *Service) ReadDropIn(name string) ([]*unit.UnitOption, error) {
	if err := validDropInName(name); err != nil {
		return nil, &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
	}

	f, err := os.Open(s.DropInPath(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts, err := unit.DeserializeOptions(f)
	if err != nil {
		return nil, fmt.Errorf("parsing drop-in %s: %w", f.Name(), err)
	}
	return opts, nil
}

// RemoveDropIn deletes the named drop-in override and reloads the systemd
// manager configuration. Removing a drop-in that does not exist is not an error.
func (s *Service) RemoveDropIn(ctx context.Context, name string) error {
	if err := validDropInName(name); err != nil {
		return &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
	}

	path := s.DropInPath(name)
	if s.UseSudo {
		if _, err := s.runPrivileged(ctx, nil, "rm", "-f", path); err != nil {
			return err
		}
	} else if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
	}

	return s.DaemonReload(ctx)
}

// writeFile writes content atomically, or through `sudo tee` when the
// handle uses sudo
func (s *Service) writeFile(ctx context.Context, path string, content []byte) error {
	if !s.UseSudo {
		if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
			return &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
		}
		if err := renameio.WriteFile(path, content, FileMode); err != nil {
			return &OpError{Op: OpWriteDropIn, Unit: s.Name, Err: err}
		}
		return nil
	}

	if _, err := s.runPrivileged(ctx, nil, "mkdir", "-p", filepath.Dir(path)); err != nil {
		return err
	}
	// Equivalent to: echo "content" | sudo tee /path/to/file
	_, err := s.runPrivileged(ctx, content, "tee", path)
	return err
}

// runPrivileged runs a non-systemctl helper through the sudo command,
// feeding stdin when given
func (s *Service) runPrivileged(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	var out bytes.Buffer
	stdio := Stdio{Stdin: bytes.NewReader(stdin), Stdout: &out, Stderr: &out}

	code, err := s.runner.RunInteractive(ctx, stdio, s.SudoCommand, args...)
	if err == nil && code != 0 {
		err = fmt.Errorf("%s %s exited with status %d", s.SudoCommand, args[0], code)
	}
	if err != nil {
		return out.Bytes(), &OpError{Op: OpWriteDropIn, Unit: s.Name, Stderr: out.String(), Err: err}
	}
	return out.Bytes(), nil
}
