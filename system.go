package systemctl

import (
	"github.com/coreos/go-systemd/v22/util"
)

// Available reports whether systemd is the running init system
func Available() bool {
	return util.IsRunningSystemd()
}

// RequireSystemd returns ErrNotSystemd when systemd is not running
func RequireSystemd() error {
	if !Available() {
		return ErrNotSystemd
	}
	return nil
}
