// Package systemctl provides a handle for controlling a single systemd unit
// by running the systemctl command.
//
// The core functionality centers around the Service type, which caches the
// unit's properties as printed by `systemctl show` and runs systemctl to
// change the unit's state:
//
//	svc, err := systemctl.Open(ctx, "nginx", systemctl.WithSudo(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Restart and wait for active (running)
//	err = svc.Restart(ctx)
//
//	fmt.Println(svc.Status()) // "active (running)"
//
// Property names are camelCased ("ActiveState" becomes "activeState"),
// except names that start with an acronym such as CPU or IO. Values are
// coerced to integers and booleans where they look like one; see ParseValue.
//
// # Waiting for state
//
// Restart, Start and Stop poll the unit after the command returns until
// it reaches the expected state or WaitTimeout elapses. WaitForState is
// exported for callers that need other targets:
//
//	err := svc.WaitForState(ctx, "failed", "", 2*time.Second)
//	if errors.Is(err, systemctl.ErrTimeout) {
//	    ...
//	}
//
// # Manager for Bulk Operations
//
// The Manager type runs one operation over many units concurrently, each
// with its own Service handle:
//
//	manager := systemctl.NewManager(
//	    systemctl.WithConcurrency(5),
//	    systemctl.WithServiceOptions(systemctl.WithSudo(true)),
//	)
//	err = manager.Restart(ctx, "web", "db", "cache")
package systemctl
