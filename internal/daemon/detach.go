package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// ChildEnv marks the re-executed background process
const ChildEnv = "AUTORANDR_LAUNCHER_DAEMON_CHILD"

// ShouldDaemonize reports whether the process has to detach.
// Verbose output would be lost in a detached process, so verbose always wins.
func ShouldDaemonize(daemonize, verbose bool) bool {
	return daemonize && !verbose
}

// IsChild reports whether this process is the detached copy started by Detach
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

// Detach starts a copy of the running binary in a new session with stdio bound
// to /dev/null and the same working directory, and returns its PID.
// The caller is expected to exit afterwards.
func Detach() (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to locate executable: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	procAttr := &os.ProcAttr{
		Env:   append(os.Environ(), ChildEnv+"=1"),
		Files: []*os.File{devNull, devNull, devNull},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	process, err := os.StartProcess(exe, os.Args, procAttr)
	if err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}

	pid := process.Pid
	if err := process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release daemon process: %w", err)
	}
	return pid, nil
}
