package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	singleinstance "github.com/allan-simon/go-singleinstance"
)

// Daemon guards a PID file so that only one launcher runs per session
type Daemon struct {
	pidFile string
	lock    *os.File
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// Acquire locks the PID file and writes the current PID into it.
// It fails when another live process holds the lock.
func (d *Daemon) Acquire() error {
	lock, err := singleinstance.CreateLockFile(d.pidFile)
	if err != nil {
		if running, pid, _ := d.IsRunning(); running {
			return fmt.Errorf("already running (PID: %d)", pid)
		}
		return fmt.Errorf("failed to lock PID file %s: %w", d.pidFile, err)
	}
	d.lock = lock
	return nil
}

// Release unlocks and removes the PID file
func (d *Daemon) Release() error {
	if d.lock == nil {
		return nil
	}
	d.lock.Close()
	d.lock = nil
	return d.RemovePID()
}

func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the PID recorded in the file belongs to a live process
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0, nil
	}

	return true, pid, nil
}
