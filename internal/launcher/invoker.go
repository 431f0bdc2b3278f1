package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// ToolPath is the autorandr executable. Override at build time with
// -ldflags "-X github.com/autorandr/autorandr-launcher/internal/launcher.ToolPath=/usr/local/bin/autorandr".
var ToolPath = "/usr/bin/autorandr"

// Arguments passed to the tool on every launch
var toolArgs = []string{"--change", "--default", "default"}

// ExitStartFailed is reported when the tool could not be executed at all
const ExitStartFailed = 127

// Result describes one completed launch
type Result struct {
	StartedAt time.Time
	Duration  time.Duration
	ExitCode  int
	Err       error // non-nil when the tool could not be started or did not exit cleanly
}

// Invoker runs the configuration tool and waits for it to finish
type Invoker struct {
	path   string
	args   []string
	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger
}

// New creates an invoker for ToolPath
func New(log logrus.FieldLogger) *Invoker {
	return newInvoker(ToolPath, log)
}

func newInvoker(path string, log logrus.FieldLogger) *Invoker {
	return &Invoker{
		path:   path,
		args:   append([]string(nil), toolArgs...),
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}
}

// Command returns the full argument vector of a launch
func (i *Invoker) Command() []string {
	return append([]string{i.path}, i.args...)
}

// Launch starts the tool with the current environment and blocks until it exits.
// Failures are logged and reported in the result, never escalated.
func (i *Invoker) Launch() Result {
	cmd := exec.Command(i.path, i.args...)
	cmd.Env = os.Environ()
	cmd.Stdout = i.stdout
	cmd.Stderr = i.stderr

	res := Result{StartedAt: time.Now()}
	i.log.Debugf("Launching %v", i.Command())

	if err := cmd.Start(); err != nil {
		res.ExitCode = ExitStartFailed
		res.Err = fmt.Errorf("failed to start %s: %w", i.path, err)
		res.Duration = time.Since(res.StartedAt)
		i.log.Warnf("%v", res.Err)
		return res
	}

	err := cmd.Wait()
	res.Duration = time.Since(res.StartedAt)
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		i.log.Debugf("%s finished in %v", i.path, res.Duration)
	case errors.As(err, &exitErr):
		res.Err = fmt.Errorf("%s exited abnormally: %w", i.path, err)
		i.log.Infof("%v", res.Err)
	default:
		res.Err = fmt.Errorf("failed waiting for %s: %w", i.path, err)
		i.log.Warnf("%v", res.Err)
	}

	return res
}
