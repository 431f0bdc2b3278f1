package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// TerminationSignals end the process with a 128+signo status
var TerminationSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGQUIT}

// Controller turns termination signals into context cancellation and a
// conventional exit status. SIGHUP is ignored so the process survives
// losing its terminal.
type Controller struct {
	log   logrus.FieldLogger
	grace time.Duration
	exit  func(int)

	sigCh  chan os.Signal
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	received os.Signal
	closers  []func() error
}

// NewController creates a controller. After a signal the process is forced
// to exit if it has not shut down within grace; zero disables the deadline.
func NewController(log logrus.FieldLogger, grace time.Duration) *Controller {
	return &Controller{
		log:   log,
		grace: grace,
		exit:  os.Exit,
		sigCh: make(chan os.Signal, 1),
	}
}

// Install registers the signal handlers and returns a context that is
// cancelled when a termination signal arrives.
func (c *Controller) Install(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel

	signal.Ignore(unix.SIGHUP)
	signal.Notify(c.sigCh, TerminationSignals...)

	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		select {
		case sig := <-c.sigCh:
			c.handle(sig)
		case <-ctx.Done():
		}
	}()

	return ctx
}

// OnShutdown registers fn to run when a termination signal arrives.
// Closers run in registration order.
func (c *Controller) OnShutdown(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// Stop unregisters the handlers. Pending signals are dropped.
func (c *Controller) Stop() {
	signal.Stop(c.sigCh)
	if c.cancel != nil {
		c.cancel()
	}
}

// Signal returns the termination signal received, or nil
func (c *Controller) Signal() os.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

// ExitCode returns 128+signo after a termination signal and 0 otherwise
func (c *Controller) ExitCode() int {
	return exitCode(c.Signal())
}

func exitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 0
}

func (c *Controller) handle(sig os.Signal) {
	c.mu.Lock()
	c.received = sig
	closers := append([]func() error(nil), c.closers...)
	c.mu.Unlock()

	c.log.Infof("Received %v, shutting down", sig)
	if c.cancel != nil {
		c.cancel()
	}

	for _, fn := range closers {
		if err := fn(); err != nil {
			c.log.Warnf("Error during shutdown: %v", err)
		}
	}

	if c.grace > 0 {
		code := exitCode(sig)
		time.AfterFunc(c.grace, func() {
			c.log.Warnf("Shutdown did not finish within %v, exiting", c.grace)
			c.exit(code)
		})
	}
}
