// Package monitor owns the display connection and turns change notifications
// into serialized launches of the configuration tool.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/autorandr/autorandr-launcher/internal/debounce"
	"github.com/autorandr/autorandr-launcher/internal/launcher"
	"github.com/autorandr/autorandr-launcher/internal/models"
	"github.com/autorandr/autorandr-launcher/pkg/display"
)

// State of the event loop
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribed
	StateWaiting
	StateDispatching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateWaiting:
		return "waiting"
	case StateDispatching:
		return "dispatching"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Connector opens the display notification channel
type Connector func() (display.Source, error)

// Invoker runs the configuration tool synchronously
type Invoker interface {
	Launch() launcher.Result
}

// Recorder stores launches and non-fatal errors. It may be nil.
type Recorder interface {
	RecordLaunch(event *models.LaunchEvent) error
	RecordError(stage string, err error) error
}

// Service runs the event loop against a single display connection
type Service struct {
	connect  Connector
	filter   *debounce.Filter
	invoker  Invoker
	recorder Recorder
	log      logrus.FieldLogger

	state    atomic.Int32
	launches atomic.Int64

	mu     sync.Mutex
	source display.Source
	closed bool
}

// NewService creates a service. recorder may be nil.
func NewService(connect Connector, filter *debounce.Filter, invoker Invoker, recorder Recorder, log logrus.FieldLogger) *Service {
	return &Service{
		connect:  connect,
		filter:   filter,
		invoker:  invoker,
		recorder: recorder,
		log:      log,
	}
}

// State returns the current loop state
func (s *Service) State() State {
	return State(s.state.Load())
}

// Launches returns how many times the tool has been launched
func (s *Service) Launches() int64 {
	return s.launches.Load()
}

func (s *Service) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	if prev != st {
		s.log.Debugf("Loop state %s -> %s", prev, st)
	}
}

// Run connects, subscribes and processes notifications until the channel closes
// or ctx is cancelled. A connection failure is returned as *display.ConnectError.
// A closed channel is a normal shutdown and returns nil.
func (s *Service) Run(ctx context.Context) error {
	defer s.setState(StateClosed)

	s.setState(StateConnecting)
	src, err := s.connect()
	if err != nil {
		return err
	}
	if !s.attach(src) {
		src.Close()
		return nil
	}
	defer s.Close()

	if err := src.Subscribe(); err != nil {
		return fmt.Errorf("failed to subscribe to change notifications: %w", err)
	}
	s.setState(StateSubscribed)
	s.log.Infof("Watching %s for output changes", src.Name())

	for ctx.Err() == nil {
		s.setState(StateWaiting)
		n, err := src.Next()
		if n == nil && (err == nil || errors.Is(err, display.ErrClosed)) {
			s.log.Info("Display connection closed")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warnf("Error while waiting for notifications: %v", err)
			s.storeError("wait", err)
			continue
		}

		s.setState(StateDispatching)
		s.dispatch(n, src.Name())
	}

	s.log.Info("Shutdown requested, leaving event loop")
	return nil
}

func (s *Service) dispatch(n *display.Notification, server string) {
	before := s.filter.State()

	triggered := s.filter.Handle(n, func() {
		s.log.Infof("Output change at server time %d, launching", n.Timestamp)
		res := s.invoker.Launch()
		s.launches.Add(1)
		s.storeLaunch(n, server, res)
	})

	if !triggered {
		s.log.Debugf("Ignoring notification at server time %d (last %d, last launch %s)",
			n.Timestamp, before.LastTimestamp, before.LastWallclock.Format("15:04:05.000"))
	}
}

func (s *Service) attach(src display.Source) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.source = src
	return true
}

// Close releases the display connection, which unblocks a pending wait.
// It is safe to call from another goroutine and more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.source == nil {
		return nil
	}
	src := s.source
	s.source = nil
	return src.Close()
}

func (s *Service) storeLaunch(n *display.Notification, server string, res launcher.Result) {
	if s.recorder == nil {
		return
	}

	event := &models.LaunchEvent{
		ServerTimestamp: n.Timestamp,
		ConfigTimestamp: n.ConfigTimestamp,
		Width:           n.Width,
		Height:          n.Height,
		StartedAt:       res.StartedAt,
		DurationMs:      res.Duration.Milliseconds(),
		ExitCode:        res.ExitCode,
		DisplayServer:   server,
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	}

	if err := s.recorder.RecordLaunch(event); err != nil {
		s.log.Warnf("Failed to record launch: %v", err)
	}
	if res.Err != nil {
		s.storeError("launch", res.Err)
	}
}

func (s *Service) storeError(stage string, err error) {
	if s.recorder == nil {
		return
	}
	if dbErr := s.recorder.RecordError(stage, err); dbErr != nil {
		s.log.Warnf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
