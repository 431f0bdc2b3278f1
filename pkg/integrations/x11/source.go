package x11

import (
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/autorandr/autorandr-launcher/pkg/display"
)

// RandR 1.2 is the first version reporting output hotplug through ScreenChangeNotify
const (
	randrMajor = 1
	randrMinor = 2
)

// Source implements display.Source on top of the X11 RandR extension
type Source struct {
	conn *xgb.Conn
	root xproto.Window
	now  func() time.Time

	closeOnce sync.Once
}

// Connect opens a connection to the X server named by displayName ($DISPLAY when empty),
// initializes RandR and resolves the default screen.
// Any failure is returned as *display.ConnectError.
func Connect(displayName string) (*Source, error) {
	conn, err := xgb.NewConnDisplay(displayName)
	if err != nil {
		return nil, &display.ConnectError{Code: classifyConnError(err), Err: err}
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, &display.ConnectError{
			Code: display.ConnClosedExtNotSupported,
			Err:  errors.Wrap(err, "RandR extension unavailable"),
		}
	}

	if _, err := randr.QueryVersion(conn, randrMajor, randrMinor).Reply(); err != nil {
		conn.Close()
		return nil, &display.ConnectError{
			Code: display.ConnClosedExtNotSupported,
			Err:  errors.Wrap(err, "failed to query RandR version"),
		}
	}

	setup := xproto.Setup(conn)
	if setup == nil || conn.DefaultScreen < 0 || conn.DefaultScreen >= len(setup.Roots) {
		conn.Close()
		return nil, &display.ConnectError{
			Code: display.ConnClosedInvalidScreen,
			Err:  errors.Errorf("default screen %d does not exist", conn.DefaultScreen),
		}
	}

	return &Source{
		conn: conn,
		root: setup.DefaultScreen(conn).Root,
		now:  time.Now,
	}, nil
}

// classifyConnError maps an xgb connection failure onto an XCB-style error code
func classifyConnError(err error) int {
	var opErr *net.OpError
	switch {
	case errors.As(err, &opErr):
		return display.ConnError
	case strings.Contains(err.Error(), "display string"):
		return display.ConnClosedParseErr
	default:
		return display.ConnError
	}
}

// Name returns "x11"
func (s *Source) Name() string {
	return "x11"
}

// Subscribe selects screen change notifications on the default root window
func (s *Source) Subscribe() error {
	err := randr.SelectInputChecked(s.conn, s.root, randr.NotifyMaskScreenChange).Check()
	if err != nil {
		return errors.Wrap(err, "failed to select RandR screen change input")
	}
	return nil
}

// Next blocks until a screen change notification arrives.
// Other events on the connection are discarded.
func (s *Source) Next() (*display.Notification, error) {
	for {
		ev, xerr := s.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, display.ErrClosed
		}
		if xerr != nil {
			return nil, errors.Errorf("X protocol error: %v", xerr)
		}

		if n, ok := notificationFromEvent(ev, s.now()); ok {
			return n, nil
		}
	}
}

// Close closes the X connection. It is safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(s.conn.Close)
	return nil
}

func notificationFromEvent(ev xgb.Event, received time.Time) (*display.Notification, bool) {
	sc, ok := ev.(randr.ScreenChangeNotifyEvent)
	if !ok {
		return nil, false
	}
	return &display.Notification{
		Timestamp:       uint32(sc.Timestamp),
		ConfigTimestamp: uint32(sc.ConfigTimestamp),
		Root:            uint32(sc.Root),
		Width:           sc.Width,
		Height:          sc.Height,
		Received:        received,
	}, true
}
