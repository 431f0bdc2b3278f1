package display

import (
	"errors"
	"fmt"
	"time"
)

// Notification represents a single output/screen change reported by the display server
type Notification struct {
	Timestamp       uint32 // Server time of the change, ordinal in the server's time domain
	ConfigTimestamp uint32 // Server time of the last configuration change
	Root            uint32 // Root window the change belongs to
	Width           uint16 // Screen width in pixels after the change
	Height          uint16 // Screen height in pixels after the change
	Received        time.Time
}

// Source is the interface that a display server change-notification channel must satisfy
type Source interface {
	// Subscribe asks the server to deliver change notifications for the default screen
	Subscribe() error

	// Next blocks until the next change notification arrives.
	// It returns ErrClosed once the connection is gone.
	Next() (*Notification, error)

	// Name returns a short identifier of the display server ("x11")
	Name() string

	// Close releases the connection. It unblocks a pending Next.
	Close() error
}

// ErrClosed is returned by Source.Next when the notification channel has been closed
var ErrClosed = errors.New("display connection closed")

// Connection error codes, numbered like XCB's xcb_connection_has_error results
const (
	ConnError                 = 1
	ConnClosedExtNotSupported = 2
	ConnClosedMemInsufficient = 3
	ConnClosedReqLenExceed    = 4
	ConnClosedParseErr        = 5
	ConnClosedInvalidScreen   = 6
)

// ConnectError is a fatal failure to establish the display connection
type ConnectError struct {
	Code int
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot connect to display server (error %d): %v", e.Code, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this failure, never zero
func (e *ConnectError) ExitCode() int {
	if e.Code <= 0 {
		return ConnError
	}
	return e.Code
}
