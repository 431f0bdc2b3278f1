// Package debounce collapses bursts of display change notifications into
// single launch decisions.
package debounce

import (
	"time"

	"github.com/autorandr/autorandr-launcher/pkg/display"
)

// Window is the minimum wall-clock spacing between two launches
const Window = time.Second

// State is the filter's memory of the last notification that caused a launch
type State struct {
	Triggered     bool      // false until the first launch; LastTimestamp is meaningless before that
	LastTimestamp uint32    // server timestamp of the last launch
	LastWallclock time.Time // wall-clock time of the last launch, process start before the first one
}

// Filter decides whether a change notification should launch the configuration tool.
// It is owned by a single goroutine and is not safe for concurrent use.
type Filter struct {
	state State
}

// NewFilter creates a filter whose wall-clock reference is the process start time
func NewFilter(started time.Time) *Filter {
	return &Filter{
		state: State{LastWallclock: started},
	}
}

// State returns a copy of the current filter state
func (f *Filter) State() State {
	return f.state
}

// Admit reports whether n should trigger a launch. It does not change state.
//
// A notification is admitted only if its server timestamp is newer than the
// last launched one and it arrived more than Window after the last launch.
// The first notification is measured against the process start time, so
// changes arriving during the first second are dropped.
func (f *Filter) Admit(n *display.Notification) bool {
	if f.state.Triggered && n.Timestamp <= f.state.LastTimestamp {
		return false
	}
	return n.Received.After(f.state.LastWallclock.Add(Window))
}

// Commit records n as the last launched notification
func (f *Filter) Commit(n *display.Notification) {
	f.state.Triggered = true
	f.state.LastTimestamp = n.Timestamp
	f.state.LastWallclock = n.Received
}

// Handle runs launch for an admitted notification and then commits it.
// State advances whether or not the launch succeeded.
func (f *Filter) Handle(n *display.Notification, launch func()) bool {
	if !f.Admit(n) {
		return false
	}
	launch()
	f.Commit(n)
	return true
}
