package detector

import (
	"errors"
	"testing"

	"github.com/autorandr/autorandr-launcher/pkg/display"
)

func TestNew(t *testing.T) {
	src, err := New("")
	if err != nil {
		t.Logf("New() returned error (may be expected): %v", err)
		return
	}

	if src == nil {
		t.Fatal("New() returned nil source without error")
	}

	if src.Name() != "x11" {
		t.Errorf("Name() = %s, want x11", src.Name())
	}

	if err := src.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		sessionType    string
		waylandDisplay string
		x11Display     string
		expected       string
	}{
		{
			name:           "Wayland session",
			sessionType:    "wayland",
			waylandDisplay: "wayland-0",
			x11Display:     "",
			expected:       "wayland",
		},
		{
			name:           "Wayland session with XWayland",
			sessionType:    "wayland",
			waylandDisplay: "wayland-0",
			x11Display:     ":0",
			expected:       "x11",
		},
		{
			name:           "X11 session",
			sessionType:    "x11",
			waylandDisplay: "",
			x11Display:     ":0",
			expected:       "x11",
		},
		{
			name:           "Unknown session",
			sessionType:    "",
			waylandDisplay: "",
			x11Display:     "",
			expected:       "unknown",
		},
		{
			name:           "Wayland display set",
			sessionType:    "",
			waylandDisplay: "wayland-1",
			x11Display:     "",
			expected:       "wayland",
		},
		{
			name:           "X11 display set",
			sessionType:    "",
			waylandDisplay: "",
			x11Display:     ":1",
			expected:       "x11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.x11Display)

			if result := DetectDisplayServer(); result != tt.expected {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestNewPureWayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	t.Setenv("DISPLAY", "")

	_, err := New("")

	var connErr *display.ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("New() error = %v, want *display.ConnectError", err)
	}
	if connErr.ExitCode() != display.ConnClosedParseErr {
		t.Errorf("ExitCode() = %d, want %d", connErr.ExitCode(), display.ConnClosedParseErr)
	}
}

func TestNewWithoutDisplay(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	src, err := New("")
	if err == nil {
		src.Close()
		t.Fatal("New() succeeded without any display")
	}

	var connErr *display.ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("New() error = %T, want *display.ConnectError", err)
	}
}
