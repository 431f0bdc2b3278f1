package detector

import (
	"fmt"
	"os"

	"github.com/autorandr/autorandr-launcher/pkg/display"
	"github.com/autorandr/autorandr-launcher/pkg/integrations/x11"
)

// New opens a change-notification source for the given X display ($DISPLAY when empty).
// Only X11 RandR is supported; a pure Wayland session is reported as a connection error.
func New(displayName string) (display.Source, error) {
	if displayName == "" && DetectDisplayServer() == "wayland" {
		return nil, &display.ConnectError{
			Code: display.ConnClosedParseErr,
			Err:  fmt.Errorf("wayland session without DISPLAY, RandR notifications need X11 or XWayland"),
		}
	}

	src, err := x11.Connect(displayName)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if x11Display != "" {
		return "x11"
	}

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" {
		return "x11"
	}

	return "unknown"
}
