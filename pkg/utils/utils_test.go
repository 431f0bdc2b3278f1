package utils

import (
	"testing"
	"time"
)

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{-2 * time.Second, "2s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m"},
		{time.Hour, "1h"},
		{150 * time.Minute, "2h"},
	}

	for _, tt := range tests {
		if got := FormatRoundedUnit(tt.in); got != tt.want {
			t.Errorf("FormatRoundedUnit(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
