package exam

import (
	"testing"
	"time"
)

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{3900 * time.Second, "1 hour 5 minutes"},
		{time.Hour, "1 hour"},
		{2*time.Hour + time.Minute, "2 hours 1 minute"},
		{30 * time.Minute, "30 minutes"},
		{0, "0 minutes"},
	}
	for _, tt := range tests {
		if got := FormatLimit(tt.in); got != tt.want {
			t.Errorf("FormatLimit(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{65 * time.Second, "01:05"},
		{3900 * time.Second, "1:05:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{80: "80%", 66.67: "66.67%", 12.5: "12.5%", 0: "0%"}
	for in, want := range tests {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}
