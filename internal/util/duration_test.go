package util

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m 0s"},
		{95, "1m 35s"},
		{200, "3m 20s"},
		{3599, "59m 59s"},
		{3600, "1h 0m"},
		{3900, "1h 5m"},
		{7265, "2h 1m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
