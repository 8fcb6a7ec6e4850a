package timeago

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{
			name:     "zero",
			d:        0,
			expected: "just now",
		},
		{
			name:     "under a minute",
			d:        59 * time.Second,
			expected: "just now",
		},
		{
			name:     "exactly one minute",
			d:        60 * time.Second,
			expected: "1m ago",
		},
		{
			name:     "last minute before hour",
			d:        59*time.Minute + 59*time.Second,
			expected: "59m ago",
		},
		{
			name:     "exactly one hour",
			d:        time.Hour,
			expected: "1h ago",
		},
		{
			name:     "last hour before day",
			d:        23*time.Hour + 59*time.Minute,
			expected: "23h ago",
		},
		{
			name:     "exactly one day",
			d:        24 * time.Hour,
			expected: "1d ago",
		},
		{
			name:     "under a month",
			d:        29 * 24 * time.Hour,
			expected: "29d ago",
		},
		{
			name:     "exactly thirty days",
			d:        30 * 24 * time.Hour,
			expected: "1mo ago",
		},
		{
			name:     "just under a year",
			d:        364 * 24 * time.Hour,
			expected: "12mo ago",
		},
		{
			name:     "exactly one year",
			d:        365 * 24 * time.Hour,
			expected: "1y ago",
		},
		{
			name:     "several years",
			d:        800 * 24 * time.Hour,
			expected: "2y ago",
		},
		{
			name:     "future clamps to just now",
			d:        -5 * time.Minute,
			expected: "just now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}

func TestFormatUsesNowArgument(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "just now", Format(now, now.Add(-30*time.Second)))
	require.Equal(t, "5m ago", Format(now, now.Add(-5*time.Minute)))
	require.Equal(t, "3h ago", Format(now, now.Add(-3*time.Hour)))
	require.Equal(t, "10d ago", Format(now, now.Add(-10*24*time.Hour)))
}

// Older timestamps must never render as a smaller age than newer ones.
func TestFormatDurationMonotonic(t *testing.T) {
	durations := []time.Duration{
		0,
		30 * time.Second,
		59 * time.Second,
		time.Minute,
		30 * time.Minute,
		59 * time.Minute,
		time.Hour,
		12 * time.Hour,
		23 * time.Hour,
		24 * time.Hour,
		15 * 24 * time.Hour,
		29 * 24 * time.Hour,
		30 * 24 * time.Hour,
		200 * 24 * time.Hour,
		364 * 24 * time.Hour,
		365 * 24 * time.Hour,
		1000 * 24 * time.Hour,
	}

	rank := func(s string) int {
		var n int
		var unit string
		if s == "just now" {
			return 0
		}
		_, err := fmt.Sscanf(s, "%d%s", &n, &unit)
		require.NoError(t, err)
		multipliers := map[string]int{
			"m": 1, "h": 60, "d": 60 * 24, "mo": 60 * 24 * 30, "y": 60 * 24 * 365,
		}
		require.Contains(t, multipliers, unit)
		return n * multipliers[unit]
	}

	prev := -1
	for _, d := range durations {
		got := rank(FormatDuration(d))
		require.GreaterOrEqual(t, got, prev, "rendering of %v regressed", d)
		prev = got
	}
}
