package service

import (
	"testing"
	"time"
)

func TestStreaks(t *testing.T) {
	day := func(y int, m time.Month, d, hour int) time.Time {
		return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
	}
	now := day(2026, 3, 10, 15)

	tests := []struct {
		name        string
		completions []time.Time
		now         time.Time
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "no completions",
			completions: nil,
			now:         now,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "single completion today",
			completions: []time.Time{day(2026, 3, 10, 8)},
			now:         now,
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name: "three consecutive days ending today",
			completions: []time.Time{
				day(2026, 3, 8, 9),
				day(2026, 3, 9, 20),
				day(2026, 3, 10, 7),
			},
			now:         now,
			wantCurrent: 3,
			wantLongest: 3,
		},
		{
			name: "streak survives until end of today",
			completions: []time.Time{
				day(2026, 3, 8, 9),
				day(2026, 3, 9, 20),
			},
			now:         now,
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "gap breaks current streak but keeps longest",
			completions: []time.Time{
				day(2026, 3, 1, 9),
				day(2026, 3, 2, 9),
				day(2026, 3, 3, 9),
				day(2026, 3, 4, 9),
				day(2026, 3, 9, 9),
				day(2026, 3, 10, 9),
			},
			now:         now,
			wantCurrent: 2,
			wantLongest: 4,
		},
		{
			name: "stale streak yields zero current",
			completions: []time.Time{
				day(2026, 3, 1, 9),
				day(2026, 3, 2, 9),
			},
			now:         now,
			wantCurrent: 0,
			wantLongest: 2,
		},
		{
			name: "multiple completions same day count once",
			completions: []time.Time{
				day(2026, 3, 9, 8),
				day(2026, 3, 9, 12),
				day(2026, 3, 9, 20),
				day(2026, 3, 10, 7),
			},
			now:         now,
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "unsorted input",
			completions: []time.Time{
				day(2026, 3, 10, 7),
				day(2026, 3, 8, 9),
				day(2026, 3, 9, 20),
			},
			now:         now,
			wantCurrent: 3,
			wantLongest: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := Streaks(tt.completions, time.UTC, tt.now)
			if current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", current, tt.wantCurrent)
			}
			if longest != tt.wantLongest {
				t.Errorf("longest = %d, want %d", longest, tt.wantLongest)
			}
		})
	}
}

func TestStreaksRespectsTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// 2026-03-10 03:00 UTC is still 2026-03-09 in New York
	completions := []time.Time{
		time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	current, longest := Streaks(completions, ny, now)
	if current != 2 {
		t.Errorf("current = %d, want 2", current)
	}
	if longest != 2 {
		t.Errorf("longest = %d, want 2", longest)
	}
}
