package repository

import (
	"testing"
	"time"
)

func TestDaysToCSV(t *testing.T) {
	tests := []struct {
		name string
		days []time.Weekday
		want string
	}{
		{
			name: "empty",
			days: nil,
			want: "",
		},
		{
			name: "single day",
			days: []time.Weekday{time.Monday},
			want: "1",
		},
		{
			name: "multiple days",
			days: []time.Weekday{time.Sunday, time.Wednesday, time.Saturday},
			want: "0,3,6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysToCSV(tt.days); got != tt.want {
				t.Errorf("daysToCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysFromCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []time.Weekday
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "single day",
			input: "5",
			want:  []time.Weekday{time.Friday},
		},
		{
			name:  "multiple days",
			input: "0,3,6",
			want:  []time.Weekday{time.Sunday, time.Wednesday, time.Saturday},
		},
		{
			name:  "whitespace tolerated",
			input: " 1 , 2 ",
			want:  []time.Weekday{time.Monday, time.Tuesday},
		},
		{
			name:  "malformed entries skipped",
			input: "1,x,9,2",
			want:  []time.Weekday{time.Monday, time.Tuesday},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := daysFromCSV(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("daysFromCSV(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("daysFromCSV(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
