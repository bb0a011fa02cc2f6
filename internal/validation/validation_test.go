package validation

import (
	"strings"
	"testing"
	"time"

	"typeb/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "parent@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+kids@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "parentexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "parent@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "parent @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "Secret1!",
			wantErr:  false,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "too short",
			password: "Ab1!",
			wantErr:  true,
		},
		{
			name:     "missing uppercase",
			password: "secret1!",
			wantErr:  true,
		},
		{
			name:     "missing lowercase",
			password: "SECRET1!",
			wantErr:  true,
		},
		{
			name:     "missing digit",
			password: "Secrets!",
			wantErr:  true,
		},
		{
			name:     "missing special character",
			password: "Secret12",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePasswordNamesAllMissingClasses(t *testing.T) {
	err := ValidatePassword("aaaaaaaa")
	if err == nil {
		t.Fatal("expected error for all-lowercase password")
	}
	msg := err.Error()
	for _, want := range []string{"an uppercase letter", "a digit", "a special character"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Alex Morgan",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "Alex",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "too short",
			input:   "A",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDisplayName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{
			name:    "valid title",
			title:   "Take out the trash",
			wantErr: false,
		},
		{
			name:    "minimum length",
			title:   "Mop",
			wantErr: false,
		},
		{
			name:    "empty title",
			title:   "",
			wantErr: true,
		},
		{
			name:    "too short",
			title:   "Do",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecurrencePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern *models.RecurrencePattern
		wantErr bool
	}{
		{
			name:    "nil pattern",
			pattern: nil,
			wantErr: true,
		},
		{
			name: "valid daily",
			pattern: &models.RecurrencePattern{
				Frequency: models.RecurrenceDaily,
				Interval:  1,
			},
			wantErr: false,
		},
		{
			name: "valid weekly with days",
			pattern: &models.RecurrencePattern{
				Frequency:  models.RecurrenceWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
			},
			wantErr: false,
		},
		{
			name: "valid monthly",
			pattern: &models.RecurrencePattern{
				Frequency: models.RecurrenceMonthly,
				Interval:  2,
			},
			wantErr: false,
		},
		{
			name: "unknown frequency",
			pattern: &models.RecurrencePattern{
				Frequency: "yearly",
				Interval:  1,
			},
			wantErr: true,
		},
		{
			name: "zero interval",
			pattern: &models.RecurrencePattern{
				Frequency: models.RecurrenceDaily,
				Interval:  0,
			},
			wantErr: true,
		},
		{
			name: "interval too large",
			pattern: &models.RecurrencePattern{
				Frequency: models.RecurrenceDaily,
				Interval:  31,
			},
			wantErr: true,
		},
		{
			name: "weekday out of range",
			pattern: &models.RecurrencePattern{
				Frequency:  models.RecurrenceWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Weekday(7)},
			},
			wantErr: true,
		},
		{
			name: "days on daily pattern",
			pattern: &models.RecurrencePattern{
				Frequency:  models.RecurrenceDaily,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecurrencePattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecurrencePattern() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreateTaskInput(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateTaskInput
		wantErrors int
	}{
		{
			name: "valid input",
			input: CreateTaskInput{
				Title:    "Feed the dog",
				Priority: models.PriorityMedium,
				Points:   10,
			},
			wantErrors: 0,
		},
		{
			name: "recurring without pattern",
			input: CreateTaskInput{
				Title:       "Water plants",
				Priority:    models.PriorityLow,
				Points:      5,
				IsRecurring: true,
			},
			wantErrors: 1,
		},
		{
			name: "multiple failures collected",
			input: CreateTaskInput{
				Title:    "",
				Priority: "whenever",
				Points:   -5,
			},
			wantErrors: 3,
		},
		{
			name: "points over cap",
			input: CreateTaskInput{
				Title:    "Clean the garage",
				Priority: models.PriorityHigh,
				Points:   1001,
			},
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCreateTaskInput(tt.input)
			if len(errs) != tt.wantErrors {
				t.Errorf("ValidateCreateTaskInput() returned %d errors (%v), want %d", len(errs), errs, tt.wantErrors)
			}
		})
	}
}
