package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"typeb/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failure for a multi-field input
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements: at least 8
// characters containing an uppercase letter, a lowercase letter, a digit,
// and a special character. The error names every missing class.
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSpecial {
		missing = append(missing, "a special character")
	}

	if len(missing) > 0 {
		return ValidationError{
			Field:   "password",
			Message: "password must contain " + strings.Join(missing, ", "),
		}
	}

	return nil
}

// ValidateDisplayName checks if a display name is valid
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "displayName", Message: "display name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "displayName", Message: "display name must be at least 2 characters"}
	}
	if len(name) > 50 {
		return ValidationError{Field: "displayName", Message: "display name must be at most 50 characters"}
	}
	return nil
}

// ValidateTaskTitle checks if a task title is valid
func ValidateTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) < 3 {
		return ValidationError{Field: "title", Message: "title must be at least 3 characters"}
	}
	if len(title) > 100 {
		return ValidationError{Field: "title", Message: "title must be at most 100 characters"}
	}
	return nil
}

// ValidateRecurrencePattern checks if a recurrence pattern is well formed
func ValidateRecurrencePattern(p *models.RecurrencePattern) error {
	if p == nil {
		return ValidationError{Field: "recurrence", Message: "recurrence pattern is required for recurring tasks"}
	}

	switch p.Frequency {
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return ValidationError{Field: "recurrence.frequency", Message: "frequency must be daily, weekly, or monthly"}
	}

	if p.Interval < 1 {
		return ValidationError{Field: "recurrence.interval", Message: "interval must be at least 1"}
	}
	if p.Interval > 30 {
		return ValidationError{Field: "recurrence.interval", Message: "interval must be at most 30"}
	}

	if p.Frequency == models.RecurrenceWeekly {
		for _, d := range p.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return ValidationError{Field: "recurrence.daysOfWeek", Message: "days of week must be between 0 (Sunday) and 6 (Saturday)"}
			}
		}
	} else if len(p.DaysOfWeek) > 0 {
		return ValidationError{Field: "recurrence.daysOfWeek", Message: "days of week only apply to weekly recurrence"}
	}

	return nil
}

// CreateTaskInput carries the fields validated before task creation
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Points      int
	IsRecurring bool
	Recurrence  *models.RecurrencePattern
}

// ValidateCreateTaskInput validates a task creation request and returns the
// full set of field errors, not just the first
func ValidateCreateTaskInput(in CreateTaskInput) ValidationErrors {
	var errs ValidationErrors

	if err := ValidateTaskTitle(in.Title); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if len(in.Description) > 500 {
		errs = append(errs, ValidationError{Field: "description", Message: "description must be at most 500 characters"})
	}
	if !in.Priority.Valid() {
		errs = append(errs, ValidationError{Field: "priority", Message: "priority must be low, medium, high, or urgent"})
	}
	if in.Points < 0 || in.Points > 1000 {
		errs = append(errs, ValidationError{Field: "points", Message: "points must be between 0 and 1000"})
	}
	if in.IsRecurring {
		if err := ValidateRecurrencePattern(in.Recurrence); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	return errs
}
