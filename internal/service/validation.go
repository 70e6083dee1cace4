package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-organizer/internal/models"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// NewValidator returns a validator with the timetable-specific tags
// registered. "clock" accepts 24-hour HH:MM strings.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// ensureValidator registers the custom tags on validators handed in by callers.
func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateSubject applies the rules every stored subject must satisfy,
// whichever path it arrives by: a non-blank name, a day index in 0..6, and
// HH:MM start and end times with start strictly before end.
func ValidateSubject(s models.Subject) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Day < 0 || s.Day >= models.DaysPerWeek {
		return fmt.Errorf("day %d out of range", s.Day)
	}
	if !clockPattern.MatchString(s.StartTime) {
		return fmt.Errorf("startTime %q is not HH:MM", s.StartTime)
	}
	if !clockPattern.MatchString(s.EndTime) {
		return fmt.Errorf("endTime %q is not HH:MM", s.EndTime)
	}
	// Zero-padded HH:MM strings order lexically the same as chronologically.
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("startTime %s must be before endTime %s", s.StartTime, s.EndTime)
	}
	return nil
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
