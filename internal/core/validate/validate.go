// Package validate provides shared validation functions for task fields.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/remindbot/internal/core/reminder"
)

// Required validates that s is non-empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// TimeOfDay validates a strict zero-padded HH:MM string.
func TimeOfDay(s string) error {
	if !reminder.ValidTimeOfDay(s) {
		return fmt.Errorf("%q: %w", s, reminder.ErrInvalidTime)
	}
	return nil
}

// Task validates the fields of a task before it is stored. The returned error
// is a criterio.FieldErrors naming every bad field.
func Task(owner, description, timeOfDay string) error {
	return criterio.ValidateStruct(
		criterio.Run("owner", owner, Required),
		criterio.Run("description", description, Required),
		criterio.Run("time", timeOfDay, TimeOfDay),
	)
}
