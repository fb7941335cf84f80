// validate.go: checks loaded settings for values the pipeline cannot work with.
package conf

import (
	"github.com/campustrail/campustrail/internal/errors"
)

// ValidateSettings checks the loaded settings and returns a validation
// error describing the first problem found.
func ValidateSettings(settings *Settings) error {
	if settings.Timeline.InactivityDays < 1 {
		return validationError("timeline.inactivitydays must be at least 1", "timeline.inactivitydays", settings.Timeline.InactivityDays)
	}
	if settings.Anomaly.GapDays < 1 {
		return validationError("anomaly.gapdays must be at least 1", "anomaly.gapdays", settings.Anomaly.GapDays)
	}
	if settings.Anomaly.SpikeSigma <= 0 {
		return validationError("anomaly.spikesigma must be positive", "anomaly.spikesigma", settings.Anomaly.SpikeSigma)
	}
	if settings.Data.Dir == "" {
		return validationError("data.dir must not be empty", "data.dir", settings.Data.Dir)
	}
	return nil
}

// validationError creates a categorized validation error with field context.
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("conf").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", value).
		Build()
}
