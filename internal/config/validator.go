package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couponwatch/couponwatch/internal/common"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	// Register custom validation for run mode
	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "onetime", "automated":
			return true
		default:
			return false
		}
	})

	// Register custom validation for log level
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	// Register custom validation for log format
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "json", "text":
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(messages, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if !cfg.SourcesConfig.RealDiscount.Enabled &&
		!cfg.SourcesConfig.Discudemy.Enabled &&
		!cfg.SourcesConfig.CourseVania.Enabled &&
		!cfg.SourcesConfig.UdemyFreebies.Enabled {
		return common.WrapError(common.ErrInvalidConfiguration, "at least one source must be enabled")
	}

	return nil
}
