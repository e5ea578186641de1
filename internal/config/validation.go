package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/opd-ai/go-canvas/internal/raster"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues such as very fast tick rates.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// maxDimension is the size above which a window dimension draws a warning.
const maxDimension = 10000

// Validator checks a Config.
type Validator struct {
	// requireScript makes an empty Script an error.
	requireScript bool
}

// NewValidator creates a Validator that requires a script.
func NewValidator() *Validator {
	return &Validator{requireScript: true}
}

// WithRequireScript controls whether an empty Script is an error.
func (v *Validator) WithRequireScript(require bool) *Validator {
	v.requireScript = require
	return v
}

// Validate checks every field and reports all problems at once.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if v.requireScript && strings.TrimSpace(cfg.Script) == "" {
		result.AddError("script", "required")
	}
	v.validateWindow(&cfg.Window, result)
	v.validateUpdate(&cfg.Update, result)

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		result.AddError("log_level", err.Error())
	}
	if cfg.Output != "" && !strings.EqualFold(filepath.Ext(cfg.Output), ".png") {
		result.AddWarning("output", fmt.Sprintf("%q is written as PNG", cfg.Output))
	}
	return result
}

func (v *Validator) validateWindow(wc *WindowConfig, result *ValidationResult) {
	if wc.Width <= 0 {
		result.AddError("window.width", fmt.Sprintf("must be positive, got %d", wc.Width))
	}
	if wc.Height <= 0 {
		result.AddError("window.height", fmt.Sprintf("must be positive, got %d", wc.Height))
	}
	if wc.Width > maxDimension {
		result.AddWarning("window.width", fmt.Sprintf("unusually large value %d", wc.Width))
	}
	if wc.Height > maxDimension {
		result.AddWarning("window.height", fmt.Sprintf("unusually large value %d", wc.Height))
	}

	if wc.Scale < 1 || (wc.Width > 0 && wc.Scale > wc.Width) {
		result.AddError("window.scale", fmt.Sprintf("must be in [1, width], got %d", wc.Scale))
	}

	if _, err := raster.ParseColor(wc.Background); err != nil {
		result.AddError("window.background", err.Error())
	}
	if strings.TrimSpace(wc.Title) == "" {
		result.AddWarning("window.title", "empty, the default title is used")
	}
	if wc.Headless && (wc.KeepAbove || wc.SkipTaskbar) {
		result.AddWarning("window.hints", "ignored in headless mode")
	}
}

func (v *Validator) validateUpdate(uc *UpdateConfig, result *ValidationResult) {
	if uc.Tick < 0 {
		result.AddError("update.tick", fmt.Sprintf("must be non-negative, got %v", uc.Tick))
	}
	if uc.Tick > 0 && uc.Tick < 5*time.Millisecond {
		result.AddWarning("update.tick",
			fmt.Sprintf("very fast interval %v may cause high CPU usage", uc.Tick))
	}
}
