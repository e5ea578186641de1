package toolkit

import "errors"

var (
	// ErrLoopUsed is returned by Init on a loop that has already run.
	ErrLoopUsed = errors.New("toolkit loop cannot be restarted")

	// ErrWindowLimit is returned when a toolkit cannot host another window.
	ErrWindowLimit = errors.New("toolkit window limit reached")

	// ErrInvalidSize is returned for windows with a non-positive size.
	ErrInvalidSize = errors.New("invalid window size")
)

// ValidateConfig checks the parts of a WindowConfig every toolkit relies on.
func ValidateConfig(cfg WindowConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidSize
	}
	return nil
}
