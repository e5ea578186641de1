package canvas

import (
	"github.com/opd-ai/go-canvas/internal/bridge"
	"github.com/opd-ai/go-canvas/internal/scene"
)

var (
	// ErrOutOfRange reports a size, scale, thickness or pixel coordinate
	// outside its permitted range.
	ErrOutOfRange = scene.ErrOutOfRange

	// ErrInvalidArgument reports a malformed argument.
	ErrInvalidArgument = scene.ErrInvalidArgument

	// ErrNotRunning is returned by calls that need the UI thread once it has
	// stopped, including any such call on a closed canvas.
	ErrNotRunning = bridge.ErrNotRunning
)

// PanicError is returned when a panic occurs in work run on the UI thread.
type PanicError = bridge.PanicError
