package lua

import (
	"errors"

	"github.com/opd-ai/go-canvas/internal/raster"
)

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilCanvas is returned when a session is created without a canvas.
	ErrNilCanvas = errors.New("canvas cannot be nil")

	// ErrScriptAborted is returned when a script panics, usually because it
	// ran past its CPU or memory limit.
	ErrScriptAborted = errors.New("script aborted")

	// ErrNoExporter is returned by canvas.save and canvas.copy when the
	// session has no Exporter.
	ErrNoExporter = errors.New("export not available")

	// ErrInvalidColor is returned for colour arguments that are neither a
	// colour string nor an {r, g, b[, a]} table.
	ErrInvalidColor = raster.ErrInvalidColor
)
