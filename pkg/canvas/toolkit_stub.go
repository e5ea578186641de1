//go:build noebiten

package canvas

import (
	"github.com/opd-ai/go-canvas/internal/toolkit"
	"github.com/opd-ai/go-canvas/internal/toolkit/headless"
)

// defaultLoop falls back to the headless toolkit in noebiten builds.
func defaultLoop() toolkit.Loop {
	return headless.New()
}
