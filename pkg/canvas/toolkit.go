//go:build !noebiten

package canvas

import (
	"github.com/opd-ai/go-canvas/internal/toolkit"
	"github.com/opd-ai/go-canvas/internal/toolkit/ebitenkit"
)

// defaultLoop builds the ebiten toolkit loop.
func defaultLoop() toolkit.Loop {
	return ebitenkit.New()
}
