//go:build !linux && !noebiten

package ebitenkit

// applyWindowHints is a no-op outside X11; KeepAbove is still applied
// through ebiten.SetWindowFloating.
func applyWindowHints(skipTaskbar, keepAbove bool) error {
	return nil
}

func closeWindowHints() {}
