package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"

	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// errNoPath is returned when the save dialog yields no file.
var errNoPath = errors.New("no file selected")

// exporter writes snapshots as PNG files and onto the system clipboard.
type exporter struct {
	log canvas.Logger

	// askPath prompts for a destination; clip stores PNG bytes on the
	// clipboard. Both are replaced in tests.
	askPath func(suggest string) (string, error)
	clip    func(png []byte) error
}

func newExporter(log canvas.Logger) *exporter {
	return &exporter{
		log:     log,
		askPath: saveDialog,
		clip:    clipboardImage,
	}
}

// Save implements lua.Exporter. A path without an extension gets ".png".
func (e *exporter) Save(img image.Image, path string) (string, error) {
	if path == "" {
		p, err := e.askPath("canvas.png")
		if err != nil {
			return "", err
		}
		if p == "" {
			return "", errNoPath
		}
		path = p
	}
	path = filepath.Clean(path)
	if filepath.Ext(path) == "" {
		path += ".png"
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	e.log.Debug("snapshot saved", "path", path, "bytes", len(data))
	return path, nil
}

// Copy implements lua.Exporter.
func (e *exporter) Copy(img image.Image) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	if err := e.clip(data); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	e.log.Debug("snapshot copied", "bytes", len(data))
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func saveDialog(suggest string) (string, error) {
	path, err := dialog.File().
		Title("Save canvas").
		Filter("PNG image", "png").
		SetStartFile(suggest).
		Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", errNoPath
	}
	return path, err
}

func clipboardImage(data []byte) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
