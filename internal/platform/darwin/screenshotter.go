//go:build darwin && cgo

package darwin

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/image/draw"
)

// DarwinScreenshotter captures the main display with the screencapture tool.
type DarwinScreenshotter struct {
	desktop *desktop
}

// NewScreenshotter creates a new macOS screenshotter.
func NewScreenshotter(d *desktop) *DarwinScreenshotter {
	return &DarwinScreenshotter{desktop: d}
}

// CaptureDesktop returns the main display scaled to points, so that pixel
// coordinates match the accessibility rectangles on Retina displays.
func (s *DarwinScreenshotter) CaptureDesktop() (image.Image, error) {
	dir, err := os.MkdirTemp("", "uiloc-capture")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "desktop.png")

	var stderr bytes.Buffer
	cmd := exec.Command("screencapture", "-x", "-m", "-t", "png", path)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screencapture failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	f, err := os.Open(path)
	if err != nil {
		// screencapture exits cleanly without writing when screen recording
		// permission is missing.
		return nil, fmt.Errorf("screen recording permission required: grant it at System Settings > Privacy & Security > Screen Recording")
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}

	bounds, _ := s.desktop.Rect()
	if bounds.Empty() || img.Bounds().Dx() == bounds.Width {
		return img, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, bounds.Width, bounds.Height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled, nil
}
