package interact

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/uiloc/internal/element"
)

// ScreenshotOptions tune Screenshot.
type ScreenshotOptions struct {
	// Scale resizes the capture; 0 or 1 keeps the original size.
	Scale float64
	// Label stamps the element's locator attributes in the top-left corner.
	Label bool
}

// Screenshot captures the control, or the whole desktop when h is nil. The
// rectangle is re-read so a moved control is captured where it is now.
func (d *Dispatcher) Screenshot(h *element.Handle, opts ScreenshotOptions) (image.Image, error) {
	if d.Screenshotter == nil {
		return nil, errors.New("no screenshot backend")
	}
	if opts.Scale < 0 || opts.Scale > 4 {
		return nil, fmt.Errorf("invalid scale %v: expected a value in (0, 4]", opts.Scale)
	}
	desktop, err := d.Screenshotter.CaptureDesktop()
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop: %w", err)
	}

	area := desktop.Bounds()
	label := ""
	if h != nil {
		r, err := h.Node().Rect()
		if err != nil {
			return nil, fmt.Errorf("failed to read rectangle of %s: %w", h.Name(), err)
		}
		area = image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Intersect(desktop.Bounds())
		if r.Empty() || area.Empty() {
			return nil, &ActionNotPossibleError{Action: "capture", Element: h.String(), Reason: "the control is not visible on the desktop"}
		}
		label = h.Element().Locator()
	}

	img := toRGBA(desktop, area)
	if opts.Scale > 0 && opts.Scale != 1 {
		img = scale(img, opts.Scale)
	}
	if opts.Label && label != "" {
		drawLabel(img, label)
	}
	return img, nil
}

// toRGBA copies area of src into a new image with its origin at zero.
func toRGBA(src image.Image, area image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Draw(dst, dst.Bounds(), src, area.Min, draw.Src)
	return dst
}

func scale(src *image.RGBA, factor float64) *image.RGBA {
	w := max(int(float64(src.Bounds().Dx())*factor), 1)
	h := max(int(float64(src.Bounds().Dy())*factor), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// drawLabel writes text in the top-left corner, white with a black outline
// so it reads on any background.
func drawLabel(img *image.RGBA, text string) {
	const (
		charWidth = 7 // basicfont.Face7x13
		ascent    = 11
		margin    = 2
	)
	text = fitLabel(text, (img.Bounds().Dx()-2*margin)/charWidth)
	x, y := margin, margin+ascent

	outline := image.NewUniform(color.RGBA{A: 200})
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, x+dx, y+dy, outline)
		}
	}
	drawString(img, text, x, y, image.White)
}

// fitLabel cuts text to at most n characters. A non-positive n leaves it
// unchanged.
func fitLabel(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

func drawString(img *image.RGBA, text string, x, y int, src image.Image) {
	d := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
