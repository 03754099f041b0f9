package videolabel

import (
	"image"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const DefaultFormat = "2006/01/02 15:04"

var (
	parseOnce sync.Once
	fontFace  *truetype.Font
	parseErr  error
)

func loadFont() (*truetype.Font, error) {
	parseOnce.Do(func() {
		fontFace, parseErr = freetype.ParseFont(goregular.TTF)
	})
	return fontFace, parseErr
}

// Stamper draws a frame's timestamp into its bottom left corner.
type Stamper struct {
	Format string
}

func New(format string) Stamper {
	if len(format) == 0 {
		format = DefaultFormat
	}
	return Stamper{Format: format}
}

// Stamp returns a labelled copy of f. Frames without a timestamp are
// returned untouched.
func (s Stamper) Stamp(f videoframe.Frame) (videoframe.Frame, error) {
	if f.Timestamp == nil {
		return f, nil
	}

	canvas := f.Image()
	if err := drawText(canvas, f.Timestamp.UTC().Format(s.Format)); err != nil {
		return videoframe.Frame{}, xerror.Errorf("unable to draw timestamp onto frame: %w", err)
	}
	return videoframe.FromImage(canvas, f.Timestamp), nil
}

func fontSize(h int) float64 {
	size := float64(h) / 20
	if size < 8 {
		return 8
	}
	return size
}

func drawText(canvas *image.RGBA, text string) error {
	ttf, err := loadFont()
	if err != nil {
		return err
	}

	h := canvas.Bounds().Dy()
	size := fontSize(h)
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
	}
	margin := int(size / 2)
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(margin),
		Y: fixed.I(h - margin),
	}
	drawer.DrawString(text)
	return nil
}
