package videoframe

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
)

// Channels is the number of colour channels held per pixel (R, G, B).
const Channels = 3

type Dimensions struct {
	W, H int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.W, d.H)
}

func (d Dimensions) Valid() bool {
	return d.W > 0 && d.H > 0
}

// Frame is a single RGB raster sample. Pix is row-major with a stride
// of W*Channels. Frames synthesized between two real samples carry a
// nil Timestamp.
type Frame struct {
	Dims      Dimensions
	Pix       []uint8
	Timestamp *time.Time
}

func New(d Dimensions, ts *time.Time) Frame {
	return Frame{Dims: d, Pix: make([]uint8, d.W*d.H*Channels), Timestamp: ts}
}

// FromImage copies img into a new frame, alpha is discarded.
func FromImage(img image.Image, ts *time.Time) Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)
	}

	f := New(Dimensions{W: b.Dx(), H: b.Dy()}, ts)
	for y := 0; y < f.Dims.H; y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := f.Pix[y*f.Dims.W*Channels:]
		for x := 0; x < f.Dims.W; x++ {
			dst[x*Channels] = src[x*4]
			dst[x*Channels+1] = src[x*4+1]
			dst[x*Channels+2] = src[x*4+2]
		}
	}
	return f
}

func (f Frame) Dimensions() Dimensions {
	return f.Dims
}

func (f Frame) IsSynthesized() bool {
	return f.Timestamp == nil
}

func (f Frame) At(x, y int) color.RGBA {
	i := (y*f.Dims.W + x) * Channels
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xff}
}

func (f Frame) Set(x, y int, c color.RGBA) {
	i := (y*f.Dims.W + x) * Channels
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.R, c.G, c.B
}

// Image returns an opaque RGBA copy of the frame.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Dims.W, f.Dims.H))
	for p := 0; p < f.Dims.W*f.Dims.H; p++ {
		img.Pix[p*4] = f.Pix[p*Channels]
		img.Pix[p*4+1] = f.Pix[p*Channels+1]
		img.Pix[p*4+2] = f.Pix[p*Channels+2]
		img.Pix[p*4+3] = 0xff
	}
	return img
}

func (f Frame) Clone() Frame {
	c := Frame{Dims: f.Dims, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	if f.Timestamp != nil {
		ts := *f.Timestamp
		c.Timestamp = &ts
	}
	return c
}
