package interp

import (
	"math"
	"runtime"
	"sync"

	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// Device selects how inference work is scheduled. Both devices
// produce bit-identical output.
type Device string

const (
	CPU      Device = "cpu"
	Parallel Device = "parallel"
)

func ParseDevice(s string) (Device, error) {
	switch Device(s) {
	case "", CPU:
		return CPU, nil
	case Parallel:
		return Parallel, nil
	default:
		return "", xerror.Errorf("unknown inference device: %s", s)
	}
}

// DefaultTileSize bounds the spatial extent of one inference pass.
const DefaultTileSize = 128

type Settings struct {
	Device   Device
	TileSize int
	Workers  int
}

// Interpolator synthesizes intermediate frames. Returned frames may share
// pixel buffers and must be cloned before being modified.
type Interpolator interface {
	Synthesize(a, b videoframe.Frame, count int) ([]videoframe.Frame, error)
}

type interpolator struct {
	model    *Model
	device   Device
	tileSize int
	workers  int
}

func New(model *Model, sett Settings) (Interpolator, error) {
	if model == nil {
		return nil, xerror.New("interpolator requires a model")
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	device, err := ParseDevice(string(sett.Device))
	if err != nil {
		return nil, err
	}
	if sett.TileSize <= 0 {
		sett.TileSize = DefaultTileSize
	}
	if sett.Workers <= 0 {
		sett.Workers = runtime.NumCPU()
	}
	return &interpolator{
		model:    model,
		device:   device,
		tileSize: sett.TileSize,
		workers:  sett.Workers,
	}, nil
}

func (ip *interpolator) Synthesize(a, b videoframe.Frame, count int) ([]videoframe.Frame, error) {
	if count < 0 {
		return nil, xerror.Errorf("intermediate frame count must not be negative: %d", count)
	}
	if a.Dims != b.Dims {
		return nil, xerror.Errorf("frame dimensions differ: %s and %s", a.Dims, b.Dims)
	}
	if !a.Dims.Valid() {
		return nil, xerror.Errorf("invalid frame dimensions: %s", a.Dims)
	}
	if want := a.Dims.W * a.Dims.H * videoframe.Channels; len(a.Pix) != want || len(b.Pix) != want {
		return nil, xerror.New("frame pixel buffer does not match its dimensions")
	}

	frames := make([]videoframe.Frame, 0, count)
	if count == 0 {
		return frames, nil
	}

	if !ip.model.TimeConditioned() {
		// position is not an input, every intermediate frame is the same
		// frame and shares one read only pixel buffer
		log.Debug("Synthesizing %d time-blind frames at %s", count, a.Dims)
		f := ip.infer(a, b, 0)
		for i := 0; i < count; i++ {
			frames = append(frames, f)
		}
		return frames, nil
	}

	log.Debug("Synthesizing %d time-conditioned frames at %s", count, a.Dims)
	for i := 0; i < count; i++ {
		frames = append(frames, ip.infer(a, b, Position(i, count)))
	}
	return frames, nil
}

// Position is the fraction of the way from A to B of the i'th of count
// intermediate frames.
func Position(i, count int) float32 {
	return float32(i+1) / float32(count+1)
}

type tile struct {
	// core is written to the output, ext is what the model sees
	x0, y0, x1, y1     int
	ex0, ey0, ex1, ey1 int
}

func (ip *interpolator) tiles(d videoframe.Dimensions) []tile {
	r := ip.model.Radius()
	var tiles []tile
	for y0 := 0; y0 < d.H; y0 += ip.tileSize {
		for x0 := 0; x0 < d.W; x0 += ip.tileSize {
			t := tile{x0: x0, y0: y0, x1: min(d.W, x0+ip.tileSize), y1: min(d.H, y0+ip.tileSize)}
			t.ex0, t.ey0 = max(0, t.x0-r), max(0, t.y0-r)
			t.ex1, t.ey1 = min(d.W, t.x1+r), min(d.H, t.y1+r)
			tiles = append(tiles, t)
		}
	}
	return tiles
}

func (ip *interpolator) infer(a, b videoframe.Frame, t float32) videoframe.Frame {
	out := videoframe.New(a.Dims, nil)
	tiles := ip.tiles(a.Dims)

	if ip.device == CPU || len(tiles) == 1 {
		for _, tl := range tiles {
			ip.inferTile(a, b, t, tl, out)
		}
		return out
	}

	work := make(chan tile)
	wg := sync.WaitGroup{}
	for w := 0; w < min(ip.workers, len(tiles)); w++ {
		wg.Add(1)
		go func(wg *sync.WaitGroup) {
			defer wg.Done()
			for tl := range work {
				ip.inferTile(a, b, t, tl, out)
			}
		}(&wg)
	}
	for _, tl := range tiles {
		work <- tl
	}
	close(work)
	wg.Wait()
	return out
}

// inferTile runs the model over the tile's extended region and writes
// the tile core into out. Tiles never overlap in out.
func (ip *interpolator) inferTile(a, b videoframe.Frame, t float32, tl tile, out videoframe.Frame) {
	w, h := tl.ex1-tl.ex0, tl.ey1-tl.ey0
	x := newTensor(ip.model.InputChannels(), h, w)

	for y := 0; y < h; y++ {
		for xx := 0; xx < w; xx++ {
			p := y*w + xx
			si := ((tl.ey0+y)*a.Dims.W + tl.ex0 + xx) * videoframe.Channels
			for c := 0; c < videoframe.Channels; c++ {
				x.data[c*h*w+p] = float32(a.Pix[si+c]) / 255
				x.data[(c+videoframe.Channels)*h*w+p] = float32(b.Pix[si+c]) / 255
			}
		}
	}
	if ip.model.TimeConditioned() {
		plane := x.plane(6)
		for i := range plane {
			plane[i] = t
		}
	}

	y := ip.model.forward(x)

	for yy := tl.y0; yy < tl.y1; yy++ {
		for xx := tl.x0; xx < tl.x1; xx++ {
			p := (yy-tl.ey0)*w + (xx - tl.ex0)
			di := (yy*out.Dims.W + xx) * videoframe.Channels
			for c := 0; c < videoframe.Channels; c++ {
				out.Pix[di+c] = toPixel(y.data[c*h*w+p])
			}
		}
	}
}

// toPixel rescales a [0,1] activation to 8 bits, rounding to nearest.
func toPixel(v float32) uint8 {
	f := math.Floor(float64(v)*255 + 0.5)
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}
