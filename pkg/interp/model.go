package interp

import (
	"math"
	"math/rand"

	"github.com/tauraamui/xerror"
)

// DefaultWidths are the encoder channel widths, the decoder mirrors them.
var DefaultWidths = [3]int{64, 128, 256}

// DefaultSeed initialises the untrained model when no weights file is given.
const DefaultSeed int64 = 0x6d6170

const outputChannels = 3

var kernels = [3]int{7, 5, 3}

type layer struct {
	transposed bool
	in, out    int
	k, pad     int
	// conv weights are laid out [out][in][k][k], transposed conv
	// weights [in][out][k][k]
	w []float32
	b []float32
}

func (l *layer) weight(i, o, ky, kx int) float32 {
	if l.transposed {
		return l.w[((i*l.out+o)*l.k+ky)*l.k+kx]
	}
	return l.w[((o*l.in+i)*l.k+ky)*l.k+kx]
}

// Model is a fixed topology convolutional encoder/decoder. Three
// same-size convolutions widen the concatenated pair, three same-size
// transposed convolutions narrow it back down to RGB.
type Model struct {
	layers []layer
}

func newLayer(transposed bool, in, out, k int) layer {
	return layer{
		transposed: transposed,
		in:         in, out: out,
		k: k, pad: (k - 1) / 2,
		w: make([]float32, in*out*k*k),
		b: make([]float32, out),
	}
}

func topology(inputChannels int, widths [3]int) []layer {
	return []layer{
		newLayer(false, inputChannels, widths[0], kernels[0]),
		newLayer(false, widths[0], widths[1], kernels[1]),
		newLayer(false, widths[1], widths[2], kernels[2]),
		newLayer(true, widths[2], widths[1], kernels[2]),
		newLayer(true, widths[1], widths[0], kernels[1]),
		newLayer(true, widths[0], outputChannels, kernels[0]),
	}
}

// NewModel builds an untrained model whose weights are drawn uniformly
// from ±1/sqrt(fan_in) using a PRNG seeded with seed.
func NewModel(seed int64, widths [3]int, timeConditioned bool) *Model {
	if widths == ([3]int{}) {
		widths = DefaultWidths
	}
	in := 6
	if timeConditioned {
		in = 7
	}

	rng := rand.New(rand.NewSource(seed))
	layers := topology(in, widths)
	for li := range layers {
		l := &layers[li]
		fanIn := l.in * l.k * l.k
		if l.transposed {
			fanIn = l.out * l.k * l.k
		}
		bound := 1 / math.Sqrt(float64(fanIn))
		for i := range l.w {
			l.w[i] = float32((rng.Float64()*2 - 1) * bound)
		}
		for i := range l.b {
			l.b[i] = float32((rng.Float64()*2 - 1) * bound)
		}
	}
	return &Model{layers: layers}
}

func (m *Model) InputChannels() int {
	return m.layers[0].in
}

func (m *Model) TimeConditioned() bool {
	return m.InputChannels() == 7
}

// Radius is how far, in pixels, a single output pixel can see.
func (m *Model) Radius() int {
	r := 0
	for _, l := range m.layers {
		r += l.pad
	}
	return r
}

func (m *Model) validate() error {
	if len(m.layers) != 6 {
		return xerror.Errorf("model must have 6 layers, has %d", len(m.layers))
	}
	if in := m.layers[0].in; in != 6 && in != 7 {
		return xerror.Errorf("model input must have 6 or 7 channels, has %d", in)
	}
	for i, l := range m.layers {
		if l.transposed != (i >= 3) {
			return xerror.Errorf("layer %d has unexpected kind", i)
		}
		if l.k%2 == 0 || l.pad != (l.k-1)/2 {
			return xerror.Errorf("layer %d must be a same-size convolution", i)
		}
		if len(l.w) != l.in*l.out*l.k*l.k || len(l.b) != l.out {
			return xerror.Errorf("layer %d parameter count does not match its shape", i)
		}
		if i > 0 && m.layers[i-1].out != l.in {
			return xerror.Errorf("layer %d input channels do not match previous output", i)
		}
	}
	if out := m.layers[len(m.layers)-1].out; out != outputChannels {
		return xerror.Errorf("model output must have %d channels, has %d", outputChannels, out)
	}
	return nil
}

type tensor struct {
	c, h, w int
	data    []float32
}

func newTensor(c, h, w int) tensor {
	return tensor{c: c, h: h, w: w, data: make([]float32, c*h*w)}
}

func (t tensor) plane(c int) []float32 {
	n := t.h * t.w
	return t.data[c*n : (c+1)*n]
}

func (m *Model) forward(x tensor) tensor {
	for i := range m.layers {
		l := &m.layers[i]
		x = l.apply(x)
		if i == len(m.layers)-1 {
			sigmoid(x.data)
			continue
		}
		relu(x.data)
	}
	return x
}

// apply runs a stride 1 convolution with zero padding. Every output
// element starts at its bias and accumulates terms in (in, ky, kx)
// order, positions falling outside the input are skipped.
func (l *layer) apply(x tensor) tensor {
	out := newTensor(l.out, x.h, x.w)
	for o := 0; o < l.out; o++ {
		dst := out.plane(o)
		for p := range dst {
			dst[p] = l.b[o]
		}
		for i := 0; i < l.in; i++ {
			src := x.plane(i)
			for ky := 0; ky < l.k; ky++ {
				dy := ky - l.pad
				if l.transposed {
					dy = l.pad - ky
				}
				for kx := 0; kx < l.k; kx++ {
					dx := kx - l.pad
					if l.transposed {
						dx = l.pad - kx
					}
					accumulate(dst, src, x.w, x.h, dx, dy, l.weight(i, o, ky, kx))
				}
			}
		}
	}
	return out
}

// accumulate adds wv*src[y+dy][x+dx] into dst[y][x] for all in-bounds pairs.
func accumulate(dst, src []float32, w, h, dx, dy int, wv float32) {
	y0, y1 := max(0, -dy), min(h, h-dy)
	x0, x1 := max(0, -dx), min(w, w-dx)
	if x0 >= x1 {
		return
	}
	for y := y0; y < y1; y++ {
		drow := dst[y*w : (y+1)*w]
		srow := src[(y+dy)*w : (y+dy+1)*w]
		for x := x0; x < x1; x++ {
			drow[x] += wv * srow[x+dx]
		}
	}
}

func relu(v []float32) {
	for i, f := range v {
		if f < 0 {
			v[i] = 0
		}
	}
}

func sigmoid(v []float32) {
	for i, f := range v {
		v[i] = float32(1 / (1 + math.Exp(-float64(f))))
	}
}
