package videobackend

import (
	"sync"

	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// MockBackend keeps every encoder it opens so callers can inspect what
// would have been written to disk.
type MockBackend struct {
	mu       sync.Mutex
	Encoders []*MockEncoder
}

func (b *MockBackend) NewEncoder(path string, fps float64, dims videoframe.Dimensions) (Encoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	enc := &MockEncoder{Path: path, FPS: fps, Dims: dims}
	b.Encoders = append(b.Encoders, enc)
	return enc, nil
}

// Last returns the most recently opened encoder, or nil.
func (b *MockBackend) Last() *MockEncoder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Encoders) == 0 {
		return nil
	}
	return b.Encoders[len(b.Encoders)-1]
}

type MockEncoder struct {
	Path   string
	FPS    float64
	Dims   videoframe.Dimensions
	Frames []videoframe.Frame
	Closed bool
}

func (e *MockEncoder) Write(frame videoframe.Frame) error {
	if e.Closed {
		return xerror.New("cannot write to closed mock encoder")
	}
	e.Frames = append(e.Frames, frame)
	return nil
}

func (e *MockEncoder) Close() error {
	e.Closed = true
	return nil
}
