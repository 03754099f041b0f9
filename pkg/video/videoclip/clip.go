package videoclip

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

// Writer is an append only video stream of fixed size frames.
type Writer interface {
	AppendFrame(videoframe.Frame) error
	FrameCount() int
	Path() string
	Close() error
}

// DimensionMismatchError reports a frame that does not match the size
// the stream was opened with.
type DimensionMismatchError struct {
	Expected videoframe.Dimensions
	Actual   videoframe.Dimensions
	Index    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("frame %d is %s, stream expects %s", e.Index, e.Actual, e.Expected)
}

func Open(backend videobackend.Backend, path string, fps float64, dims videoframe.Dimensions) (Writer, error) {
	if len(path) == 0 {
		return nil, xerror.New("clip output path is undefined")
	}
	if fps <= 0 {
		return nil, xerror.Errorf("clip frame rate must be positive: %v", fps)
	}
	if !dims.Valid() {
		return nil, xerror.Errorf("clip dimensions must be positive: %s", dims)
	}

	if err := ensureDirectoryPathExists(filepath.Dir(path)); err != nil {
		return nil, xerror.Errorf("unable to create clip directory: %w", err)
	}

	enc, err := backend.NewEncoder(path, fps, dims)
	if err != nil {
		return nil, err
	}

	log.Debug("Opened clip %s at %s, %v fps", path, dims, fps)
	return &clip{path: path, dims: dims, enc: enc}, nil
}

// With opens a clip, hands it to fn and always closes it afterwards.
// The first error from fn or Close is returned.
func With(backend videobackend.Backend, path string, fps float64, dims videoframe.Dimensions, fn func(Writer) error) (err error) {
	w, err := Open(backend, path, fps, dims)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(w)
}

func ensureDirectoryPathExists(path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

type clip struct {
	mu       sync.Mutex
	path     string
	dims     videoframe.Dimensions
	enc      videobackend.Encoder
	count    int
	isClosed bool
}

func (c *clip) AppendFrame(f videoframe.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed {
		return xerror.New("cannot append frame to closed clip")
	}
	if f.Dims != c.dims || len(f.Pix) != c.dims.W*c.dims.H*videoframe.Channels {
		return &DimensionMismatchError{Expected: c.dims, Actual: f.Dims, Index: c.count}
	}
	if err := c.enc.Write(f); err != nil {
		return xerror.Errorf("unable to write frame %d to %s: %w", c.count, c.path, err)
	}
	c.count++
	return nil
}

func (c *clip) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *clip) Path() string {
	return c.path
}

func (c *clip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed {
		return nil
	}
	c.isClosed = true
	log.Debug("Closing clip %s after %d frames", c.path, c.count)
	return c.enc.Close()
}
