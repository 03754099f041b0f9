package videobackend

import (
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// Encoder writes frames of a fixed size, in order, into a single
// video container.
type Encoder interface {
	Write(videoframe.Frame) error
	Close() error
}

type Backend interface {
	NewEncoder(path string, fps float64, dims videoframe.Dimensions) (Encoder, error)
}

const (
	OpenCVName = "opencv"
	FFmpegName = "ffmpeg"
	MockName   = "mock"
)

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func FFmpeg() Backend {
	return &ffmpegBackend{binary: "ffmpeg"}
}

func Mock() *MockBackend {
	return &MockBackend{}
}

func Resolve(t string) (Backend, error) {
	switch t {
	case "", OpenCVName:
		return Default(), nil
	case FFmpegName:
		return FFmpeg(), nil
	case MockName:
		return Mock(), nil
	default:
		return nil, xerror.Errorf("unknown video backend: %s", t)
	}
}
