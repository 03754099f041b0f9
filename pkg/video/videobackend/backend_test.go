package videobackend_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
)

func TestVideoBackendDefaultBackend(t *testing.T) {
	is := is.New(t)
	is.True(videobackend.Default() != nil)
}

func TestResolveKnownBackends(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{"", "opencv", "ffmpeg", "mock"} {
		b, err := videobackend.Resolve(name)
		is.NoErr(err)
		is.True(b != nil)
	}

	_, err := videobackend.Resolve("vhs")
	is.True(err != nil)
}

func TestMockBackendRecordsFrames(t *testing.T) {
	is := is.New(t)
	backend := videobackend.Mock()
	dims := videoframe.Dimensions{W: 2, H: 2}

	enc, err := backend.NewEncoder("/tmp/out.mp4", 30, dims)
	is.NoErr(err)
	is.NoErr(enc.Write(videoframe.New(dims, nil)))
	is.NoErr(enc.Close())
	is.True(enc.Write(videoframe.New(dims, nil)) != nil)

	last := backend.Last()
	is.Equal(last.Path, "/tmp/out.mp4")
	is.Equal(last.FPS, float64(30))
	is.Equal(len(last.Frames), 1)
	is.True(last.Closed)
}
