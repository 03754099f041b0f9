package videobackend

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
)

func TestFFmpegArgsDescribeRawRGBInput(t *testing.T) {
	is := is.New(t)
	args := strings.Join(ffmpegArgs("/out/video.mp4", 30, videoframe.Dimensions{W: 1920, H: 1080}), " ")
	is.True(strings.Contains(args, "-f rawvideo -pix_fmt rgb24 -s 1920x1080 -r 30 -i -"))
	is.True(strings.HasSuffix(args, "/out/video.mp4"))
}

func TestFFmpegEncoderFailsWhenBinaryMissing(t *testing.T) {
	is := is.New(t)
	b := &ffmpegBackend{binary: "/nonexistent/ffmpeg-binary"}
	_, err := b.NewEncoder("/tmp/out.mp4", 30, videoframe.Dimensions{W: 2, H: 2})
	is.True(err != nil)
}

func fakeFFmpeg(t *testing.T, script string) *ffmpegBackend {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("unable to write fake encoder: %v", err)
	}
	return &ffmpegBackend{binary: path}
}

func TestFFmpegEncoderCloseReapsProcess(t *testing.T) {
	is := is.New(t)
	b := fakeFFmpeg(t, "cat > /dev/null\n")
	enc, err := b.NewEncoder("/tmp/out.mp4", 30, videoframe.Dimensions{W: 2, H: 2})
	is.NoErr(err)

	is.NoErr(enc.Write(videoframe.New(videoframe.Dimensions{W: 2, H: 2}, nil)))
	is.NoErr(enc.Close())
	is.True(enc.(*ffmpegEncoder).cmd.ProcessState != nil)
}

func TestFFmpegEncoderCloseReportsStderrOfFailedProcess(t *testing.T) {
	is := is.New(t)
	b := fakeFFmpeg(t, "cat > /dev/null\necho encoder exploded >&2\nexit 3\n")
	enc, err := b.NewEncoder("/tmp/out.mp4", 30, videoframe.Dimensions{W: 2, H: 2})
	is.NoErr(err)

	is.NoErr(enc.Write(videoframe.New(videoframe.Dimensions{W: 2, H: 2}, nil)))
	err = enc.Close()
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "encoder exploded"))
	is.True(enc.(*ffmpegEncoder).cmd.ProcessState != nil)
}
