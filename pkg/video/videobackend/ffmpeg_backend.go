package videobackend

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

type ffmpegBackend struct {
	binary string
}

// ffmpegArgs reads raw rgb24 frames from stdin, so no channel swap is
// needed before writing.
func ffmpegArgs(path string, fps float64, dims videoframe.Dimensions) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", dims.W, dims.H),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
	}
}

func (b *ffmpegBackend) NewEncoder(path string, fps float64, dims videoframe.Dimensions) (Encoder, error) {
	cmd := exec.Command(b.binary, ffmpegArgs(path, fps, dims)...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, xerror.Errorf("unable to create ffmpeg stdin pipe: %w", err)
	}

	log.Debug("Starting encoder: %s %v", b.binary, cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		return nil, xerror.Errorf("unable to start ffmpeg: %w", err)
	}

	return &ffmpegEncoder{cmd: cmd, stdin: stdin, stderr: stderr}, nil
}

type ffmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *lockedBuffer
}

// lockedBuffer collects ffmpeg's stderr, which exec copies from its own
// goroutine while frames are still being written.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (e *ffmpegEncoder) Write(frame videoframe.Frame) error {
	n, err := e.stdin.Write(frame.Pix)
	if err != nil {
		return xerror.Errorf("ffmpeg write failed: %w, output: %s", err, e.stderr.String())
	}
	if n != len(frame.Pix) {
		return xerror.Errorf("ffmpeg accepted %d of %d frame bytes", n, len(frame.Pix))
	}
	return nil
}

// Close always waits for the ffmpeg process so it is reaped even when
// stdin fails to close.
func (e *ffmpegEncoder) Close() error {
	closeErr := e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return xerror.Errorf("ffmpeg error: %w, output: %s", err, e.stderr.String())
	}
	if closeErr != nil {
		return xerror.Errorf("unable to close ffmpeg stdin: %w", closeErr)
	}
	return nil
}
