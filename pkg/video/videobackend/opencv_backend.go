package videobackend

import (
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// mp4v matches what most desktop players accept without extra codecs
const codec = "mp4v"

type openCVBackend struct{}

func (b *openCVBackend) NewEncoder(path string, fps float64, dims videoframe.Dimensions) (Encoder, error) {
	vw, err := openVideoWriter(path, codec, fps, dims.W, dims.H, true)
	if err != nil {
		return nil, xerror.Errorf("unable to open video writer for %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, xerror.Errorf("video writer for %s failed to open", path)
	}
	return &openCVEncoder{vw: vw, dims: dims, bgr: gocv.NewMat()}, nil
}

var openVideoWriter = func(filename, codec string, fps float64, width, height int, isColor bool) (*gocv.VideoWriter, error) {
	return gocv.VideoWriterFile(filename, codec, fps, width, height, isColor)
}

type openCVEncoder struct {
	vw   *gocv.VideoWriter
	dims videoframe.Dimensions
	bgr  gocv.Mat
}

// Write converts the frame from RGB to the BGR order OpenCV expects
// before handing it to the writer.
func (e *openCVEncoder) Write(frame videoframe.Frame) error {
	rgb, err := gocv.NewMatFromBytes(frame.Dims.H, frame.Dims.W, gocv.MatTypeCV8UC3, frame.Pix)
	if err != nil {
		return xerror.Errorf("unable to convert frame into OpenCV mat: %w", err)
	}
	defer rgb.Close()

	gocv.CvtColor(rgb, &e.bgr, gocv.ColorRGBToBGR)
	return e.vw.Write(e.bgr)
}

func (e *openCVEncoder) Close() error {
	e.bgr.Close()
	return e.vw.Close()
}
