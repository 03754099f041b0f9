package videoprobe

import (
	"fmt"
	"io"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

// Info summarises the first video track of an MP4 file.
type Info struct {
	Codec     string
	Width     int
	Height    int
	Frames    int
	Timescale uint32
	FPS       float64
	Duration  time.Duration
}

func (i Info) String() string {
	return fmt.Sprintf(
		"codec: %s, size: %dx%d, frames: %d, fps: %.3f, duration: %s",
		i.Codec, i.Width, i.Height, i.Frames, i.FPS, i.Duration,
	)
}

func File(path string) (Info, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Info{}, xerror.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (Info, error) {
	parsed, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, xerror.Errorf("unable to parse mp4: %w", err)
	}
	if parsed.Moov == nil {
		return Info{}, xerror.New("mp4 has no movie box")
	}

	for _, trak := range parsed.Moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		return videoTrackInfo(trak)
	}
	return Info{}, xerror.New("mp4 has no video track")
}

func videoTrackInfo(trak *mp4.TrakBox) (Info, error) {
	if trak.Mdia.Mdhd == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return Info{}, xerror.New("video track is missing sample tables")
	}
	stbl := trak.Mdia.Minf.Stbl
	info := Info{Timescale: trak.Mdia.Mdhd.Timescale}

	if trak.Tkhd != nil {
		info.Width = int(uint32(trak.Tkhd.Width) >> 16)
		info.Height = int(uint32(trak.Tkhd.Height) >> 16)
	}
	if stbl.Stsd != nil && len(stbl.Stsd.Children) > 0 {
		info.Codec = stbl.Stsd.Children[0].Type()
	}
	if stbl.Stsz != nil {
		info.Frames = int(stbl.Stsz.SampleNumber)
	}

	if info.Timescale > 0 {
		info.Duration = time.Duration(float64(trak.Mdia.Mdhd.Duration) / float64(info.Timescale) * float64(time.Second))
		if stbl.Stts != nil && len(stbl.Stts.SampleTimeDelta) == 1 && stbl.Stts.SampleTimeDelta[0] > 0 {
			info.FPS = float64(info.Timescale) / float64(stbl.Stts.SampleTimeDelta[0])
		} else if info.Duration > 0 {
			info.FPS = float64(info.Frames) / info.Duration.Seconds()
		}
	}
	return info, nil
}
