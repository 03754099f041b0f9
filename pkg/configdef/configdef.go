package configdef

import (
	"errors"
	"fmt"
	"time"

	"github.com/tauraamui/mapinterp/pkg/wms"
	"gopkg.in/dealancer/validate.v2"
)

type Values struct {
	Debug bool `json:"debug"`

	MapURL                string `json:"map_url" validate:"empty=false"`
	WMSVersion            string `json:"wms_version" validate:"one_of=1.1.1,1.3.0"`
	SRS                   string `json:"srs" validate:"empty=false"`
	Format                string `json:"format" validate:"empty=false"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" validate:"gte=1 & lte=600"`
	FetchWorkers          int    `json:"fetch_workers" validate:"gte=1 & lte=32"`
	FrameCache            string `json:"frame_cache"`

	Layer           string   `json:"layer" validate:"empty=false"`
	BBox            wms.BBox `json:"bbox"`
	Width           int      `json:"width" validate:"gte=1 & lte=8192"`
	Height          int      `json:"height" validate:"gte=1 & lte=8192"`
	Start           string   `json:"start" validate:"empty=false"`
	End             string   `json:"end" validate:"empty=false"`
	IntervalMinutes int      `json:"interval_minutes" validate:"gte=1"`
	FPS             int      `json:"fps" validate:"gte=1 & lte=120"`
	OutputPath      string   `json:"output_path" validate:"empty=false"`

	VideoBackend    string `json:"video_backend" validate:"one_of=opencv,ffmpeg,mock"`
	Device          string `json:"device" validate:"one_of=cpu,parallel"`
	TileSize        int    `json:"tile_size" validate:"gte=16"`
	TimeConditioned bool   `json:"time_conditioned"`
	WeightsPath     string `json:"weights_path"`
	Seed            int64  `json:"seed"`

	DateTimeLabel  bool   `json:"date_time_label"`
	DateTimeFormat string `json:"date_time_format"`

	History bool `json:"history"`
}

// RunValidate checks field constraints first, then the rules spanning
// several fields.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if !(v.BBox.MinX < v.BBox.MaxX) || !(v.BBox.MinY < v.BBox.MaxY) {
		return fmt.Errorf(validationErrorHeader, errors.New("bbox minimums must be less than maximums"))
	}

	start, end, err := v.TimeRange()
	if err != nil {
		return fmt.Errorf(validationErrorHeader, err)
	}
	if start.After(end) {
		return fmt.Errorf(validationErrorHeader, errors.New("start must not be after end"))
	}
	return nil
}

// TimeRange parses the RFC3339 start and end values.
func (v Values) TimeRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, v.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start is not an RFC3339 time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, v.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end is not an RFC3339 time: %w", err)
	}
	return start.UTC(), end.UTC(), nil
}

func (v Values) RequestTimeout() time.Duration {
	return time.Duration(v.RequestTimeoutSeconds) * time.Second
}
