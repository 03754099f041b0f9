package wms

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
)

var ErrInvalidQuery = errors.New("invalid map query")

const (
	DefaultVersion = "1.1.1"
	DefaultSRS     = "EPSG:4326"
	DefaultFormat  = "image/png"
)

// BBox is a bounding box in the source's geographic reference.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b BBox) Validate() error {
	if !(b.MinX < b.MaxX) {
		return fmt.Errorf("%w: bbox min_x %v must be less than max_x %v", ErrInvalidQuery, b.MinX, b.MaxX)
	}
	if !(b.MinY < b.MaxY) {
		return fmt.Errorf("%w: bbox min_y %v must be less than max_y %v", ErrInvalidQuery, b.MinY, b.MaxY)
	}
	return nil
}

func (b BBox) String() string {
	return strings.Join([]string{
		formatFloat(b.MinX), formatFloat(b.MinY), formatFloat(b.MaxX), formatFloat(b.MaxY),
	}, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Query describes a single GetMap request.
type Query struct {
	Layer string
	BBox  BBox
	Size  videoframe.Dimensions
	Time  time.Time
}

func (q Query) Validate() error {
	if len(strings.TrimSpace(q.Layer)) == 0 {
		return fmt.Errorf("%w: layer is undefined", ErrInvalidQuery)
	}
	if err := q.BBox.Validate(); err != nil {
		return err
	}
	if !q.Size.Valid() {
		return fmt.Errorf("%w: size %s must be positive", ErrInvalidQuery, q.Size)
	}
	return nil
}

func (q Query) values(version, srs, format string) url.Values {
	v := url.Values{}
	v.Set("SERVICE", "WMS")
	v.Set("VERSION", version)
	v.Set("REQUEST", "GetMap")
	v.Set("LAYERS", q.Layer)
	v.Set("STYLES", "")
	if version == "1.3.0" {
		v.Set("CRS", srs)
	} else {
		v.Set("SRS", srs)
	}
	v.Set("BBOX", q.BBox.String())
	v.Set("WIDTH", strconv.Itoa(q.Size.W))
	v.Set("HEIGHT", strconv.Itoa(q.Size.H))
	v.Set("FORMAT", format)
	v.Set("TIME", q.Time.UTC().Format(time.RFC3339))
	return v
}
