package wms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxErrorBody bounds how much of a service exception is kept in errors.
const maxErrorBody = 512

// payloadSlack is allowed on top of the raw RGBA size of a requested
// raster for container headers and metadata.
const payloadSlack = 1 << 20

func maxPayload(q Query) int64 {
	return int64(q.Size.W)*int64(q.Size.H)*4 + payloadSlack
}

type Source interface {
	Fetch(context.Context, Query) (videoframe.Frame, error)
}

type Settings struct {
	Address string
	Version string
	SRS     string
	Format  string
	Timeout time.Duration
}

type source struct {
	endpoint *url.URL
	sett     Settings
	client   *http.Client
}

func New(sett Settings) (Source, error) {
	return NewWithClient(sett, &http.Client{Timeout: sett.Timeout})
}

func NewWithClient(sett Settings, client *http.Client) (Source, error) {
	endpoint, err := processURL(sett.Address, []string{"http", "https"})
	if err != nil {
		return nil, err
	}
	if len(sett.Version) == 0 {
		sett.Version = DefaultVersion
	}
	if len(sett.SRS) == 0 {
		sett.SRS = DefaultSRS
	}
	if len(sett.Format) == 0 {
		sett.Format = DefaultFormat
	}
	return &source{endpoint: endpoint, sett: sett, client: client}, nil
}

func processURL(addr string, supportedSchemes []string) (*url.URL, error) {
	if len(addr) == 0 {
		return nil, xerror.New("map service address is undefined")
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, xerror.Errorf("unable to parse map service address: %w", err)
	}

	if ok := containsString(u.Scheme, supportedSchemes); !ok {
		return nil, xerror.Errorf("scheme: %s is unsupported", u.Scheme)
	}

	return u, nil
}

func containsString(str string, strs []string) bool {
	for _, s := range strs {
		if str == s {
			return true
		}
	}
	return false
}

// URL builds the GetMap request address for q, existing query
// parameters on the service address are preserved.
func (s *source) URL(q Query) string {
	u := *s.endpoint
	values := u.Query()
	for k, v := range q.values(s.sett.Version, s.sett.SRS, s.sett.Format) {
		values[k] = v
	}
	u.RawQuery = values.Encode()
	return u.String()
}

func (s *source) Fetch(ctx context.Context, q Query) (videoframe.Frame, error) {
	if err := q.Validate(); err != nil {
		return videoframe.Frame{}, err
	}

	payload, err := s.get(ctx, q)
	if err != nil {
		return videoframe.Frame{}, &FetchError{Timestamp: q.Time, Err: err}
	}

	frame, err := decode(payload, q)
	if err != nil {
		return videoframe.Frame{}, &DecodeError{Timestamp: q.Time, Err: err}
	}
	return frame, nil
}

func (s *source) get(ctx context.Context, q Query) ([]byte, error) {
	addr := s.URL(q)
	log.Debug("Requesting map frame: %s", addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := maxPayload(q)
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("map service response exceeds %d bytes", limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("map service responded with %s: %s", resp.Status, truncate(body))
	}

	if isServiceException(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("map service exception: %s", truncate(body))
	}

	return body, nil
}

// WMS servers report failures as XML documents with a 200 status.
func isServiceException(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "xml")
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

var errEmptyPayload = errors.New("empty payload")

func decode(payload []byte, q Query) (videoframe.Frame, error) {
	if len(payload) == 0 {
		return videoframe.Frame{}, errEmptyPayload
	}

	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return videoframe.Frame{}, err
	}

	b := img.Bounds()
	if b.Dx() != q.Size.W || b.Dy() != q.Size.H {
		return videoframe.Frame{}, fmt.Errorf(
			"%s raster is %dx%d, expected %s", format, b.Dx(), b.Dy(), q.Size,
		)
	}

	ts := q.Time
	return videoframe.FromImage(img, &ts), nil
}
