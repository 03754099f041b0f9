package pipeline

import (
	"fmt"
	"time"

	"github.com/tauraamui/mapinterp/pkg/wms"
)

// ConfigurationError is returned before any network activity when a
// request is malformed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap reports map query fields as wms.ErrInvalidQuery.
func (e *ConfigurationError) Unwrap() error {
	switch e.Field {
	case "layer", "bbox", "size":
		return wms.ErrInvalidQuery
	}
	return nil
}

// EmptyGridError is returned when a request's time range holds fewer
// than two sample instants, leaving no pair to interpolate between.
type EmptyGridError struct {
	Start, End time.Time
	Interval   time.Duration
	Timestamps int
}

func (e *EmptyGridError) Error() string {
	return fmt.Sprintf(
		"time range %s to %s at %s intervals yields %d timestamp(s), at least 2 are required",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Interval, e.Timestamps,
	)
}
