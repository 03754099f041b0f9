package wms

import (
	"fmt"
	"time"
)

// FetchError is returned when the map service could not be reached or
// answered a GetMap request with an error.
type FetchError struct {
	Timestamp time.Time
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch frame for %s: %v", e.Timestamp.UTC().Format(time.RFC3339), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is returned when a response was received but its payload
// is not a raster of the requested size.
type DecodeError struct {
	Timestamp time.Time
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode frame for %s: %v", e.Timestamp.UTC().Format(time.RFC3339), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
