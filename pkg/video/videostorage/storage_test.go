package videostorage_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/mapinterp/pkg/video/videostorage"
	"github.com/tauraamui/mapinterp/pkg/wms"
)

func newTestStorage(t *testing.T) videostorage.Storage {
	t.Helper()
	s, err := videostorage.NewStorage(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("unable to open test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadStorageSuccess(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	_, ok, err := s.LoadFrame("missing")
	is.NoErr(err)
	is.True(!ok)
}

func TestSaveAndLoadFrame(t *testing.T) {
	is := is.New(t)
	s := newTestStorage(t)

	ts := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	frame := videoframe.New(videoframe.Dimensions{W: 3, H: 2}, &ts)
	for i := range frame.Pix {
		frame.Pix[i] = uint8(i)
	}

	is.NoErr(s.SaveFrame("radar|06:00", frame))
	loaded, ok, err := s.LoadFrame("radar|06:00")
	is.NoErr(err)
	is.True(ok)
	is.Equal(loaded.Dims, frame.Dims)
	is.Equal(loaded.Pix, frame.Pix)
	is.True(loaded.Timestamp.Equal(ts))
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) Fetch(_ context.Context, q wms.Query) (videoframe.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return videoframe.Frame{}, s.err
	}
	ts := q.Time
	return videoframe.New(q.Size, &ts), nil
}

func TestCachedSourceFetchesEachQueryOnce(t *testing.T) {
	is := is.New(t)
	defer log.Silence()()

	src := &countingSource{}
	cached := videostorage.Cached(src, newTestStorage(t), "http://maps.example.com/wms")

	q := wms.Query{
		Layer: "radar",
		BBox:  wms.BBox{MinX: -10, MinY: 40, MaxX: 5, MaxY: 55},
		Size:  videoframe.Dimensions{W: 4, H: 4},
		Time:  time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
	first, err := cached.Fetch(context.Background(), q)
	is.NoErr(err)
	second, err := cached.Fetch(context.Background(), q)
	is.NoErr(err)

	is.Equal(src.calls, 1)
	is.Equal(first.Pix, second.Pix)

	q.Time = q.Time.Add(30 * time.Minute)
	_, err = cached.Fetch(context.Background(), q)
	is.NoErr(err)
	is.Equal(src.calls, 2)
}

func TestCachedSourceDoesNotStoreFailures(t *testing.T) {
	is := is.New(t)
	defer log.Silence()()

	src := &countingSource{err: errors.New("service unavailable")}
	cached := videostorage.Cached(src, newTestStorage(t), "ns")

	q := wms.Query{Layer: "radar", Size: videoframe.Dimensions{W: 2, H: 2}}
	_, err := cached.Fetch(context.Background(), q)
	is.True(err != nil)

	src.err = nil
	_, err = cached.Fetch(context.Background(), q)
	is.NoErr(err)
	is.Equal(src.calls, 2)
}
