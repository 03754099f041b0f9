package videostorage

import (
	"context"
	"strings"
	"time"

	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/mapinterp/pkg/wms"
)

type cachedSource struct {
	src       wms.Source
	store     Storage
	namespace string
}

// Cached serves frames from store when present, otherwise it fetches
// from src and stores the result. namespace separates map services
// sharing one store.
func Cached(src wms.Source, store Storage, namespace string) wms.Source {
	return &cachedSource{src: src, store: store, namespace: namespace}
}

func (c *cachedSource) key(q wms.Query) string {
	return strings.Join([]string{
		c.namespace, q.Layer, q.BBox.String(), q.Size.String(), q.Time.UTC().Format(time.RFC3339),
	}, "|")
}

func (c *cachedSource) Fetch(ctx context.Context, q wms.Query) (videoframe.Frame, error) {
	key := c.key(q)
	frame, ok, err := c.store.LoadFrame(key)
	if err != nil {
		log.Warn("Unable to read cached frame %s: %v", key, err)
	}
	if ok {
		log.Debug("Using cached frame %s", key)
		return frame, nil
	}

	frame, err = c.src.Fetch(ctx, q)
	if err != nil {
		return videoframe.Frame{}, err
	}
	if err := c.store.SaveFrame(key, frame); err != nil {
		log.Warn("Unable to cache frame %s: %v", key, err)
	}
	return frame, nil
}
