package pipeline

import (
	"context"

	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/mapinterp/pkg/wms"
)

type pairFetcher interface {
	// pair returns the real frames at grid[i] and grid[i+1]
	pair(ctx context.Context, i int) (videoframe.Frame, videoframe.Frame, error)
	stop()
}

// sequentialFetcher requests both ends of every pair, one at a time.
type sequentialFetcher struct {
	src     wms.Source
	queries []wms.Query
}

func (f *sequentialFetcher) pair(ctx context.Context, i int) (videoframe.Frame, videoframe.Frame, error) {
	a, err := f.src.Fetch(ctx, f.queries[i])
	if err != nil {
		return videoframe.Frame{}, videoframe.Frame{}, err
	}
	b, err := f.src.Fetch(ctx, f.queries[i+1])
	if err != nil {
		return videoframe.Frame{}, videoframe.Frame{}, err
	}
	return a, b, nil
}

func (f *sequentialFetcher) stop() {}

type fetchResult struct {
	frame videoframe.Frame
	err   error
}

// prefetcher fetches every grid instant once on a bounded pool. At most
// workers frames are in flight or waiting to be consumed, and results
// are handed out in grid order.
type prefetcher struct {
	results []chan fetchResult
	slots   chan struct{}
	cancel  context.CancelFunc
	prev    videoframe.Frame
}

func newPrefetcher(ctx context.Context, src wms.Source, queries []wms.Query, workers int) *prefetcher {
	ctx, cancel := context.WithCancel(ctx)
	p := &prefetcher{
		results: make([]chan fetchResult, len(queries)),
		slots:   make(chan struct{}, workers),
		cancel:  cancel,
	}
	for i := range p.results {
		p.results[i] = make(chan fetchResult, 1)
	}

	go func() {
		for i, q := range queries {
			select {
			case <-ctx.Done():
				return
			case p.slots <- struct{}{}:
			}
			go func(i int, q wms.Query) {
				frame, err := src.Fetch(ctx, q)
				p.results[i] <- fetchResult{frame: frame, err: err}
			}(i, q)
		}
	}()
	return p
}

func (p *prefetcher) take(ctx context.Context, i int) (videoframe.Frame, error) {
	select {
	case <-ctx.Done():
		return videoframe.Frame{}, ctx.Err()
	case r := <-p.results[i]:
		<-p.slots
		return r.frame, r.err
	}
}

func (p *prefetcher) pair(ctx context.Context, i int) (videoframe.Frame, videoframe.Frame, error) {
	a := p.prev
	if i == 0 {
		var err error
		if a, err = p.take(ctx, 0); err != nil {
			return videoframe.Frame{}, videoframe.Frame{}, err
		}
	}
	b, err := p.take(ctx, i+1)
	if err != nil {
		return videoframe.Frame{}, videoframe.Frame{}, err
	}
	p.prev = b
	return a, b, nil
}

func (p *prefetcher) stop() {
	p.cancel()
}
