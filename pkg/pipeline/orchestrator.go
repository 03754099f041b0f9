package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/mapinterp/pkg/interp"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videoclip"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/mapinterp/pkg/video/videolabel"
	"github.com/tauraamui/mapinterp/pkg/wms"
	"github.com/tauraamui/xerror"
)

// Request describes one video generation run.
type Request struct {
	Layer           string
	BBox            wms.BBox
	Size            videoframe.Dimensions
	Start, End      time.Time
	IntervalMinutes int
	FPS             int
	OutputPath      string
}

func (r Request) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

func (r Request) Validate() error {
	if len(strings.TrimSpace(r.Layer)) == 0 {
		return &ConfigurationError{Field: "layer", Reason: "must not be empty"}
	}
	if !(r.BBox.MinX < r.BBox.MaxX) {
		return &ConfigurationError{Field: "bbox", Reason: fmt.Sprintf("min_x %v must be less than max_x %v", r.BBox.MinX, r.BBox.MaxX)}
	}
	if !(r.BBox.MinY < r.BBox.MaxY) {
		return &ConfigurationError{Field: "bbox", Reason: fmt.Sprintf("min_y %v must be less than max_y %v", r.BBox.MinY, r.BBox.MaxY)}
	}
	if !r.Size.Valid() {
		return &ConfigurationError{Field: "size", Reason: fmt.Sprintf("%s must be positive", r.Size)}
	}
	if r.Start.After(r.End) {
		return &ConfigurationError{Field: "start", Reason: "must not be after end"}
	}
	if r.IntervalMinutes <= 0 {
		return &ConfigurationError{Field: "interval_minutes", Reason: "must be positive"}
	}
	if r.FPS <= 0 {
		return &ConfigurationError{Field: "fps", Reason: "must be positive"}
	}
	if len(strings.TrimSpace(r.OutputPath)) == 0 {
		return &ConfigurationError{Field: "output_path", Reason: "must not be empty"}
	}
	return nil
}

func (r Request) queries(grid Grid) []wms.Query {
	queries := make([]wms.Query, 0, len(grid))
	for _, ts := range grid {
		queries = append(queries, wms.Query{Layer: r.Layer, BBox: r.BBox, Size: r.Size, Time: ts})
	}
	return queries
}

type Settings struct {
	Source       wms.Source
	Interpolator interp.Interpolator
	Backend      videobackend.Backend
	Observer     Observer
	// FetchWorkers above 1 enables the prefetch pool.
	FetchWorkers int
	// Stamper, when set, labels real frames with their timestamp.
	Stamper *videolabel.Stamper
}

// Summary describes a finished run.
type Summary struct {
	RunID             string
	Path              string
	Pairs             int
	IntermediateCount int
	Frames            int
}

type Orchestrator struct {
	src          wms.Source
	ip           interp.Interpolator
	backend      videobackend.Backend
	observer     Observer
	fetchWorkers int
	stamper      *videolabel.Stamper
}

func New(sett Settings) (*Orchestrator, error) {
	if sett.Source == nil {
		return nil, xerror.New("pipeline requires a frame source")
	}
	if sett.Interpolator == nil {
		return nil, xerror.New("pipeline requires an interpolator")
	}
	if sett.Backend == nil {
		sett.Backend = videobackend.Default()
	}
	if sett.Observer == nil {
		sett.Observer = noopObserver{}
	}
	if sett.FetchWorkers <= 0 {
		sett.FetchWorkers = 1
	}
	return &Orchestrator{
		src:          sett.Source,
		ip:           sett.Interpolator,
		backend:      sett.Backend,
		observer:     sett.Observer,
		fetchWorkers: sett.FetchWorkers,
		stamper:      sett.Stamper,
	}, nil
}

// Run generates the video described by req and returns its path.
func (o *Orchestrator) Run(ctx context.Context, req Request) (string, error) {
	summary, err := o.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return summary.Path, nil
}

func (o *Orchestrator) Generate(ctx context.Context, req Request) (Summary, error) {
	return o.GenerateWithID(ctx, uuid.NewString(), req)
}

// GenerateWithID is Generate with a caller chosen run ID, used to
// correlate log lines and history records.
func (o *Orchestrator) GenerateWithID(ctx context.Context, runID string, req Request) (Summary, error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}

	grid, err := BuildGrid(req.Start, req.End, req.Interval())
	if err != nil {
		return Summary{}, err
	}
	pairs := grid.Pairs()
	if pairs == 0 {
		return Summary{}, &EmptyGridError{
			Start: req.Start, End: req.End, Interval: req.Interval(), Timestamps: len(grid),
		}
	}

	summary := Summary{
		RunID:             runID,
		Path:              req.OutputPath,
		Pairs:             pairs,
		IntermediateCount: IntermediateCount(req.IntervalMinutes, req.FPS),
	}

	log.Info("[%s] Generating %d frames from %d samples of [%s] into %s",
		runID, TotalFrames(pairs, summary.IntermediateCount), len(grid), req.Layer, req.OutputPath)
	o.observer.Report(0, "Starting video generation...")

	err = videoclip.With(o.backend, req.OutputPath, float64(req.FPS), req.Size, func(w videoclip.Writer) error {
		fetcher := o.fetcher(ctx, req.queries(grid))
		defer fetcher.stop()

		var last videoframe.Frame
		for i := 0; i < pairs; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			a, b, err := fetcher.pair(ctx, i)
			if err != nil {
				return err
			}

			synthesized, err := o.ip.Synthesize(a, b, summary.IntermediateCount)
			if err != nil {
				return xerror.Errorf("unable to synthesize frames between %s and %s: %w",
					grid[i].Format(time.RFC3339), grid[i+1].Format(time.RFC3339), err)
			}

			if err := o.appendReal(w, a); err != nil {
				return err
			}
			for _, f := range synthesized {
				if err := w.AppendFrame(f); err != nil {
					return err
				}
			}
			last = b

			log.Debug("[%s] Processed pair %d/%d", runID, i+1, pairs)
			o.observer.Report(100*float64(i+1)/float64(pairs), fmt.Sprintf("Processed pair %d/%d", i+1, pairs))
		}

		if err := o.appendReal(w, last); err != nil {
			return err
		}
		summary.Frames = w.FrameCount()
		return nil
	})
	if err != nil {
		log.Error("[%s] Video generation failed: %v", runID, err)
		return Summary{}, err
	}

	log.Info("[%s] Wrote %d frames to %s", runID, summary.Frames, summary.Path)
	o.observer.Report(100, "Video generation complete!")
	return summary, nil
}

func (o *Orchestrator) fetcher(ctx context.Context, queries []wms.Query) pairFetcher {
	if o.fetchWorkers > 1 {
		return newPrefetcher(ctx, o.src, queries, o.fetchWorkers)
	}
	return &sequentialFetcher{src: o.src, queries: queries}
}

func (o *Orchestrator) appendReal(w videoclip.Writer, f videoframe.Frame) error {
	if o.stamper != nil {
		stamped, err := o.stamper.Stamp(f)
		if err != nil {
			return err
		}
		f = stamped
	}
	return w.AppendFrame(f)
}
