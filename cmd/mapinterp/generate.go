package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tauraamui/mapinterp/pkg/config"
	"github.com/tauraamui/mapinterp/pkg/configdef"
	"github.com/tauraamui/mapinterp/pkg/database"
	"github.com/tauraamui/mapinterp/pkg/database/models"
	"github.com/tauraamui/mapinterp/pkg/history"
	"github.com/tauraamui/mapinterp/pkg/interp"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/pipeline"
	"github.com/tauraamui/mapinterp/pkg/progress"
	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/mapinterp/pkg/video/videolabel"
	"github.com/tauraamui/mapinterp/pkg/video/videostorage"
	"github.com/tauraamui/mapinterp/pkg/wms"
	"golang.org/x/term"
)

// generateFlags mirror config values, only flags set on the command
// line override the loaded config.
type generateFlags struct {
	mapURL          string
	layer           string
	bbox            []float64
	width, height   int
	start, end      string
	intervalMinutes int
	fps             int
	output          string
	backend         string
	device          string
	tileSize        int
	fetchWorkers    int
	weights         string
	timeConditioned bool
	label           bool
	noHistory       bool
	frameCache      string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch map frames over a time range and interpolate them into a video",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := loadValues()
		if err != nil {
			return err
		}
		if err := genFlags.apply(cmd.Flags(), &values); err != nil {
			return err
		}
		if err := values.RunValidate(); err != nil {
			return err
		}
		if values.Debug {
			log.Configure(true)
		}
		return runGenerate(cmd, values)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.mapURL, "map-url", "", "Map service endpoint")
	f.StringVarP(&genFlags.layer, "layer", "l", "", "Map layer to render")
	f.Float64SliceVar(&genFlags.bbox, "bbox", nil, "Bounding box as min_x,min_y,max_x,max_y")
	f.IntVar(&genFlags.width, "width", 0, "Frame width in pixels")
	f.IntVar(&genFlags.height, "height", 0, "Frame height in pixels")
	f.StringVar(&genFlags.start, "start", "", "First sample time (RFC3339)")
	f.StringVar(&genFlags.end, "end", "", "Last sample time (RFC3339)")
	f.IntVarP(&genFlags.intervalMinutes, "interval", "i", 0, "Minutes between samples")
	f.IntVar(&genFlags.fps, "fps", 0, "Output frame rate")
	f.StringVarP(&genFlags.output, "output", "o", "", "Output video path")
	f.StringVar(&genFlags.backend, "backend", "", "Video backend (opencv, ffmpeg)")
	f.StringVar(&genFlags.device, "device", "", "Inference device (cpu, parallel)")
	f.IntVar(&genFlags.tileSize, "tile-size", 0, "Inference tile size in pixels")
	f.IntVarP(&genFlags.fetchWorkers, "fetch-workers", "w", 0, "Concurrent map requests")
	f.StringVar(&genFlags.weights, "weights", "", "Model weights file")
	f.BoolVar(&genFlags.timeConditioned, "time-conditioned", false, "Feed the frame position to the model")
	f.BoolVar(&genFlags.label, "label", false, "Draw sample timestamps onto real frames")
	f.StringVar(&genFlags.frameCache, "frame-cache", "", "SQLite file caching fetched map frames between runs")
	f.BoolVar(&genFlags.noHistory, "no-history", false, "Do not record this run in the history database")
}

func loadValues() (configdef.Values, error) {
	values, err := config.DefaultCreateResolver().Resolve()
	if err == nil {
		return values, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("No config file found, using defaults and flags only")
		return config.Defaults(), nil
	}
	return configdef.Values{}, err
}

func (g generateFlags) apply(flags *pflag.FlagSet, values *configdef.Values) error {
	changed := flags.Changed
	if changed("map-url") {
		values.MapURL = g.mapURL
	}
	if changed("layer") {
		values.Layer = g.layer
	}
	if changed("bbox") {
		if len(g.bbox) != 4 {
			return fmt.Errorf("bbox takes exactly 4 values, got %d", len(g.bbox))
		}
		values.BBox = wms.BBox{MinX: g.bbox[0], MinY: g.bbox[1], MaxX: g.bbox[2], MaxY: g.bbox[3]}
	}
	if changed("width") {
		values.Width = g.width
	}
	if changed("height") {
		values.Height = g.height
	}
	if changed("start") {
		values.Start = g.start
	}
	if changed("end") {
		values.End = g.end
	}
	if changed("interval") {
		values.IntervalMinutes = g.intervalMinutes
	}
	if changed("fps") {
		values.FPS = g.fps
	}
	if changed("output") {
		values.OutputPath = g.output
	}
	if changed("backend") {
		values.VideoBackend = g.backend
	}
	if changed("device") {
		values.Device = g.device
	}
	if changed("tile-size") {
		values.TileSize = g.tileSize
	}
	if changed("fetch-workers") {
		values.FetchWorkers = g.fetchWorkers
	}
	if changed("weights") {
		values.WeightsPath = g.weights
	}
	if changed("time-conditioned") {
		values.TimeConditioned = g.timeConditioned
	}
	if changed("label") {
		values.DateTimeLabel = g.label
	}
	if changed("frame-cache") {
		values.FrameCache = g.frameCache
	}
	if changed("no-history") {
		values.History = !g.noHistory
	}
	return nil
}

func buildRequest(values configdef.Values) (pipeline.Request, error) {
	start, end, err := values.TimeRange()
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Layer:           values.Layer,
		BBox:            values.BBox,
		Size:            videoframe.Dimensions{W: values.Width, H: values.Height},
		Start:           start,
		End:             end,
		IntervalMinutes: values.IntervalMinutes,
		FPS:             values.FPS,
		OutputPath:      values.OutputPath,
	}, nil
}

func loadModel(values configdef.Values) (*interp.Model, error) {
	if len(values.WeightsPath) == 0 {
		return interp.NewModel(values.Seed, interp.DefaultWidths, values.TimeConditioned), nil
	}
	model, err := interp.LoadWeights(afero.NewOsFs(), values.WeightsPath)
	if err != nil {
		return nil, err
	}
	if model.TimeConditioned() != values.TimeConditioned {
		log.Warn("Weights in %s decide time conditioning, ignoring configured value", values.WeightsPath)
	}
	return model, nil
}

func buildOrchestrator(values configdef.Values, observer pipeline.Observer, cache videostorage.Storage) (*pipeline.Orchestrator, error) {
	src, err := wms.New(wms.Settings{
		Address: values.MapURL,
		Version: values.WMSVersion,
		SRS:     values.SRS,
		Format:  values.Format,
		Timeout: values.RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}
	if cache != nil {
		src = videostorage.Cached(src, cache, values.MapURL)
	}

	model, err := loadModel(values)
	if err != nil {
		return nil, err
	}
	ip, err := interp.New(model, interp.Settings{Device: interp.Device(values.Device), TileSize: values.TileSize})
	if err != nil {
		return nil, err
	}

	backend, err := videobackend.Resolve(values.VideoBackend)
	if err != nil {
		return nil, err
	}

	var stamper *videolabel.Stamper
	if values.DateTimeLabel {
		s := videolabel.New(values.DateTimeFormat)
		stamper = &s
	}

	return pipeline.New(pipeline.Settings{
		Source:       src,
		Interpolator: ip,
		Backend:      backend,
		Observer:     observer,
		FetchWorkers: values.FetchWorkers,
		Stamper:      stamper,
	})
}

func newObserver() pipeline.Observer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return progress.Multi(progress.NewBar("Generating"), progress.NewLogWith(log.Debug))
	}
	return progress.NewLog()
}

func runGenerate(cmd *cobra.Command, values configdef.Values) error {
	req, err := buildRequest(values)
	if err != nil {
		return err
	}
	var cache videostorage.Storage
	if len(values.FrameCache) > 0 {
		if cache, err = videostorage.NewStorage(values.FrameCache); err != nil {
			return err
		}
		defer cache.Close()
	}

	orchestrator, err := buildOrchestrator(values, newObserver(), cache)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	recorder, run := startHistory(values, runID, req)

	summary, err := orchestrator.GenerateWithID(cmd.Context(), runID, req)
	if recorder != nil {
		if herr := recorder.Finished(run, summary, err); herr != nil {
			log.Warn("Unable to record outcome of run %s: %v", runID, herr)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary.Path)
	return nil
}

// startHistory records the run when history is enabled. Failing to
// reach the database never stops generation.
func startHistory(values configdef.Values, runID string, req pipeline.Request) (*history.Recorder, *models.Run) {
	if !values.History {
		return nil, nil
	}
	db, err := database.Connect()
	if err != nil {
		log.Warn("Run history unavailable: %v", err)
		return nil, nil
	}
	recorder := history.NewRecorder(db, afero.NewOsFs())
	run, err := recorder.Started(runID, req)
	if err != nil {
		log.Warn("Run history unavailable: %v", err)
		return nil, nil
	}
	return recorder, run
}
