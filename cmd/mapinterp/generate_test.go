package main

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/pflag"
	"github.com/tauraamui/mapinterp/pkg/config"
	"github.com/tauraamui/mapinterp/pkg/configdef"
	"github.com/tauraamui/mapinterp/pkg/pipeline"
	"github.com/tauraamui/mapinterp/pkg/wms"
)

func parsedFlags(t *testing.T, args ...string) (generateFlags, *pflag.FlagSet) {
	t.Helper()
	g := generateFlags{}
	f := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	f.StringVar(&g.layer, "layer", "", "")
	f.Float64SliceVar(&g.bbox, "bbox", nil, "")
	f.IntVar(&g.fps, "fps", 0, "")
	f.StringVar(&g.start, "start", "", "")
	f.BoolVar(&g.noHistory, "no-history", false, "")
	if err := f.Parse(args); err != nil {
		t.Fatalf("unable to parse test flags: %v", err)
	}
	return g, f
}

func TestFlagsOnlyOverrideWhatWasSet(t *testing.T) {
	is := is.New(t)
	values := configdef.Values{Layer: "from-config", FPS: 24, History: true}

	g, f := parsedFlags(t, "--layer", "from-flag", "--bbox", "-10,40,5,55", "--no-history")
	is.NoErr(g.apply(f, &values))

	is.Equal(values.Layer, "from-flag")
	is.Equal(values.BBox, wms.BBox{MinX: -10, MinY: 40, MaxX: 5, MaxY: 55})
	is.Equal(values.FPS, 24)
	is.True(!values.History)
}

func TestFlagsRejectShortBBox(t *testing.T) {
	is := is.New(t)
	g, f := parsedFlags(t, "--bbox", "1,2,3")
	is.True(g.apply(f, &configdef.Values{}) != nil)
}

func testValues() configdef.Values {
	values := config.Defaults()
	values.MapURL = "http://localhost:8080/wms"
	values.Layer = "radar"
	values.BBox = wms.BBox{MinX: -10, MinY: 40, MaxX: 5, MaxY: 55}
	values.Width, values.Height = 64, 48
	values.Start = "2024-03-01T06:00:00Z"
	values.End = "2024-03-01T07:00:00Z"
	values.IntervalMinutes = 30
	values.OutputPath = "/videos/out.mp4"
	values.VideoBackend = "mock"
	return values
}

func TestBuildRequestFromValues(t *testing.T) {
	is := is.New(t)
	values := testValues()
	is.NoErr(values.RunValidate())

	req, err := buildRequest(values)
	is.NoErr(err)
	is.NoErr(req.Validate())
	is.Equal(req.Start, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC))
	is.Equal(req.Interval(), 30*time.Minute)
	is.Equal(req.FPS, 30)
	is.Equal(pipeline.IntermediateCount(req.IntervalMinutes, req.FPS), 899)
}

func TestBuildOrchestratorWiresConfiguredComponents(t *testing.T) {
	is := is.New(t)
	values := testValues()
	values.DateTimeLabel = true
	values.Device = "parallel"

	o, err := buildOrchestrator(values, nil, nil)
	is.NoErr(err)
	is.True(o != nil)

	values.MapURL = "ftp://localhost/wms"
	_, err = buildOrchestrator(values, nil, nil)
	is.True(err != nil)
}
