package progress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/mapinterp/pkg/pipeline"
)

func TestLogDropsDuplicateUpdates(t *testing.T) {
	is := is.New(t)
	lines := []string{}
	l := NewLog()
	l.logf = func(format string, a ...interface{}) { lines = append(lines, fmt.Sprintf(format, a...)) }

	l.Report(0, "Starting video generation...")
	l.Report(33.3, "Processed pair 1/3")
	l.Report(33.9, "Processed pair 1/3")
	l.Report(100, "Video generation complete!")

	is.Equal(lines, []string{
		"[  0%] Starting video generation...",
		"[ 33%] Processed pair 1/3",
		"[100%] Video generation complete!",
	})
}

func TestBarTracksPercentAndWritesDescription(t *testing.T) {
	is := is.New(t)
	buf := bytes.Buffer{}
	b := NewBarTo(&buf, "Generating")

	b.Report(42.7, "Processed pair 3/7")
	is.Equal(b.Percent(), 42)
	is.True(bytes.Contains(buf.Bytes(), []byte("Processed pair 3/7")))

	b.Report(150, "Video generation complete!")
	is.Equal(b.Percent(), 100)
}

func TestMultiFansOutAndSkipsNil(t *testing.T) {
	is := is.New(t)
	var a, c []float64
	m := Multi(
		pipeline.ObserverFunc(func(p float64, _ string) { a = append(a, p) }),
		nil,
		pipeline.ObserverFunc(func(p float64, _ string) { c = append(c, p) }),
	)
	m.Report(10, "x")
	m.Report(-5, "y")

	is.Equal(a, []float64{10, -5})
	is.Equal(c, a)
}
