package progress

import (
	"io"
	"math"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/tauraamui/mapinterp/pkg/log"
	"github.com/tauraamui/mapinterp/pkg/pipeline"
)

// Log reports each update as an info log line. Repeated updates with the
// same whole percentage are dropped.
type Log struct {
	mu     sync.Mutex
	logf   func(format string, a ...interface{})
	last   int
	status string
}

func NewLog() *Log {
	return NewLogWith(log.Info)
}

// NewLogWith reports through logf, e.g. log.Debug.
func NewLogWith(logf func(format string, a ...interface{})) *Log {
	return &Log{logf: logf, last: -1}
}

func (l *Log) Report(percent float64, status string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := clamp(percent)
	if p == l.last && status == l.status {
		return
	}
	l.last, l.status = p, status
	l.logf("[%3d%%] %s", p, status)
}

// Bar draws a terminal progress bar scaled to 100.
type Bar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	percent int
}

func NewBar(description string) *Bar {
	return NewBarTo(os.Stderr, description)
}

func NewBarTo(w io.Writer, description string) *Bar {
	return &Bar{bar: progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (b *Bar) Report(percent float64, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.percent = clamp(percent)
	b.bar.Describe(status)
	_ = b.bar.Set(b.percent)
	if percent >= 100 {
		_ = b.bar.Finish()
	}
}

func (b *Bar) Percent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent
}

type multi []pipeline.Observer

// Multi fans every update out to each non nil observer in turn.
func Multi(observers ...pipeline.Observer) pipeline.Observer {
	m := multi{}
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) Report(percent float64, status string) {
	for _, o := range m {
		o.Report(percent, status)
	}
}

func clamp(percent float64) int {
	p := int(math.Floor(percent))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
