package pipeline

import (
	"time"
)

// Grid is the ordered set of instants frames are fetched for.
type Grid []time.Time

// BuildGrid returns start, start+interval, ... up to and including end.
func BuildGrid(start, end time.Time, interval time.Duration) (Grid, error) {
	if interval <= 0 {
		return nil, &ConfigurationError{Field: "interval", Reason: "must be positive"}
	}
	if start.After(end) {
		return nil, &ConfigurationError{Field: "start", Reason: "must not be after end"}
	}

	grid := Grid{}
	for t := start; !t.After(end); t = t.Add(interval) {
		grid = append(grid, t)
	}
	return grid, nil
}

func (g Grid) Pairs() int {
	if len(g) < 2 {
		return 0
	}
	return len(g) - 1
}

// IntermediateCount is how many frames must be synthesized between two
// samples intervalMinutes apart to play back at fps, excluding the
// samples themselves.
func IntermediateCount(intervalMinutes, fps int) int {
	return intervalMinutes*60*fps/60 - 1
}

// TotalFrames is the length of the video produced from pairs pairs.
func TotalFrames(pairs, intermediate int) int {
	if pairs == 0 {
		return 0
	}
	return pairs*(1+intermediate) + 1
}
