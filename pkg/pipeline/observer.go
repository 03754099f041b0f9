package pipeline

// Observer receives progress updates, percent is within [0, 100].
type Observer interface {
	Report(percent float64, status string)
}

type ObserverFunc func(percent float64, status string)

func (f ObserverFunc) Report(percent float64, status string) {
	f(percent, status)
}

type noopObserver struct{}

func (noopObserver) Report(float64, string) {}
