package engine

// Progress is emitted once per completed fragment.
type Progress struct {
	// Index is the fragment just written (split) or consumed (merge).
	Index int
	// Path is that fragment's path.
	Path string
	// FragmentBytes is the size of that fragment.
	FragmentBytes int64
	// BytesDone is the cumulative number of bytes written so far.
	BytesDone int64
	// BytesTotal is the number of bytes the pass will write, or 0 when
	// unknown (a merge without manifest).
	BytesTotal int64
}

// Observer receives progress from an engine pass.
// Calls happen on the engine's goroutine, in fragment order.
type Observer interface {
	FragmentDone(p Progress)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p Progress)

// FragmentDone calls f(p).
func (f ObserverFunc) FragmentDone(p Progress) { f(p) }

// Observers fans progress out to several observers in order.
type Observers []Observer

// FragmentDone forwards p to every non-nil observer.
func (o Observers) FragmentDone(p Progress) {
	for _, obs := range o {
		if obs != nil {
			obs.FragmentDone(p)
		}
	}
}

type nopObserver struct{}

func (nopObserver) FragmentDone(Progress) {}
