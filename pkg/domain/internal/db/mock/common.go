package mocks

import "sync"

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Recorder serializes Calls appends. Mocked collaborators are hit from
// worker pools and parallel release runs, not only test goroutines.
type Recorder struct {
	mu sync.Mutex
}

func Record[T any](r *Recorder, log *CallLog[T], call T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*log = append(*log, call)
}
