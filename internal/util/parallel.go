package util

import "golang.org/x/sync/errgroup"

// Semaphore bounds the goroutines a scan starts. It never blocks: callers
// that cannot get a slot do the work themselves.
type Semaphore struct{ ch chan struct{} }

func NewSemaphore(max int) *Semaphore {
	if max < 1 {
		max = 1
	}
	return &Semaphore{ch: make(chan struct{}, max)}
}

// TryAcquire returns true if a slot was obtained without blocking.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees one slot.
func (s *Semaphore) Release() { <-s.ch }

// Go runs fn on eg when a slot is free and inline otherwise. Only the
// error of an inline run is returned; the others surface from eg.Wait.
func (s *Semaphore) Go(eg *errgroup.Group, fn func() error) error {
	if !s.TryAcquire() {
		return fn()
	}
	eg.Go(func() error {
		defer s.Release()
		return fn()
	})
	return nil
}
