package loader

import (
	"sync/atomic"

	"github.com/sourcegraph/conc"
)

// Result is the outcome of one fetch.
type Result struct {
	Image Image
	Err   error
}

// Fetcher decodes images from a Source on a background goroutine and hands
// them to a single consumer. At most one decode runs at a time.
type Fetcher struct {
	src     Source
	results chan Result
	quit    chan struct{}
	busy    atomic.Bool
	wg      conc.WaitGroup
}

func NewFetcher(src Source) *Fetcher {
	return &Fetcher{
		src:     src,
		results: make(chan Result, 1),
		quit:    make(chan struct{}),
	}
}

// Request starts decoding the next image. It returns false if a decode is
// already running.
func (f *Fetcher) Request() bool {
	if !f.busy.CompareAndSwap(false, true) {
		return false
	}
	f.wg.Go(func() {
		defer f.busy.Store(false)
		img, err := f.src.Next()
		select {
		case f.results <- Result{Image: img, Err: err}:
		case <-f.quit:
		}
	})
	return true
}

// Busy reports whether a decode is running.
func (f *Fetcher) Busy() bool { return f.busy.Load() }

// Results delivers fetched images.
func (f *Fetcher) Results() <-chan Result { return f.results }

// Stop abandons undelivered results and waits for a running decode to
// return. The Fetcher cannot be used afterwards.
func (f *Fetcher) Stop() {
	close(f.quit)
	f.wg.Wait()
}
