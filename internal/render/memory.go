package render

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// MemorySurface is a Surface backed by an in-memory buffer. It keeps a copy
// of the last presented frame and counts presents, which makes it the
// surface of choice for headless use and tests.
type MemorySurface struct {
	mu          sync.Mutex
	frame       *memoryFrame
	last        *image.RGBA
	presents    int
	unavailable int
	closed      bool
	events      chan Event
}

type memoryFrame struct {
	img *image.RGBA
}

func (f *memoryFrame) Size() (int, int)  { return f.img.Rect.Dx(), f.img.Rect.Dy() }
func (f *memoryFrame) RGBA() *image.RGBA { return f.img }

// NewMemorySurface returns a width×height surface.
func NewMemorySurface(width, height int) *MemorySurface {
	return &MemorySurface{
		frame:  &memoryFrame{img: image.NewRGBA(image.Rect(0, 0, width, height))},
		events: make(chan Event, 8),
	}
}

func (s *MemorySurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame.Size()
}

func (s *MemorySurface) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = &memoryFrame{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	return nil
}

func (s *MemorySurface) Acquire() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	if s.unavailable > 0 {
		s.unavailable--
		return nil, ErrSurfaceUnavailable
	}
	return s.frame, nil
}

func (s *MemorySurface) Present(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	mf, ok := f.(*memoryFrame)
	if !ok || mf != s.frame {
		return errors.New("frame does not belong to this surface")
	}
	last := image.NewRGBA(mf.img.Rect)
	copy(last.Pix, mf.img.Pix)
	s.last = last
	s.presents++
	return nil
}

func (s *MemorySurface) Events() <-chan Event { return s.events }

func (s *MemorySurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FailNext makes the next n calls to Acquire report ErrSurfaceUnavailable.
func (s *MemorySurface) FailNext(n int) {
	s.mu.Lock()
	s.unavailable = n
	s.mu.Unlock()
}

// Presents returns how many frames have been presented.
func (s *MemorySurface) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Last returns a copy of the last presented frame, or nil.
func (s *MemorySurface) Last() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	img := image.NewRGBA(s.last.Rect)
	copy(img.Pix, s.last.Pix)
	return img
}

// Emit queues ev as if it came from the windowing layer.
func (s *MemorySurface) Emit(ev Event) {
	s.events <- ev
}
