package render

import (
	"fmt"
	"image"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// ParallelRows splits [0, rows) into contiguous bands and calls fn for each
// band on its own goroutine, returning once all of them are done.
func ParallelRows(rows int, fn func(y0, y1 int)) {
	workers := min(runtime.GOMAXPROCS(0), rows)
	if workers <= 1 {
		fn(0, rows)
		return
	}
	band := (rows + workers - 1) / workers
	p := pool.New().WithMaxGoroutines(workers)
	for y := 0; y < rows; y += band {
		y0, y1 := y, min(y+band, rows)
		p.Go(func() { fn(y0, y1) })
	}
	p.Wait()
}

// BlendChannel mixes two channel values, from*(1-alpha) + to*alpha, rounded
// to nearest. The result always lies between from and to.
func BlendChannel(from, to uint8, alpha float32) uint8 {
	v := float32(from) + (float32(to)-float32(from))*alpha
	return uint8(v + 0.5)
}

// Blend writes the cross-fade of from and to at alpha into dst. All three
// images must have the same size. At alpha 0 and 1 the matching source is
// copied verbatim.
func Blend(dst, from, to *image.RGBA, alpha float32) error {
	size := dst.Rect.Size()
	if from.Rect.Size() != size || to.Rect.Size() != size {
		return fmt.Errorf("blend size mismatch: dst %v, from %v, to %v", size, from.Rect.Size(), to.Rect.Size())
	}
	switch {
	case alpha <= 0:
		copyRGBA(dst, from)
		return nil
	case alpha >= 1:
		copyRGBA(dst, to)
		return nil
	}

	n := size.X * 4
	ParallelRows(size.Y, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			d := rowPix(dst, y, n)
			f := rowPix(from, y, n)
			t := rowPix(to, y, n)
			for i := range d {
				d[i] = BlendChannel(f[i], t[i], alpha)
			}
		}
	})
	return nil
}

// copyRGBA copies src into dst; both must have the same size.
func copyRGBA(dst, src *image.RGBA) {
	size := dst.Rect.Size()
	n := size.X * 4
	for y := 0; y < size.Y; y++ {
		copy(rowPix(dst, y, n), rowPix(src, y, n))
	}
}

func rowPix(img *image.RGBA, y, n int) []uint8 {
	off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
	return img.Pix[off : off+n]
}
