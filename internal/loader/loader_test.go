package loader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

var quiet = log.New(io.Discard)

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func newFs(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/walls", 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	for name, data := range files {
		writeFile(t, fs, filepath.Join("/walls", name), data)
	}
	return fs
}

func nextPaths(t *testing.T, d *Directory, n int) []string {
	t.Helper()
	var got []string
	for range n {
		img, err := d.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, img.Path)
	}
	return got
}

func TestDirectoryCyclesInOrder(t *testing.T) {
	fs := newFs(t, map[string][]byte{
		"b.png":     pngBytes(t, color.RGBA{0, 255, 0, 255}),
		"a.PNG":     pngBytes(t, color.RGBA{255, 0, 0, 255}),
		"c.png":     pngBytes(t, color.RGBA{0, 0, 255, 255}),
		"notes.txt": []byte("not an image"),
	})
	d := NewDirectory("/walls", WithFs(fs), WithLogger(quiet))

	got := nextPaths(t, d, 4)
	want := []string{"/walls/a.PNG", "/walls/b.png", "/walls/c.png", "/walls/a.PNG"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestDirectoryDecodesRGBA(t *testing.T) {
	fs := newFs(t, map[string][]byte{"a.png": pngBytes(t, color.RGBA{10, 20, 30, 255})})
	d := NewDirectory("/walls", WithFs(fs), WithLogger(quiet))
	img, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if img.RGBA.Rect != image.Rect(0, 0, 2, 2) {
		t.Errorf("unexpected bounds %v", img.RGBA.Rect)
	}
	if got := img.RGBA.RGBAAt(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("unexpected pixel %v", got)
	}
}

func TestDirectorySkipsUndecodable(t *testing.T) {
	fs := newFs(t, map[string][]byte{
		"a.png": pngBytes(t, color.RGBA{A: 255}),
		"b.png": []byte("garbage"),
		"c.jpg": []byte("more garbage"),
		"d.png": pngBytes(t, color.RGBA{A: 255}),
	})
	d := NewDirectory("/walls", WithFs(fs), WithLogger(quiet))

	got := nextPaths(t, d, 3)
	want := []string{"/walls/a.png", "/walls/d.png", "/walls/a.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestDirectoryNoImages(t *testing.T) {
	tests := []struct {
		name  string
		files map[string][]byte
	}{
		{"empty", nil},
		{"only_other_files", map[string][]byte{"readme.md": []byte("hi")}},
		{"all_broken", map[string][]byte{"a.png": []byte("x"), "b.webp": []byte("y")}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := NewDirectory("/walls", WithFs(newFs(t, test.files)), WithLogger(quiet))
			_, err := d.Next()
			if !errors.Is(err, ErrNoImages) {
				t.Errorf("Next() error = %v, want ErrNoImages", err)
			}
		})
	}
}

func TestDirectoryMissing(t *testing.T) {
	d := NewDirectory("/nowhere", WithFs(afero.NewMemMapFs()), WithLogger(quiet))
	if _, err := d.Next(); !errors.Is(err, ErrNoImages) {
		t.Errorf("Next() error = %v, want ErrNoImages", err)
	}
}

func TestDirectoryShuffleCoversAllBeforeRepeat(t *testing.T) {
	files := map[string][]byte{}
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png"} {
		files[name] = pngBytes(t, color.RGBA{A: 255})
	}
	d := NewDirectory("/walls",
		WithFs(newFs(t, files)),
		WithShuffle(true),
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithLogger(quiet),
	)

	var prev string
	for pass := range 20 {
		seen := map[string]bool{}
		for i, p := range nextPaths(t, d, len(files)) {
			if seen[p] {
				t.Fatalf("pass %d: %s shown twice", pass, p)
			}
			if i == 0 && p == prev {
				t.Fatalf("pass %d starts with the image that ended the previous pass", pass)
			}
			seen[p] = true
			prev = p
		}
	}
}

func TestDirectoryLoadReplacesList(t *testing.T) {
	fs := newFs(t, map[string][]byte{
		"a.png": pngBytes(t, color.RGBA{A: 255}),
		"b.png": pngBytes(t, color.RGBA{A: 255}),
	})
	writeFile(t, fs, "/other/x.png", pngBytes(t, color.RGBA{A: 255}))
	writeFile(t, fs, "/other/y.png", pngBytes(t, color.RGBA{A: 255}))
	d := NewDirectory("/walls", WithFs(fs), WithLogger(quiet))
	nextPaths(t, d, 1)

	d.Load([]string{"/walls/b.png", "/other", "/missing.png"})
	got := nextPaths(t, d, 4)
	want := []string{"/walls/b.png", "/other/x.png", "/other/y.png", "/walls/b.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestDirectoryRescanWhenDirty(t *testing.T) {
	fs := newFs(t, map[string][]byte{"a.png": pngBytes(t, color.RGBA{A: 255})})
	d := NewDirectory("/walls", WithFs(fs), WithLogger(quiet))
	nextPaths(t, d, 1)

	writeFile(t, fs, "/walls/b.png", pngBytes(t, color.RGBA{A: 255}))
	if got := nextPaths(t, d, 1); got[0] != "/walls/a.png" {
		t.Errorf("picked up %s without a rescan", got[0])
	}

	d.MarkDirty()
	if n := d.Len(); n != 1 {
		t.Errorf("Len() = %d before rescan, want 1", n)
	}
	got := nextPaths(t, d, 2)
	want := []string{"/walls/a.png", "/walls/b.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "b.JPEG": true, "c.webp": true, "d.tiff": true,
		"e.txt": false, "png": false, "f.png.bak": false,
	} {
		if got := IsImage(name); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatchMarksDirty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, color.RGBA{A: 255}), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	d := NewDirectory(dir, WithLogger(quiet))
	nextPaths(t, d, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch failed: %v", err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		// Rewrite until the watcher is up and has noticed.
		if err := os.WriteFile(filepath.Join(dir, "b.png"), pngBytes(t, color.RGBA{A: 255}), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
		d.mu.Lock()
		dirty := d.dirty
		d.mu.Unlock()
		if dirty {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("directory not marked dirty after change")
		}
	}
	nextPaths(t, d, 1)
	if n := d.Len(); n != 2 {
		t.Errorf("Len() = %d after rescan, want 2", n)
	}
}
