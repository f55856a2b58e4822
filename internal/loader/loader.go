// Package loader provides the images shown as wallpapers: a directory (or an
// explicit list of files) cycled in order or shuffled, and a Fetcher that
// decodes the next image off the scheduler goroutine.
package loader

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// ErrNoImages is returned when no candidate image could be loaded.
var ErrNoImages = errors.New("no loadable images")

// Extensions lists the file extensions considered images.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// Image is a decoded wallpaper.
type Image struct {
	Path string
	RGBA *image.RGBA
}

// Source hands out wallpapers one at a time.
type Source interface {
	Next() (Image, error)
}

// Directory is a Source cycling through the images of a directory. It is
// safe for concurrent use.
type Directory struct {
	fs      afero.Fs
	dir     string
	shuffle bool
	logger  *log.Logger

	mu     sync.Mutex
	rnd    *rand.Rand
	loaded []string // explicit list set by Load, nil to scan dir
	paths  []string
	pos    int
	last   string
	dirty  bool
}

type Option func(*Directory)

// WithFs reads images from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(d *Directory) { d.fs = fs }
}

// WithShuffle randomises the order, reshuffling on every pass.
func WithShuffle(shuffle bool) Option {
	return func(d *Directory) { d.shuffle = shuffle }
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(d *Directory) { d.rnd = r }
}

func WithLogger(l *log.Logger) Option {
	return func(d *Directory) { d.logger = l }
}

// NewDirectory returns a Source over the images in dir. The directory is
// scanned on the first call to Next.
func NewDirectory(dir string, opts ...Option) *Directory {
	d := &Directory{
		fs:     afero.NewOsFs(),
		dir:    dir,
		logger: log.Default(),
		dirty:  true,
	}
	for _, o := range opts {
		o(d)
	}
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Dir returns the directory being cycled.
func (d *Directory) Dir() string { return d.dir }

// Len returns the number of candidates found by the last scan.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.paths)
}

// Load replaces the candidates with paths. Directories among them are
// expanded to the images they contain.
func (d *Directory) Load(paths []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = slices.Clone(paths)
	d.dirty = true
}

// MarkDirty makes the next call to Next rescan the candidates.
func (d *Directory) MarkDirty() {
	d.mu.Lock()
	d.dirty = true
	d.mu.Unlock()
}

// Next decodes the next candidate. Candidates that cannot be read or
// decoded are logged and skipped; ErrNoImages is returned once a full pass
// produced nothing.
func (d *Directory) Next() (Image, error) {
	n, err := d.prepare()
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrNoImages, err)
	}

	var lastErr error
	for range n {
		path, ok := d.advance()
		if !ok {
			break
		}
		img, err := decodeFile(d.fs, path)
		if err != nil {
			d.logger.Error("skipping image", "path", path, "err", err)
			lastErr = err
			continue
		}
		return Image{Path: path, RGBA: img}, nil
	}
	if lastErr == nil {
		return Image{}, fmt.Errorf("%w in %s", ErrNoImages, d.dir)
	}
	return Image{}, fmt.Errorf("%w: %w", ErrNoImages, lastErr)
}

// prepare rescans if needed and returns the number of candidates.
func (d *Directory) prepare() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dirty {
		if err := d.rescan(); err != nil {
			return 0, err
		}
	}
	return len(d.paths), nil
}

func (d *Directory) rescan() error {
	var paths []string
	if d.loaded != nil {
		for _, p := range d.loaded {
			found, err := d.scan(p)
			if err != nil {
				d.logger.Warn("skipping path", "path", p, "err", err)
				continue
			}
			paths = append(paths, found...)
		}
	} else {
		found, err := d.scan(d.dir)
		if err != nil {
			return err
		}
		paths = found
	}

	d.paths = paths
	d.pos = 0
	d.dirty = false
	if d.shuffle {
		d.reshuffle()
	}
	d.logger.Debug("scanned images", "count", len(paths))
	return nil
}

// scan returns path itself if it is an image file, or the images directly
// inside it if it is a directory.
func (d *Directory) scan(path string) ([]string, error) {
	info, err := d.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsImage(path) {
			return nil, fmt.Errorf("not an image: %s", path)
		}
		return []string{path}, nil
	}

	entries, err := afero.ReadDir(d.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Mode().IsRegular() && e.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if IsImage(e.Name()) {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// advance returns the next candidate, starting a new pass when the current
// one is exhausted.
func (d *Directory) advance() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.paths) == 0 {
		return "", false
	}
	if d.pos >= len(d.paths) {
		d.pos = 0
		if d.shuffle {
			d.reshuffle()
		}
	}
	p := d.paths[d.pos]
	d.pos++
	d.last = p
	return p, true
}

// reshuffle permutes the candidates so that the last image shown does not
// come up again first.
func (d *Directory) reshuffle() {
	d.rnd.Shuffle(len(d.paths), func(i, j int) {
		d.paths[i], d.paths[j] = d.paths[j], d.paths[i]
	})
	if len(d.paths) > 1 && d.paths[0] == d.last {
		j := 1 + d.rnd.IntN(len(d.paths)-1)
		d.paths[0], d.paths[j] = d.paths[j], d.paths[0]
	}
}

// IsImage reports whether name has one of the known image extensions.
func IsImage(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}
