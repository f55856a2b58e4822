package loader

import (
	"bufio"
	"fmt"
	"image"

	"github.com/spf13/afero"

	"github.com/matjam/wallfade/internal/render"
)

// decodeFile decodes the image at path using the formats registered with
// the image package and converts it to RGBA.
func decodeFile(fs afero.Fs, path string) (*image.RGBA, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty %s image %s", format, path)
	}
	return render.ToRGBA(img), nil
}
