package main

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matjam/wallfade/internal/cli"
	_ "github.com/matjam/wallfade/internal/glx"
	_ "github.com/matjam/wallfade/internal/x11"
)

func main() {
	cli.Execute()
}
