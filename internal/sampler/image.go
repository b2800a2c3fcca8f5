package sampler

import (
	"context"
	"fmt"
	"image"

	"github.com/jmylchreest/pixelpick/internal/colour"
	imgload "github.com/jmylchreest/pixelpick/internal/image"
)

// ImageSampler picks the pixel at (X, Y) of an image file. Coordinates are
// relative to the top-left corner of the image.
type ImageSampler struct {
	Path   string
	X, Y   int
	loader imgload.Loader
}

// NewImageSampler creates a sampler for the pixel at (x, y) in path.
func NewImageSampler(path string, x, y int) *ImageSampler {
	return &ImageSampler{
		Path:   path,
		X:      x,
		Y:      y,
		loader: imgload.NewFileLoader(),
	}
}

// Name returns "image".
func (s *ImageSampler) Name() string {
	return "image"
}

// Available always succeeds: reading a file needs nothing from the
// environment. A bad path is reported by Open as a failed pick.
func (s *ImageSampler) Available() error {
	return nil
}

// Open loads the image and reads the pixel.
func (s *ImageSampler) Open(ctx context.Context) Result {
	if r, done := resultFromContext(ctx); done {
		return r
	}

	img, err := s.loader.Load(s.Path)
	if err != nil {
		return Failed(err)
	}

	c, err := pixelAt(img, s.X, s.Y)
	if err != nil {
		return Failed(err)
	}
	return Sampled(c)
}

func pixelAt(img image.Image, x, y int) (colour.Hex, error) {
	b := img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if x < 0 || y < 0 || !p.In(b) {
		return "", fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y, b.Dx(), b.Dy())
	}
	return colour.ToRGB(img.At(p.X, p.Y)).Hex(), nil
}
