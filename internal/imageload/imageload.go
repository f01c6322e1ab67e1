// Package imageload reads images from disk or base64 and prepares them for
// the raster encoder
package imageload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/dither/v2"
)

// Options controls how an image is fitted to the paper
type Options struct {
	MaxWidth int  // printable dots; wider images are scaled down
	Dither   bool // Floyd-Steinberg instead of a plain threshold
}

// Load opens an image file, honouring EXIF orientation
func Load(path string, opts Options) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return Prepare(img, opts), nil
}

// Decode reads an image from r
func Decode(r io.Reader, opts Options) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return Prepare(img, opts), nil
}

// DecodeBase64 reads a base64 encoded image
func DecodeBase64(s string, opts Options) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return Decode(bytes.NewReader(data), opts)
}

// Prepare flattens transparency onto white paper, scales the image down to
// MaxWidth and optionally dithers it. Narrow images are never enlarged.
func Prepare(img image.Image, opts Options) image.Image {
	b := img.Bounds()
	paper := imaging.New(b.Dx(), b.Dy(), color.White)
	out := image.Image(imaging.Overlay(paper, img, image.Pt(0, 0), 1.0))

	if opts.MaxWidth > 0 && b.Dx() > opts.MaxWidth {
		out = imaging.Resize(out, opts.MaxWidth, 0, imaging.Lanczos)
	}

	if opts.Dither {
		ditherer := dither.NewDitherer([]color.Color{color.Black, color.White})
		ditherer.Matrix = dither.FloydSteinberg
		ditherer.Serpentine = true
		out = ditherer.DitherPaletted(imaging.Grayscale(out))
	}
	return out
}
