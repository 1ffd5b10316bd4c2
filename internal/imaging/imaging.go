// Package imaging provides the built-in image pipeline for the harness:
// reading and writing renderer output images, intensity clamping,
// downsampling, and threshold-based comparison.
//
// Renderer outputs are HDR OpenEXR files; reference images are stored as
// PNG. Dispatch between the two is purely by filename extension.
package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	xdraw "golang.org/x/image/draw"
)

// Read decodes the image at path. Supported extensions: .exr, .png.
func Read(path string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr":
		return exr.DecodeFile(path)
	case ".png":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}
}

// Write encodes img to path, choosing the format by extension.
func Write(path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exr":
		return exr.EncodeFile(path, toFloatImage(img))
	case ".png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return png.Encode(f, img)
	default:
		return fmt.Errorf("unsupported image format: %s", path)
	}
}

// Clamp returns a copy of img with every channel clamped to [0, 1].
// HDR values above 1 are the reason renderer outputs are not directly
// comparable to low dynamic range references.
func Clamp(img image.Image) *exr.RGBAImage {
	b := img.Bounds()
	dst := exr.NewRGBAImage(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b_, a := floatRGBA(img, x, y)
			dst.SetRGBA(x, y, clamp01(r), clamp01(g), clamp01(b_), clamp01(a))
		}
	}
	return dst
}

// Downsample scales img to the given width, preserving aspect ratio.
// A width of zero or a source already no wider than width returns the
// source unchanged.
func Downsample(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// floatRGBA returns linear channel values in [0, 1] (HDR sources may
// exceed 1). EXR images keep full float precision; everything else goes
// through the 16-bit color.Color path.
func floatRGBA(img image.Image, x, y int) (r, g, b, a float32) {
	if f, ok := img.(*exr.RGBAImage); ok {
		return f.RGBA(x, y)
	}
	ri, gi, bi, ai := img.At(x, y).RGBA()
	return float32(ri) / 65535, float32(gi) / 65535, float32(bi) / 65535, float32(ai) / 65535
}

func toFloatImage(img image.Image) *exr.RGBAImage {
	if f, ok := img.(*exr.RGBAImage); ok {
		return f
	}
	b := img.Bounds()
	dst := exr.NewRGBAImage(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b_, a := floatRGBA(img, x, y)
			dst.SetRGBA(x, y, r, g, b_, a)
		}
	}
	return dst
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
