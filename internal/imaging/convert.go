package imaging

import "image"

// ConvertOptions select the transformations applied by a Converter.
type ConvertOptions struct {
	Clamp           bool // clamp channel values to [0, 1]
	DownsampleWidth int  // scale to this width, 0 = keep size
}

// Converter produces a converted copy of an image: clamped, downsampled,
// or simply transcoded between formats (chosen by the dst extension).
type Converter interface {
	Convert(src, dst string, opts ConvertOptions) error
}

// NativeConverter converts images in-process.
type NativeConverter struct{}

// Convert reads src, applies opts and writes the result to dst.
func (NativeConverter) Convert(src, dst string, opts ConvertOptions) error {
	img, err := Read(src)
	if err != nil {
		return err
	}
	var out image.Image = img
	if opts.Clamp {
		out = Clamp(out)
	}
	if opts.DownsampleWidth > 0 {
		out = Downsample(out, opts.DownsampleWidth)
	}
	return Write(dst, out)
}
