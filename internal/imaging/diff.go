package imaging

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Comparator answers whether two images differ beyond a threshold and can
// render a textual diff report. The threshold is the maximum allowed
// average-intensity delta between the two images.
type Comparator interface {
	Differ(a, b string, threshold float64) (bool, error)
	DiffReport(a, b string) (string, error)
}

// DiffResult holds the numeric outcome of comparing two images.
type DiffResult struct {
	DimensionsMatch bool
	WidthA, HeightA int
	WidthB, HeightB int
	MeanDelta       float64 // average per-pixel intensity delta
	MaxDelta        float64
	PixelsChanged   int // pixels with any intensity delta
}

// Report renders the result as a human-readable diff report.
func (r DiffResult) Report() string {
	var sb strings.Builder
	if !r.DimensionsMatch {
		fmt.Fprintf(&sb, "image dimensions differ: %dx%d vs %dx%d\n",
			r.WidthA, r.HeightA, r.WidthB, r.HeightB)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%dx%d: mean intensity delta %.6f, max %.6f, %d pixels differ\n",
		r.WidthA, r.HeightA, r.MeanDelta, r.MaxDelta, r.PixelsChanged)
	return sb.String()
}

// Diff compares the images at paths a and b.
func Diff(a, b string) (DiffResult, error) {
	imgA, err := Read(a)
	if err != nil {
		return DiffResult{}, err
	}
	imgB, err := Read(b)
	if err != nil {
		return DiffResult{}, err
	}

	ba, bb := imgA.Bounds(), imgB.Bounds()
	res := DiffResult{
		WidthA:  ba.Dx(),
		HeightA: ba.Dy(),
		WidthB:  bb.Dx(),
		HeightB: bb.Dy(),
	}
	if ba.Dx() != bb.Dx() || ba.Dy() != bb.Dy() {
		return res, nil
	}
	res.DimensionsMatch = true

	var total float64
	for y := 0; y < ba.Dy(); y++ {
		for x := 0; x < ba.Dx(); x++ {
			ia := intensity(imgA, ba.Min.X+x, ba.Min.Y+y)
			ib := intensity(imgB, bb.Min.X+x, bb.Min.Y+y)
			d := math.Abs(ia - ib)
			if d > 0 {
				res.PixelsChanged++
			}
			if d > res.MaxDelta {
				res.MaxDelta = d
			}
			total += d
		}
	}
	res.MeanDelta = total / float64(ba.Dx()*ba.Dy())
	return res, nil
}

// BuiltIn is the native comparator. Images with mismatched dimensions
// always differ, regardless of threshold.
type BuiltIn struct{}

// Differ reports whether the images at a and b differ beyond threshold.
func (BuiltIn) Differ(a, b string, threshold float64) (bool, error) {
	res, err := Diff(a, b)
	if err != nil {
		return false, err
	}
	if !res.DimensionsMatch {
		return true, nil
	}
	return res.MeanDelta > threshold, nil
}

// DiffReport renders a textual report of the differences between a and b.
func (BuiltIn) DiffReport(a, b string) (string, error) {
	res, err := Diff(a, b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s vs %s:\n%s", a, b, res.Report()), nil
}

// intensity is the mean of the linear R, G and B channels at (x, y).
func intensity(img image.Image, x, y int) float64 {
	r, g, b, _ := floatRGBA(img, x, y)
	return (float64(r) + float64(g) + float64(b)) / 3
}
