// Package scale converts between pixel and physical dimensions and resizes
// artifacts to their configured target size.
package scale

import (
	"fmt"
	"image"
	"math"
	"sort"

	xdraw "golang.org/x/image/draw"

	"sticker-press/pkg/geometry"
)

// AspectTolerance is the maximum relative difference between source and
// target aspect ratios accepted when the aspect lock is off. Fixed so that
// re-runs are reproducible.
const AspectTolerance = 0.01

// ToPhysical converts a pixel extent to physical units at the given density
// (pixels per unit).
func ToPhysical(px int, density float64) float64 {
	return float64(px) / density
}

// PixelExtent converts a physical length to pixels at the given density,
// rounding to the nearest pixel.
func PixelExtent(length, density float64) int {
	return int(math.Round(length * density))
}

// SnapSize returns the smallest stock size strictly larger than size.
// Stock sizes need not be pre-sorted. Fails when nothing fits.
func SnapSize(size float64, sizes []float64) (float64, error) {
	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	sort.Float64s(sorted)
	for _, s := range sorted {
		if size < s {
			return s, nil
		}
	}
	return 0, fmt.Errorf("no stock size fits %.2f (largest is %.2f)", size, largest(sorted))
}

func largest(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

// FitToCanvas crops the image to bbox and centers it on a targetW x targetH
// canvas, padding with fully transparent pixels. Pixels are copied, never
// resampled, so the crop is byte-exact.
func FitToCanvas(img *image.RGBA, bbox geometry.RectInt, targetW, targetH int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	padX := (targetW - bbox.Width) / 2
	padY := (targetH - bbox.Height) / 2
	for y := 0; y < bbox.Height; y++ {
		for x := 0; x < bbox.Width; x++ {
			dx, dy := padX+x, padY+y
			if dx < 0 || dx >= targetW || dy < 0 || dy >= targetH {
				continue
			}
			out.SetRGBA(dx, dy, img.RGBAAt(img.Rect.Min.X+bbox.X+x, img.Rect.Min.Y+bbox.Y+y))
		}
	}
	return out
}

// Resample resizes an image to the exact pixel dimensions using the
// Catmull-Rom kernel. One fixed filter everywhere keeps repeated runs
// byte-identical.
func Resample(img *image.RGBA, w, h int) *image.RGBA {
	if img.Rect.Dx() == w && img.Rect.Dy() == h {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		copy(out.Pix, img.Pix)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Rect, img, img.Rect, xdraw.Src, nil)
	return out
}

// CheckAspect verifies that resampling srcW x srcH to dstW x dstH keeps the
// aspect ratio within AspectTolerance. Used when the aspect lock is off; a
// larger mismatch would visibly distort the artwork.
func CheckAspect(srcW, srcH, dstW, dstH int) error {
	if srcH == 0 || dstH == 0 {
		return &geometry.Error{Kind: geometry.ErrAspectMismatch, Msg: "degenerate extent"}
	}
	src := float64(srcW) / float64(srcH)
	dst := float64(dstW) / float64(dstH)
	diff := math.Abs(src-dst) / src
	if diff > AspectTolerance {
		return &geometry.Error{
			Kind: geometry.ErrAspectMismatch,
			Msg:  fmt.Sprintf("source %dx%d vs target %dx%d differs %.1f%%", srcW, srcH, dstW, dstH, diff*100),
		}
	}
	return nil
}
