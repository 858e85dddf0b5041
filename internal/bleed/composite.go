// Package bleed synthesizes the full-bleed artwork and cut-line rasters.
package bleed

import (
	"fmt"
	"image"
	"image/color"

	"sticker-press/internal/mask"
	"sticker-press/internal/offset"
)

// Artifact pixel constants, matching the colors the downstream design tool
// expects: transparent pixels stay white so flattened exports do not fringe.
var (
	whiteTransparent = color.RGBA{255, 255, 255, 0}
	blackOpaque      = color.RGBA{0, 0, 0, 255}
	grayOpaque       = color.RGBA{128, 128, 128, 255}
)

// Composite builds the full-bleed artwork: pixels inside the canonical mask
// are copied unchanged, pixels inside the bleed boundary but outside the
// mask take the color of the nearest mask pixel, and everything outside the
// bleed boundary is fully transparent.
func Composite(art *image.RGBA, c *mask.Canonical, bleedB *offset.Boundary) (*image.RGBA, error) {
	w := art.Rect.Dx()
	h := art.Rect.Dy()
	if w != c.Bitmap.Width || h != c.Bitmap.Height {
		return nil, fmt.Errorf("artwork %dx%d does not match mask %dx%d", w, h, c.Bitmap.Width, c.Bitmap.Height)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(out, whiteTransparent)

	nearest := offset.NearestInside(c, bleedB.Bounds)

	b := bleedB.Bounds
	for y := b.Y; y < b.Y+b.Height; y++ {
		for x := b.X; x < b.X+b.Width; x++ {
			switch {
			case c.Bitmap.At(x, y):
				out.SetRGBA(x, y, art.RGBAAt(art.Rect.Min.X+x, art.Rect.Min.Y+y))
			case bleedB.Bitmap.At(x, y):
				sx, sy := nearest.At(x, y)
				out.SetRGBA(x, y, art.RGBAAt(art.Rect.Min.X+sx, art.Rect.Min.Y+sy))
			}
		}
	}
	return out, nil
}

// CutRaster renders a cut boundary as a high-contrast raster for the design
// tool's image trace: black opaque inside the cut region, white transparent
// outside.
func CutRaster(cutB *offset.Boundary) *image.RGBA {
	bm := cutB.Bitmap
	out := image.NewRGBA(image.Rect(0, 0, bm.Width, bm.Height))
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			if bm.At(x, y) {
				out.SetRGBA(x, y, blackOpaque)
			} else {
				out.SetRGBA(x, y, whiteTransparent)
			}
		}
	}
	return out
}

// PreviewRaster renders a human-checkable proof: the artwork with the
// region outside the bleed grayed out and a one-pixel cut contour drawn in
// black.
func PreviewRaster(art *image.RGBA, bleedB, cutB *offset.Boundary) *image.RGBA {
	w := art.Rect.Dx()
	h := art.Rect.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case contour(cutB.Bitmap, x, y):
				out.SetRGBA(x, y, blackOpaque)
			case !bleedB.Bitmap.At(x, y):
				out.SetRGBA(x, y, grayOpaque)
			default:
				out.SetRGBA(x, y, art.RGBAAt(art.Rect.Min.X+x, art.Rect.Min.Y+y))
			}
		}
	}
	return out
}

// contour reports whether a background pixel 8-touches the cut region,
// i.e. lies on the one-pixel ring just outside the cut line.
func contour(bm *mask.Bitmap, x, y int) bool {
	if bm.At(x, y) {
		return false
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && bm.At(x+dx, y+dy) {
				return true
			}
		}
	}
	return false
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
