// Package offset computes outward and inward boundary offsets of a
// canonical mask using an exact Euclidean distance transform.
package offset

import (
	"fmt"
	"math"

	"sticker-press/internal/mask"
	"sticker-press/pkg/geometry"
)

// Corner selects how convex corners behave under an outward offset.
type Corner int

const (
	// CornerRounded offsets with a Euclidean disk and guarantees a
	// minimum outside corner radius via a close (grow, then shrink by
	// the radius).
	CornerRounded Corner = iota
	// CornerSharp reconstructs mitered corners after the disk offset so
	// originally sharp exterior corners stay sharp.
	CornerSharp
)

func (c Corner) String() string {
	switch c {
	case CornerRounded:
		return "rounded"
	case CornerSharp:
		return "sharp"
	default:
		return "unknown"
	}
}

// defaultMiterLimit caps miter spikes at 4x the offset distance, the usual
// stroke miter rule.
const defaultMiterLimit = 4.0

// Options configures an offset computation.
type Options struct {
	Corner       Corner
	CornerRadius float64 // px; minimum corner radius for CornerRounded
	FillHoles    bool    // close fully-enclosed background regions
	MiterLimit   float64 // 0 means defaultMiterLimit
}

// Boundary is a binary region produced by offsetting a canonical mask.
// The bitmap spans the full working canvas.
type Boundary struct {
	Bitmap *mask.Bitmap
	Bounds geometry.RectInt
}

// Offset grows (dist > 0) or shrinks (dist < 0) the canonical mask by a
// signed pixel distance. The region is every pixel whose signed Euclidean
// distance to the mask boundary is at most dist; with dist = 0 it is the
// mask itself. The transform runs over the mask's bounding box plus margin,
// so cost is proportional to sticker size, not canvas size.
//
// Fails with geometry.ErrInsufficientMargin if the offset region would
// escape the canvas.
func Offset(c *mask.Canonical, dist float64, opts Options) (*Boundary, error) {
	if opts.MiterLimit <= 0 {
		opts.MiterLimit = defaultMiterLimit
	}

	grow := dist
	round := 0.0
	if opts.Corner == CornerRounded && opts.CornerRadius > 0 && dist+opts.CornerRadius > 0 {
		grow = dist + opts.CornerRadius
		round = opts.CornerRadius
	}

	// Sharp mode can push mitered spikes past the disk offset, up to the
	// miter limit; the work rectangle must cover them.
	reach := math.Abs(grow) + round
	if opts.Corner == CornerSharp && grow > 0 {
		reach = grow * opts.MiterLimit
	}
	margin := int(math.Ceil(reach)) + 2
	wr := c.Bounds.Expand(margin)

	local := workGrid(c, wr, grow)

	if opts.Corner == CornerSharp && grow > 0 {
		sharpen(local, c, wr, grow, opts.MiterLimit)
	}
	if opts.FillHoles {
		local.FillHoles()
	}
	if round > 0 {
		local = erode(local, round)
	}

	return assemble(local, wr, c.Bitmap.Width, c.Bitmap.Height, dist)
}

// workGrid computes the disk offset of the canonical mask on a local grid
// covering the work rectangle.
func workGrid(c *mask.Canonical, wr geometry.RectInt, dist float64) *mask.Bitmap {
	w, h := wr.Width, wr.Height
	out := mask.NewBitmap(w, h)

	inside := func(x, y int) bool {
		return c.Bitmap.At(wr.X+x, wr.Y+y)
	}

	if dist >= 0 {
		// Dilation: background pixels within dist of the mask join it.
		f := transform(w, h, inside)
		limit := dist * dist
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = f.at(x, y) <= limit
			}
		}
		return out
	}

	// Erosion: mask pixels closer than |dist| to the background drop out.
	f := transform(w, h, func(x, y int) bool { return !inside(x, y) })
	limit := dist * dist
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = inside(x, y) && f.at(x, y) >= limit
		}
	}
	return out
}

// erode shrinks a local-grid region by r pixels with a disk structuring
// element.
func erode(bm *mask.Bitmap, r float64) *mask.Bitmap {
	w, h := bm.Width, bm.Height
	f := transform(w, h, func(x, y int) bool { return !bm.At(x, y) })
	out := mask.NewBitmap(w, h)
	limit := r * r
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = bm.At(x, y) && f.at(x, y) >= limit
		}
	}
	return out
}

// sharpen re-intersects the disk-offset region with the mitered outward
// offset of the mask's convex hull, restoring sharp exterior corners that
// the disk rounds off. Only pixels within each miter's reach of its source
// corner are added, so concave stretches are untouched.
func sharpen(local *mask.Bitmap, c *mask.Canonical, wr geometry.RectInt, dist, miterLimit float64) {
	pts := boundaryPixels(c)
	hull := geometry.ConvexHull(pts)
	if len(hull) < 3 {
		return
	}
	mp := geometry.OffsetConvexMiter(hull, dist, miterLimit)

	for i, v := range hull {
		reach := int(math.Ceil(mp.Reach[i])) + 1
		for dy := -reach; dy <= reach; dy++ {
			for dx := -reach; dx <= reach; dx++ {
				x, y := v.X+dx, v.Y+dy
				lx, ly := x-wr.X, y-wr.Y
				if lx < 0 || lx >= local.Width || ly < 0 || ly >= local.Height {
					continue
				}
				if local.At(lx, ly) {
					continue
				}
				if mp.Contains(geometry.Point2D{X: float64(x), Y: float64(y)}) {
					local.Set(lx, ly, true)
				}
			}
		}
	}
}

// boundaryPixels returns the foreground pixels with at least one 4-connected
// background neighbor, in row-major order.
func boundaryPixels(c *mask.Canonical) []geometry.PointInt {
	var pts []geometry.PointInt
	b := c.Bounds
	for y := b.Y; y < b.Y+b.Height; y++ {
		for x := b.X; x < b.X+b.Width; x++ {
			if !c.Bitmap.At(x, y) {
				continue
			}
			if !c.Bitmap.At(x-1, y) || !c.Bitmap.At(x+1, y) ||
				!c.Bitmap.At(x, y-1) || !c.Bitmap.At(x, y+1) {
				pts = append(pts, geometry.PointInt{X: x, Y: y})
			}
		}
	}
	return pts
}

// assemble copies the local-grid result onto a canvas-sized bitmap,
// rejecting regions that escape the canvas.
func assemble(local *mask.Bitmap, wr geometry.RectInt, canvasW, canvasH int, dist float64) (*Boundary, error) {
	canvas := geometry.RectInt{Width: canvasW, Height: canvasH}
	out := mask.NewBitmap(canvasW, canvasH)
	for y := 0; y < local.Height; y++ {
		for x := 0; x < local.Width; x++ {
			if !local.At(x, y) {
				continue
			}
			cx, cy := wr.X+x, wr.Y+y
			if !canvas.Contains(cx, cy) {
				return nil, &geometry.Error{
					Kind: geometry.ErrInsufficientMargin,
					Msg:  fmt.Sprintf("offset %.1fpx escapes %dx%d canvas at (%d,%d)", dist, canvasW, canvasH, cx, cy),
				}
			}
			out.Set(cx, cy, true)
		}
	}
	return &Boundary{Bitmap: out, Bounds: out.Bounds()}, nil
}

// Nearest maps every pixel of a rectangle to its nearest canonical
// foreground pixel. Used by the bleed compositor to extrapolate color.
type Nearest struct {
	Rect geometry.RectInt
	x, y []int32 // canvas coords, row-major over Rect
}

// NearestInside computes the nearest-foreground-pixel map over rect.
// Ties resolve to the smaller column, then the smaller row.
func NearestInside(c *mask.Canonical, rect geometry.RectInt) *Nearest {
	w, h := rect.Width, rect.Height
	f := transform(w, h, func(x, y int) bool {
		return c.Bitmap.At(rect.X+x, rect.Y+y)
	})
	n := &Nearest{Rect: rect, x: make([]int32, w*h), y: make([]int32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := f.site(x, y)
			n.x[y*w+x] = int32(rect.X + sx)
			n.y[y*w+x] = int32(rect.Y + sy)
		}
	}
	return n
}

// At returns the canvas coordinates of the nearest canonical pixel.
func (n *Nearest) At(x, y int) (int, int) {
	i := (y-n.Rect.Y)*n.Rect.Width + (x - n.Rect.X)
	return int(n.x[i]), int(n.y[i])
}
